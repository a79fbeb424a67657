package speech

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/vigil/internal/extract"
	"github.com/ppiankov/vigil/internal/model"
)

// mockSegmentSpacing is the simulated gap between mock segments, in seconds
const mockSegmentSpacing = 5.0

// cannedScripts are used for binary audio the mock cannot read as text
var cannedScripts = [][]string{
	{
		"good morning everyone",
		"the weather is lovely today",
		"see you at lunch",
	},
	{
		"[hindi] कल बाजार में मिलते हैं",
		"bring the documents tomorrow",
	},
	{
		"[urdu] ابھی بازار آؤ",
		"the meeting is at the station",
		"hurry the train leaves soon",
	},
}

// glossary translates common Hindi and Urdu terms into English
var glossary = map[string]string{
	// hindi
	"मारो": "kill", "मार": "kill", "हत्या": "murder", "हमला": "attack",
	"कत्ल": "murder", "अपहरण": "kidnap", "जलाओ": "burn", "उड़ा": "blow up",
	"बम": "bomb", "बंदूक": "gun", "गोली": "bullet", "हथियार": "weapons",
	"विस्फोटक": "explosives", "चाकू": "knife", "पिस्तौल": "pistol",
	"राइफल": "rifle", "ग्रेनेड": "grenade", "धमाका": "blast",
	"विस्फोट": "explosion", "दंगा": "riot", "रैली": "rally", "जुलूस": "procession",
	"सभा": "meeting", "मेला": "festival", "बाजार": "market", "बाज़ार": "market",
	"स्कूल": "school", "मंदिर": "temple", "मस्जिद": "mosque", "स्टेशन": "station",
	"पुलिस": "police", "सेना": "army", "सरकार": "government", "भीड़": "crowd",
	"अस्पताल": "hospital", "अभी": "now", "आज": "today", "जल्दी": "quickly",
	"तुरंत": "immediately", "फौरन": "immediately", "कल": "tomorrow",
	"में": "in", "लाओ": "bring", "है": "is", "हैं": "are", "को": "to",
	"मिलते": "meet", "और": "and",

	// urdu
	"مارو": "kill", "قتل": "murder", "حملہ": "attack", "اغوا": "kidnap",
	"جلاؤ": "burn", "اڑا": "blow up", "بم": "bomb", "بندوق": "gun",
	"گولی": "bullet", "ہتھیار": "weapons", "چاقو": "knife", "پستول": "pistol",
	"گرینیڈ": "grenade", "دھماکہ": "blast", "فساد": "riot", "ریلی": "rally",
	"جلسہ": "meeting", "جلوس": "procession", "بازار": "market", "اسکول": "school",
	"مسجد": "mosque", "مندر": "temple", "اسٹیشن": "station", "پولیس": "police",
	"فوج": "army", "حکومت": "government", "ہسپتال": "hospital", "ابھی": "now",
	"آج": "today", "جلدی": "quickly", "فوراً": "immediately", "کل": "tomorrow",
	"میں": "in", "لاؤ": "bring", "آؤ": "come", "ہے": "is",
}

// MockEngine is a deterministic offline engine. Text audio (UTF-8) is read
// line by line, one segment per line, with an optional "[language]" prefix;
// any other audio yields one of a few canned scripts chosen by content hash.
// Translation is glossary-based.
type MockEngine struct{}

// NewMockEngine creates a mock engine
func NewMockEngine() *MockEngine {
	return &MockEngine{}
}

// Name returns the engine name
func (e *MockEngine) Name() string {
	return "mock"
}

// Transcribe produces segments from text audio or a canned script
func (e *MockEngine) Transcribe(ctx context.Context, audio Audio) (*Transcript, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	defaultLang := RouteLanguage(audio.Language)
	if defaultLang == "" {
		defaultLang = model.BaseLanguage
	}

	lines := textLines(audio.Data)
	if lines == nil {
		lines = cannedScripts[hash(audio.Data)%uint32(len(cannedScripts))]
	}

	transcript := &Transcript{Language: defaultLang}
	for _, line := range lines {
		lang, text := splitLanguage(line, defaultLang)
		conf := mockConfidence(text)
		index := len(transcript.Segments)
		transcript.Segments = append(transcript.Segments, model.TranscriptSegment{
			ID:         segmentID(index),
			Text:       text,
			Language:   lang,
			StartTime:  float64(index) * mockSegmentSpacing,
			Confidence: &conf,
		})
	}

	return transcript, nil
}

// Translate replaces known words using the glossary; unknown words pass through
func (e *MockEngine) Translate(ctx context.Context, text, from, to string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if RouteLanguage(from) == RouteLanguage(to) {
		return text, nil
	}
	if RouteLanguage(to) != model.BaseLanguage {
		return "", fmt.Errorf("mock engine only translates into %s", model.BaseLanguage)
	}

	tokens := extract.Tokenize(text)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if en, ok := glossary[extract.Normalize(tok)]; ok {
			out = append(out, en)
			continue
		}
		out = append(out, tok)
	}
	return strings.Join(out, " "), nil
}

// Close is a no-op
func (e *MockEngine) Close() error {
	return nil
}

// textLines returns the non-empty lines of UTF-8 text audio, or nil
func textLines(data []byte) []string {
	if len(data) == 0 || !utf8.Valid(data) {
		return nil
	}

	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// splitLanguage parses an optional "[language]" prefix
func splitLanguage(line, fallback string) (string, string) {
	if !strings.HasPrefix(line, "[") {
		return fallback, line
	}
	end := strings.Index(line, "]")
	if end < 0 {
		return fallback, line
	}
	lang := RouteLanguage(line[1:end])
	if lang == "" {
		lang = fallback
	}
	return lang, strings.TrimSpace(line[end+1:])
}

// mockConfidence derives a stable confidence in [0.75, 0.99] from the text
func mockConfidence(text string) float64 {
	return 0.75 + float64(hash([]byte(text))%25)/100
}

func hash(data []byte) uint32 {
	h := fnv.New32a()
	_, _ = h.Write(data)
	return h.Sum32()
}

package ingest

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/vigil/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

const sampleSRT = "1\r\n00:00:01,500 --> 00:00:04,000\r\n{\\an8}<i>Bring the</i>\r\nbomb now\r\n\r\n" +
	"2\r\n00:00:05,000 --> 00:00:07,000\r\nअभी बम लाओ\r\n\r\n" +
	"3\r\n00:00:08,000 --> 00:00:09,000\r\n\r\n"

const sampleVTT = `WEBVTT - call recording

NOTE exported from the recorder

STYLE
::cue { color: white }

intro
00:01.000 --> 00:04.000 align:start
<v Caller>Bring <c.loud>the bomb</c> &amp; go<00:00:03.000> now

01:02.250 --> 01:05.000
ابھی آؤ
`

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path, forced string
		want         Format
		wantErr      bool
	}{
		{"call.srt", "", FormatSRT, false},
		{"call.VTT", "", FormatVTT, false},
		{"call.json", "", FormatJSON, false},
		{"call.yml", "", FormatYAML, false},
		{"call.yaml", "", FormatYAML, false},
		{"call.txt", "srt", FormatSRT, false},
		{"call.srt", "webvtt", FormatVTT, false},
		{"call.txt", "", "", true},
		{"call", "", "", true},
		{"call.srt", "docx", "", true},
	}

	for _, tt := range tests {
		got, err := DetectFormat(tt.path, tt.forced)
		if tt.wantErr {
			assert.Error(t, err, "%s/%s", tt.path, tt.forced)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s/%s", tt.path, tt.forced)
	}
}

func TestParseSRT(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleSRT), FormatSRT, "")
	require.NoError(t, err)

	require.Len(t, doc.Segments, 2, "blank cue is dropped")
	assert.Equal(t, "seg-0001", doc.Segments[0].ID)
	assert.Equal(t, "Bring the bomb now", doc.Segments[0].Text)
	assert.Equal(t, 1.5, doc.Segments[0].StartTime)
	assert.Equal(t, "english", doc.Segments[0].Language)

	assert.Equal(t, "अभी बम लाओ", doc.Segments[1].Text)
	assert.Equal(t, "hindi", doc.Segments[1].Language)
	assert.Equal(t, 5.0, doc.Segments[1].StartTime)
}

func TestParseVTT(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleVTT), FormatVTT, "")
	require.NoError(t, err)

	require.Len(t, doc.Segments, 2)
	assert.Equal(t, "intro", doc.Segments[0].ID)
	assert.Equal(t, "Bring the bomb & go now", doc.Segments[0].Text)
	assert.Equal(t, 1.0, doc.Segments[0].StartTime)

	assert.Equal(t, "seg-0002", doc.Segments[1].ID)
	assert.Equal(t, 62.25, doc.Segments[1].StartTime)
	assert.Equal(t, "urdu", doc.Segments[1].Language)
}

func TestParseVTT_GeneratedIDsSkipCueIDs(t *testing.T) {
	input := "WEBVTT\n\n" +
		"00:00.000 --> 00:01.000\nfirst\n\n" +
		"00:01.000 --> 00:02.000\nsecond\n\n" +
		"seg-0002\n00:02.000 --> 00:03.000\nthird\n"

	doc, err := Parse(strings.NewReader(input), FormatVTT, "english")
	require.NoError(t, err)
	require.Len(t, doc.Segments, 3)

	ids := map[string]bool{}
	for _, seg := range doc.Segments {
		assert.False(t, ids[seg.ID], "duplicate segment ID %s", seg.ID)
		ids[seg.ID] = true
	}
	assert.Equal(t, "seg-0001", doc.Segments[0].ID)
	assert.Equal(t, "seg-0003", doc.Segments[1].ID)
	assert.Equal(t, "seg-0002", doc.Segments[2].ID)
}

func TestParseVTT_LanguageOverride(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleVTT), FormatVTT, "Hindi")
	require.NoError(t, err)
	for _, seg := range doc.Segments {
		assert.Equal(t, "hindi", seg.Language)
	}
}

func TestParseVTT_Invalid(t *testing.T) {
	_, err := Parse(strings.NewReader("00:01.000 --> 00:02.000\nhello\n"), FormatVTT, "")
	assert.Error(t, err, "missing header")

	_, err = Parse(strings.NewReader("WEBVTT\n\nintro\nhello\n"), FormatVTT, "")
	assert.Error(t, err, "cue without timing")

	_, err = Parse(strings.NewReader("WEBVTT\n\n00:61.000 --> 00:62.000\nhello\n"), FormatVTT, "")
	assert.Error(t, err, "seconds out of range")
}

func TestParseTimestamp(t *testing.T) {
	tests := map[string]float64{
		"00:00:01,500": 1.5,
		"00:01:00,000": 60,
		"1:00:00.000":  3600,
		"01:02.250":    62.25,
	}
	for in, want := range tests {
		got, err := parseTimestamp(in)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, 1e-9, in)
	}

	for _, bad := range []string{"", "12", "aa:bb", "00:00:xx", "1:2:3:4"} {
		_, err := parseTimestamp(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseJSONDocument(t *testing.T) {
	input := `{
		"session_id": "call-9",
		"language": "urdu",
		"segments": [
			{"id": "a", "text": "ابھی آؤ", "start_time": 0, "confidence": 0.9},
			{"text": "bring the bomb", "language": "English", "start_time": 4}
		],
		"translations": {"a": "come now"}
	}`

	doc, err := Parse(strings.NewReader(input), FormatJSON, "")
	require.NoError(t, err)

	assert.Equal(t, "call-9", doc.SessionID)
	require.Len(t, doc.Segments, 2)
	assert.Equal(t, "urdu", doc.Segments[0].Language)
	require.NotNil(t, doc.Segments[0].Confidence)
	assert.Equal(t, 0.9, *doc.Segments[0].Confidence)
	assert.Equal(t, "seg-0002", doc.Segments[1].ID)
	assert.Equal(t, "english", doc.Segments[1].Language)
	assert.Equal(t, "come now", doc.Translations["a"])

	_, err = Parse(strings.NewReader("{"), FormatJSON, "")
	assert.Error(t, err)
}

func TestParseYAMLDocument(t *testing.T) {
	input := `
session_id: call-10
segments:
  - id: s1
    text: अभी बम लाओ
    start_time: 1.5
translations:
  s1: now bomb bring
`
	doc, err := Parse(strings.NewReader(input), FormatYAML, "")
	require.NoError(t, err)

	require.Len(t, doc.Segments, 1)
	assert.Equal(t, "hindi", doc.Segments[0].Language)
	assert.Equal(t, 1.5, doc.Segments[0].StartTime)
	assert.Equal(t, "now bomb bring", doc.Translations["s1"])

	_, err = Parse(strings.NewReader(""), FormatYAML, "")
	assert.Error(t, err)
}

func TestGuessLanguage(t *testing.T) {
	assert.Equal(t, "hindi", guessLanguage("अभी बम लाओ"))
	assert.Equal(t, "urdu", guessLanguage("ابھی آؤ"))
	assert.Equal(t, "english", guessLanguage("bring it now"))
	assert.Equal(t, "english", guessLanguage("12:30"))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestIngester_IngestFile(t *testing.T) {
	s := store.NewMemoryStore()
	ing := NewIngester(s, quietLogger())
	ctx := context.Background()

	path := writeFile(t, "call.srt", sampleSRT)
	res, err := ing.IngestFile(ctx, "call-1", path, Options{})
	require.NoError(t, err)

	assert.Equal(t, "call-1", res.SessionID)
	assert.Equal(t, FormatSRT, res.Format)
	assert.Equal(t, 2, res.Segments)

	segs, err := s.TranscriptSegments(ctx, "call-1")
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, "Bring the bomb now", segs[0].Text)
}

func TestIngester_DocumentSessionAndTranslations(t *testing.T) {
	s := store.NewMemoryStore()
	ing := NewIngester(s, quietLogger())
	ctx := context.Background()

	path := writeFile(t, "session.json", `{
		"session_id": "call-2",
		"segments": [{"id": "s1", "text": "अभी बम लाओ", "start_time": 0}],
		"translations": {"s1": "now bomb bring", "ghost": "dropped", "s1-blank": ""}
	}`)

	res, err := ing.IngestFile(ctx, "", path, Options{})
	require.NoError(t, err)
	assert.Equal(t, "call-2", res.SessionID)
	assert.Equal(t, 1, res.Translations)
	assert.Equal(t, 2, res.Dropped)

	tr, err := s.Translations(ctx, "call-2")
	require.NoError(t, err)
	assert.Equal(t, "now bomb bring", tr["s1"])
	assert.NotContains(t, tr, "ghost")
}

func TestIngester_ForcedFormat(t *testing.T) {
	s := store.NewMemoryStore()
	ing := NewIngester(s, quietLogger())

	path := writeFile(t, "call.txt", sampleVTT)
	res, err := ing.IngestFile(context.Background(), "call-3", path, Options{Format: "vtt", Language: "english"})
	require.NoError(t, err)
	assert.Equal(t, FormatVTT, res.Format)
}

func TestIngester_Errors(t *testing.T) {
	s := store.NewMemoryStore()
	ing := NewIngester(s, quietLogger())
	ctx := context.Background()

	_, err := ing.IngestFile(ctx, "", writeFile(t, "call.srt", sampleSRT), Options{})
	assert.Error(t, err, "no session ID anywhere")

	_, err = ing.IngestFile(ctx, "call-4", writeFile(t, "empty.srt", "\n\n"), Options{})
	assert.Error(t, err, "no segments")

	_, err = ing.IngestFile(ctx, "call-4", filepath.Join(t.TempDir(), "missing.srt"), Options{})
	assert.Error(t, err)

	ids, err := s.Sessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

package model

// BaseLanguage is the default translation target and last-resort dictionary.
const BaseLanguage = "english"

// LanguageTranslated tags matches found in a segment's translation rather
// than its source text. Translated text is always in the base language.
const LanguageTranslated = "translated"

// TranscriptSegment is one time-bounded slice of a session transcript as
// produced by the speech-to-text collaborator. It is read-only to the
// analysis core.
type TranscriptSegment struct {
	ID         string   `json:"id" yaml:"id"`
	Text       string   `json:"text" yaml:"text"`
	Language   string   `json:"language" yaml:"language"`
	StartTime  float64  `json:"start_time" yaml:"start_time"`                     // seconds from session start
	Confidence *float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"` // opaque, as reported by STT
}

// TranslationLookup maps a segment ID to its base-language translation.
type TranslationLookup map[string]string

// Package speech turns session audio into transcript segments and
// base-language translations. Engines are explicit handles: callers create
// them with NewEngine and release them with Close.
package speech

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/vigil/internal/model"
	"github.com/ppiankov/vigil/internal/util"
	"github.com/ppiankov/vigil/internal/worker"
	"github.com/sirupsen/logrus"
)

// Engine transcribes audio and translates text
type Engine interface {
	// Name returns the engine name
	Name() string

	// Transcribe converts audio into time-ordered segments
	Transcribe(ctx context.Context, audio Audio) (*Transcript, error)

	// Translate renders text from one language into another
	Translate(ctx context.Context, text, from, to string) (string, error)

	// Close releases engine resources
	Close() error
}

// Audio is one recording to transcribe
type Audio struct {
	Name     string // file name, used for format detection by remote engines
	Data     []byte
	Language string // optional hint; empty lets the engine detect it
}

// Transcript is an engine's output for one recording
type Transcript struct {
	Language string
	Segments []model.TranscriptSegment
}

// ProxyFor returns the proxy overrides of a speech configuration
func ProxyFor(cfg model.SpeechConfig) util.ProxyConfig {
	return util.ProxyConfig{
		HTTPProxy:  cfg.HTTPProxy,
		HTTPSProxy: cfg.HTTPSProxy,
		NoProxy:    cfg.NoProxy,
	}
}

// languageCodes maps dictionary language names to ISO 639-1 codes
var languageCodes = map[string]string{
	"english": "en",
	"hindi":   "hi",
	"urdu":    "ur",
}

// RouteLanguage normalizes a language hint. Kashmiri has no dedicated model
// and is transcribed as Urdu, which shares its script and most vocabulary.
func RouteLanguage(language string) string {
	lang := strings.ToLower(strings.TrimSpace(language))
	switch lang {
	case "kashmiri", "ks", "ks-in", "kas":
		return "urdu"
	}
	for name, code := range languageCodes {
		if lang == code {
			return name
		}
	}
	return lang
}

// languageCode returns the ISO 639-1 code for a routed language, or "" if unknown
func languageCode(language string) string {
	return languageCodes[RouteLanguage(language)]
}

// segmentID builds a stable, sortable segment identifier
func segmentID(index int) string {
	return fmt.Sprintf("seg-%04d", index+1)
}

// NewEngine creates the configured engine, wrapped with a fallback when one
// is configured
func NewEngine(cfg model.SpeechConfig, logger *logrus.Logger) (Engine, error) {
	limiter := worker.NewLimiter(cfg.RequestsPerSecond, cfg.Burst)

	primary, err := newNamedEngine(cfg.Provider, cfg, limiter, logger)
	if err != nil {
		return nil, err
	}

	fallback := strings.ToLower(cfg.Fallback)
	if fallback == "" || fallback == strings.ToLower(cfg.Provider) {
		return primary, nil
	}

	secondary, err := newNamedEngine(fallback, cfg, limiter, logger)
	if err != nil {
		_ = primary.Close()
		return nil, fmt.Errorf("fallback engine: %w", err)
	}

	return NewFallbackEngine(primary, secondary, logger), nil
}

func newNamedEngine(name string, cfg model.SpeechConfig, limiter *worker.Limiter, logger *logrus.Logger) (Engine, error) {
	switch strings.ToLower(name) {
	case "mock", "":
		return NewMockEngine(), nil

	case "openai", "whisper":
		return NewOpenAIEngine(cfg, limiter, logger)

	default:
		return nil, fmt.Errorf("unknown speech provider: %s (supported: mock, openai)", name)
	}
}

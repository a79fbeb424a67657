package speech

import (
	"context"
	"fmt"

	"github.com/ppiankov/vigil/internal/dictionary"
	"github.com/ppiankov/vigil/internal/metrics"
	"github.com/ppiankov/vigil/internal/model"
	"github.com/sirupsen/logrus"
)

// SegmentWriter stores transcription output
type SegmentWriter interface {
	ClearTranscript(ctx context.Context, sessionID string) error
	SaveSegments(ctx context.Context, sessionID string, segments []model.TranscriptSegment) error
	SaveTranslations(ctx context.Context, sessionID string, translations model.TranslationLookup) error
}

// Transcriber transcribes a session's audio, translates segments that are
// not in the base language, and stores both
type Transcriber struct {
	engine  Engine
	writer  SegmentWriter
	dicts   *dictionary.Set
	metrics *metrics.Recorder
	logger  *logrus.Entry
}

// TranscribeResult summarizes one transcription run
type TranscribeResult struct {
	SessionID    string
	Language     string
	Segments     []model.TranscriptSegment
	Translations model.TranslationLookup
	Failed       int // segments whose translation failed
}

// NewTranscriber creates a transcriber. dicts decides which languages count
// as the base language; recorder may be nil.
func NewTranscriber(engine Engine, writer SegmentWriter, dicts *dictionary.Set, recorder *metrics.Recorder, logger *logrus.Logger) *Transcriber {
	return &Transcriber{
		engine:  engine,
		writer:  writer,
		dicts:   dicts,
		metrics: recorder,
		logger:  logger.WithField("component", "transcriber"),
	}
}

// Transcribe runs the engine on audio and stores the session transcript,
// replacing any transcript the session already had. Translation failures
// are logged and leave the segment untranslated.
func (t *Transcriber) Transcribe(ctx context.Context, sessionID string, audio Audio) (*TranscribeResult, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	done := t.metrics.ObserveSpeech(t.engine.Name(), "transcribe")
	transcript, err := t.engine.Transcribe(ctx, audio)
	done(err)
	if err != nil {
		return nil, fmt.Errorf("transcribe %s: %w", audio.Name, err)
	}

	if err := t.writer.ClearTranscript(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("clear previous transcript: %w", err)
	}
	if err := t.writer.SaveSegments(ctx, sessionID, transcript.Segments); err != nil {
		return nil, fmt.Errorf("save segments: %w", err)
	}

	result := &TranscribeResult{
		SessionID:    sessionID,
		Language:     transcript.Language,
		Segments:     transcript.Segments,
		Translations: make(model.TranslationLookup),
	}

	base := t.dicts.BaseLanguage()
	for _, seg := range transcript.Segments {
		if t.dicts.IsBase(seg.Language) {
			continue
		}

		done := t.metrics.ObserveSpeech(t.engine.Name(), "translate")
		text, err := t.engine.Translate(ctx, seg.Text, seg.Language, base)
		done(err)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			t.logger.WithError(err).WithFields(logrus.Fields{
				"session":  sessionID,
				"segment":  seg.ID,
				"language": seg.Language,
			}).Warn("Translation failed, segment left untranslated")
			result.Failed++
			continue
		}
		result.Translations[seg.ID] = text
	}

	if len(result.Translations) > 0 {
		if err := t.writer.SaveTranslations(ctx, sessionID, result.Translations); err != nil {
			return nil, fmt.Errorf("save translations: %w", err)
		}
	}

	t.logger.WithFields(logrus.Fields{
		"session":      sessionID,
		"engine":       t.engine.Name(),
		"segments":     len(result.Segments),
		"translations": len(result.Translations),
	}).Info("Session transcribed")

	return result, nil
}

package speech

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// FallbackEngine tries a primary engine and falls back to a secondary one
// when the primary fails
type FallbackEngine struct {
	primary   Engine
	secondary Engine
	logger    *logrus.Entry
}

// NewFallbackEngine wraps primary with secondary as a fallback
func NewFallbackEngine(primary, secondary Engine, logger *logrus.Logger) *FallbackEngine {
	return &FallbackEngine{
		primary:   primary,
		secondary: secondary,
		logger:    logger.WithField("component", "speech.fallback"),
	}
}

// Name returns both engine names
func (e *FallbackEngine) Name() string {
	return fmt.Sprintf("%s+%s", e.primary.Name(), e.secondary.Name())
}

// Transcribe uses the primary engine, falling back on error
func (e *FallbackEngine) Transcribe(ctx context.Context, audio Audio) (*Transcript, error) {
	t, err := e.primary.Transcribe(ctx, audio)
	if err == nil {
		return t, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	e.logger.WithError(err).WithFields(logrus.Fields{
		"primary":   e.primary.Name(),
		"secondary": e.secondary.Name(),
		"audio":     audio.Name,
	}).Warn("Primary engine failed to transcribe, falling back")

	t, fbErr := e.secondary.Transcribe(ctx, audio)
	if fbErr != nil {
		return nil, errors.Join(err, fmt.Errorf("fallback %s: %w", e.secondary.Name(), fbErr))
	}
	return t, nil
}

// Translate uses the primary engine, falling back on error
func (e *FallbackEngine) Translate(ctx context.Context, text, from, to string) (string, error) {
	out, err := e.primary.Translate(ctx, text, from, to)
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil {
		return "", err
	}

	e.logger.WithError(err).WithField("primary", e.primary.Name()).Warn("Primary engine failed to translate, falling back")

	out, fbErr := e.secondary.Translate(ctx, text, from, to)
	if fbErr != nil {
		return "", errors.Join(err, fmt.Errorf("fallback %s: %w", e.secondary.Name(), fbErr))
	}
	return out, nil
}

// Close closes both engines
func (e *FallbackEngine) Close() error {
	return errors.Join(e.primary.Close(), e.secondary.Close())
}

package speech

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/vigil/internal/model"
)

// stubEngine fails on demand and counts calls
type stubEngine struct {
	name      string
	fail      bool
	calls     int
	closed    bool
	closeErr  error
	translate string
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) Transcribe(ctx context.Context, audio Audio) (*Transcript, error) {
	s.calls++
	if s.fail {
		return nil, errors.New(s.name + " unavailable")
	}
	return &Transcript{Language: "english", Segments: []model.TranscriptSegment{{ID: "seg-0001", Text: s.name, Language: "english"}}}, nil
}

func (s *stubEngine) Translate(ctx context.Context, text, from, to string) (string, error) {
	s.calls++
	if s.fail {
		return "", errors.New(s.name + " unavailable")
	}
	return s.translate, nil
}

func (s *stubEngine) Close() error {
	s.closed = true
	return s.closeErr
}

func TestFallbackEngine_PrimarySucceeds(t *testing.T) {
	primary := &stubEngine{name: "primary"}
	secondary := &stubEngine{name: "secondary"}
	e := NewFallbackEngine(primary, secondary, quietLogger())

	tr, err := e.Transcribe(context.Background(), Audio{})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Segments[0].Text != "primary" {
		t.Errorf("expected primary transcript, got %q", tr.Segments[0].Text)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary should not be called, got %d calls", secondary.calls)
	}
}

func TestFallbackEngine_FallsBack(t *testing.T) {
	primary := &stubEngine{name: "primary", fail: true}
	secondary := &stubEngine{name: "secondary", translate: "bomb"}
	e := NewFallbackEngine(primary, secondary, quietLogger())

	tr, err := e.Transcribe(context.Background(), Audio{})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Segments[0].Text != "secondary" {
		t.Errorf("expected secondary transcript, got %q", tr.Segments[0].Text)
	}

	out, err := e.Translate(context.Background(), "बम", "hindi", "english")
	if err != nil || out != "bomb" {
		t.Errorf("expected fallback translation, got %q, %v", out, err)
	}
}

func TestFallbackEngine_BothFail(t *testing.T) {
	e := NewFallbackEngine(&stubEngine{name: "primary", fail: true}, &stubEngine{name: "secondary", fail: true}, quietLogger())

	_, err := e.Transcribe(context.Background(), Audio{})
	if err == nil {
		t.Fatal("expected error when both engines fail")
	}
	if !strings.Contains(err.Error(), "primary unavailable") || !strings.Contains(err.Error(), "secondary unavailable") {
		t.Errorf("error should mention both failures: %v", err)
	}
}

func TestFallbackEngine_CancelledContextDoesNotFallBack(t *testing.T) {
	secondary := &stubEngine{name: "secondary"}
	e := NewFallbackEngine(&stubEngine{name: "primary", fail: true}, secondary, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.Transcribe(ctx, Audio{}); err == nil {
		t.Fatal("expected error")
	}
	if secondary.calls != 0 {
		t.Error("secondary should not run after cancellation")
	}
}

func TestFallbackEngine_CloseBoth(t *testing.T) {
	primary := &stubEngine{name: "primary", closeErr: errors.New("close failed")}
	secondary := &stubEngine{name: "secondary"}
	e := NewFallbackEngine(primary, secondary, quietLogger())

	if err := e.Close(); err == nil {
		t.Error("expected close error to propagate")
	}
	if !primary.closed || !secondary.closed {
		t.Error("both engines should be closed")
	}
	if e.Name() != "primary+secondary" {
		t.Errorf("unexpected name %q", e.Name())
	}
}

func TestNewEngine(t *testing.T) {
	logger := quietLogger()

	e, err := NewEngine(model.SpeechConfig{Provider: "mock"}, logger)
	if err != nil {
		t.Fatal(err)
	}
	if e.Name() != "mock" {
		t.Errorf("expected mock engine, got %s", e.Name())
	}

	e, err = NewEngine(model.SpeechConfig{Provider: "openai", APIKey: "k", Fallback: "mock"}, logger)
	if err != nil {
		t.Fatal(err)
	}
	if e.Name() != "openai+mock" {
		t.Errorf("expected fallback chain, got %s", e.Name())
	}
	_ = e.Close()

	if _, err := NewEngine(model.SpeechConfig{Provider: "openai"}, logger); err == nil {
		t.Error("expected error for openai without API key")
	}
	if _, err := NewEngine(model.SpeechConfig{Provider: "acme"}, logger); err == nil {
		t.Error("expected error for unknown provider")
	}
	if _, err := NewEngine(model.SpeechConfig{Provider: "mock", Fallback: "acme"}, logger); err == nil {
		t.Error("expected error for unknown fallback")
	}
}

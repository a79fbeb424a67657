package speech

import (
	"context"
	"testing"

	"github.com/ppiankov/vigil/internal/dictionary"
	"github.com/ppiankov/vigil/internal/metrics"
	"github.com/ppiankov/vigil/internal/store"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestTranscriber(t *testing.T, engine Engine) (*Transcriber, *store.MemoryStore, *metrics.Recorder) {
	t.Helper()

	set, err := dictionary.Builtin()
	if err != nil {
		t.Fatal(err)
	}
	s := store.NewMemoryStore()
	rec := metrics.NewRecorder()
	return NewTranscriber(engine, s, set, rec, quietLogger()), s, rec
}

func TestTranscriber_StoresSegmentsAndTranslations(t *testing.T) {
	tr, s, rec := newTestTranscriber(t, NewMockEngine())
	ctx := context.Background()

	res, err := tr.Transcribe(ctx, "call-1", Audio{
		Name: "call.txt",
		Data: []byte("hello there\n[hindi] अभी बम लाओ\n"),
	})
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	if len(res.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(res.Segments))
	}
	if len(res.Translations) != 1 {
		t.Fatalf("only the Hindi segment should be translated, got %v", res.Translations)
	}
	if res.Translations["seg-0002"] != "now bomb bring" {
		t.Errorf("unexpected translation %q", res.Translations["seg-0002"])
	}

	segs, _ := s.TranscriptSegments(ctx, "call-1")
	if len(segs) != 2 {
		t.Errorf("expected 2 stored segments, got %d", len(segs))
	}
	stored, _ := s.Translations(ctx, "call-1")
	if stored["seg-0002"] != "now bomb bring" {
		t.Errorf("translation not stored: %v", stored)
	}

	if got := testutil.ToFloat64(rec.SpeechRequestsTotal.WithLabelValues("mock", "transcribe", "ok")); got != 1 {
		t.Errorf("expected 1 transcribe request recorded, got %v", got)
	}
	if got := testutil.ToFloat64(rec.SpeechRequestsTotal.WithLabelValues("mock", "translate", "ok")); got != 1 {
		t.Errorf("expected 1 translate request recorded, got %v", got)
	}
}

func TestTranscriber_TranslationFailureIsNotFatal(t *testing.T) {
	engine := &translateFailEngine{MockEngine: NewMockEngine()}
	tr, s, _ := newTestTranscriber(t, engine)
	ctx := context.Background()

	res, err := tr.Transcribe(ctx, "call-2", Audio{Data: []byte("[urdu] ابھی آؤ")})
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if res.Failed != 1 || len(res.Translations) != 0 {
		t.Errorf("expected one failed translation, got failed=%d translations=%v", res.Failed, res.Translations)
	}

	segs, _ := s.TranscriptSegments(ctx, "call-2")
	if len(segs) != 1 {
		t.Errorf("segments should still be stored, got %d", len(segs))
	}
}

func TestTranscriber_ReplacesPreviousTranscript(t *testing.T) {
	tr, s, _ := newTestTranscriber(t, NewMockEngine())
	ctx := context.Background()

	if _, err := tr.Transcribe(ctx, "call-4", Audio{Data: []byte("bomb one\n[hindi] अभी बम लाओ\nbomb three\n")}); err != nil {
		t.Fatalf("first Transcribe failed: %v", err)
	}
	if _, err := tr.Transcribe(ctx, "call-4", Audio{Data: []byte("hello again\n")}); err != nil {
		t.Fatalf("second Transcribe failed: %v", err)
	}

	segs, _ := s.TranscriptSegments(ctx, "call-4")
	if len(segs) != 1 {
		t.Fatalf("expected only the new recording's segment, got %d", len(segs))
	}
	if segs[0].Text != "hello again" {
		t.Errorf("unexpected segment text %q", segs[0].Text)
	}
	if stale, _ := s.Translations(ctx, "call-4"); len(stale) != 0 {
		t.Errorf("stale translations left behind: %v", stale)
	}
}

func TestTranscriber_EngineFailure(t *testing.T) {
	tr, s, _ := newTestTranscriber(t, &stubEngine{name: "broken", fail: true})

	if _, err := tr.Transcribe(context.Background(), "call-3", Audio{Name: "x.wav"}); err == nil {
		t.Fatal("expected error")
	}
	ids, _ := s.Sessions(context.Background())
	if len(ids) != 0 {
		t.Errorf("nothing should be stored, got sessions %v", ids)
	}
}

func TestTranscriber_RequiresSessionID(t *testing.T) {
	tr, _, _ := newTestTranscriber(t, NewMockEngine())
	if _, err := tr.Transcribe(context.Background(), "", Audio{Data: []byte("x")}); err == nil {
		t.Error("expected error for empty session ID")
	}
}

type translateFailEngine struct {
	*MockEngine
}

func (e *translateFailEngine) Translate(ctx context.Context, text, from, to string) (string, error) {
	return "", context.DeadlineExceeded
}

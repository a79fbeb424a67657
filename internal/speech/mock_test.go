package speech

import (
	"context"
	"testing"
)

func TestMockEngine_TextAudio(t *testing.T) {
	e := NewMockEngine()

	audio := Audio{
		Name:     "call.txt",
		Data:     []byte("bring the bomb now\n\n[hi] अभी बम लाओ\n[kashmiri] ابھی آؤ\n"),
		Language: "english",
	}
	tr, err := e.Transcribe(context.Background(), audio)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	if len(tr.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(tr.Segments))
	}

	want := []struct {
		id, text, lang string
		start          float64
	}{
		{"seg-0001", "bring the bomb now", "english", 0},
		{"seg-0002", "अभी बम लाओ", "hindi", 5},
		{"seg-0003", "ابھی آؤ", "urdu", 10},
	}
	for i, w := range want {
		seg := tr.Segments[i]
		if seg.ID != w.id || seg.Text != w.text || seg.Language != w.lang || seg.StartTime != w.start {
			t.Errorf("segment %d = %+v, want %+v", i, seg, w)
		}
		if seg.Confidence == nil || *seg.Confidence < 0.75 || *seg.Confidence > 0.99 {
			t.Errorf("segment %d confidence out of range: %v", i, seg.Confidence)
		}
	}
}

func TestMockEngine_Deterministic(t *testing.T) {
	e := NewMockEngine()
	audio := Audio{Name: "a.wav", Data: []byte{0xff, 0xfe, 0x00, 0x01, 0x02}}

	first, err := e.Transcribe(context.Background(), audio)
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Transcribe(context.Background(), audio)
	if err != nil {
		t.Fatal(err)
	}

	if len(first.Segments) == 0 {
		t.Fatal("binary audio should produce a canned script")
	}
	if len(first.Segments) != len(second.Segments) {
		t.Fatalf("segment counts differ: %d vs %d", len(first.Segments), len(second.Segments))
	}
	for i := range first.Segments {
		a, b := first.Segments[i], second.Segments[i]
		if a.Text != b.Text || *a.Confidence != *b.Confidence {
			t.Errorf("segment %d differs between runs: %+v vs %+v", i, a, b)
		}
	}
}

func TestMockEngine_Translate(t *testing.T) {
	e := NewMockEngine()

	tests := []struct {
		text, from, want string
	}{
		{"अभी बम लाओ", "hindi", "now bomb bring"},
		{"ابھی بازار آؤ", "ur", "now market come"},
		{"बम xyz", "hindi", "bomb xyz"},
		{"already english", "english", "already english"},
	}

	for _, tt := range tests {
		got, err := e.Translate(context.Background(), tt.text, tt.from, "english")
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.text, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Translate(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestMockEngine_TranslateOnlyIntoBase(t *testing.T) {
	if _, err := NewMockEngine().Translate(context.Background(), "bomb", "english", "hindi"); err == nil {
		t.Error("expected error translating out of the base language")
	}
}

func TestMockEngine_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewMockEngine().Transcribe(ctx, Audio{Data: []byte("x")}); err == nil {
		t.Error("expected context error")
	}
}

func TestRouteLanguage(t *testing.T) {
	tests := map[string]string{
		"kashmiri": "urdu",
		"KS":       "urdu",
		"hi":       "hindi",
		"en":       "english",
		" Urdu ":   "urdu",
		"spanish":  "spanish",
		"":         "",
	}
	for in, want := range tests {
		if got := RouteLanguage(in); got != want {
			t.Errorf("RouteLanguage(%q) = %q, want %q", in, got, want)
		}
	}

	if languageCode("kashmiri") != "ur" {
		t.Errorf("expected Kashmiri to use the Urdu model code")
	}
	if languageCode("klingon") != "" {
		t.Errorf("unknown languages should have no code")
	}
}

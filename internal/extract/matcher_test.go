package extract

import (
	"strings"
	"testing"

	"github.com/ppiankov/vigil/internal/dictionary"
	"github.com/ppiankov/vigil/internal/model"
)

func newTestMatcher(t *testing.T) *Matcher {
	t.Helper()
	set, err := dictionary.Builtin()
	if err != nil {
		t.Fatalf("Builtin() error: %v", err)
	}
	return NewMatcher(set)
}

func TestMatcher_BasicMatch(t *testing.T) {
	m := newTestMatcher(t)

	matches := m.Match("They will plant the BOMB now.", "english")
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d: %+v", len(matches), matches)
	}

	if matches[0].Word != "bomb" || matches[0].Category != model.CategoryWeapons {
		t.Errorf("first match = %+v, want bomb/weapons", matches[0])
	}
	if matches[1].Word != "now" || matches[1].Category != model.CategoryUrgency {
		t.Errorf("second match = %+v, want now/urgency", matches[1])
	}
	for _, match := range matches {
		if match.Language != "english" {
			t.Errorf("expected language english, got %q", match.Language)
		}
	}
}

func TestMatcher_CanonicalSpelling(t *testing.T) {
	m := newTestMatcher(t)

	matches := m.Match("GRENADE", "english")
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Word != "grenade" {
		t.Errorf("expected canonical dictionary spelling, got %q", matches[0].Word)
	}
}

func TestMatcher_NoSubstringMatching(t *testing.T) {
	m := newTestMatcher(t)

	for _, text := range []string{"bombastic speech", "gunner", "knowledge", "snow"} {
		if matches := m.Match(text, "english"); len(matches) != 0 {
			t.Errorf("Match(%q) should be empty, got %+v", text, matches)
		}
	}
}

func TestMatcher_ContextWindow(t *testing.T) {
	m := newTestMatcher(t)

	text := "one two three four five six bomb seven eight nine ten eleven twelve"
	matches := m.Match(text, "english")
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}

	want := "two three four five six bomb seven eight nine ten eleven"
	if matches[0].Context != want {
		t.Errorf("context = %q, want %q", matches[0].Context, want)
	}
}

func TestMatcher_ContextWindowAtEdges(t *testing.T) {
	m := newTestMatcher(t)

	matches := m.Match("bomb   the\tmarket", "english")
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Context != "bomb the market" {
		t.Errorf("context should be single-space joined, got %q", matches[0].Context)
	}
}

func TestMatcher_MultiWordEntry(t *testing.T) {
	m := newTestMatcher(t)

	matches := m.Match("we will blow up the bridge", "english")

	var found bool
	for _, match := range matches {
		if match.Word == "blow up" {
			found = true
			if match.Category != model.CategoryViolentActions {
				t.Errorf("blow up category = %s", match.Category)
			}
			if !strings.Contains(match.Context, "blow up the bridge") {
				t.Errorf("context should span the phrase, got %q", match.Context)
			}
		}
	}
	if !found {
		t.Errorf("expected phrase match for 'blow up', got %+v", matches)
	}

	if matches := m.Match("blow", "english"); len(matches) != 0 {
		t.Errorf("partial phrase must not match, got %+v", matches)
	}
}

func TestMatcher_LanguageSpecific(t *testing.T) {
	m := newTestMatcher(t)

	matches := m.Match("बाजार में बम है अभी", "hindi")
	if len(matches) != 3 {
		t.Fatalf("expected 3 hindi matches, got %d: %+v", len(matches), matches)
	}

	wantWords := []string{"बाजार", "बम", "अभी"}
	for i, w := range wantWords {
		if matches[i].Word != w {
			t.Errorf("match %d = %q, want %q", i, matches[i].Word, w)
		}
		if matches[i].Language != "hindi" {
			t.Errorf("match %d language = %q, want hindi", i, matches[i].Language)
		}
	}

	// English words are not in the hindi dictionary
	if matches := m.Match("bomb now", "hindi"); len(matches) != 0 {
		t.Errorf("expected no matches for english text against hindi, got %+v", matches)
	}
}

func TestMatcher_UnknownLanguageFallsBack(t *testing.T) {
	m := newTestMatcher(t)

	matches := m.Match("bomb", "klingon")
	if len(matches) != 1 {
		t.Fatalf("expected fallback to english dictionary, got %d matches", len(matches))
	}
	if matches[0].Language != "english" {
		t.Errorf("fallback match language = %q, want english", matches[0].Language)
	}
}

func TestMatcher_EmptyText(t *testing.T) {
	m := newTestMatcher(t)

	if matches := m.Match("", "english"); len(matches) != 0 {
		t.Errorf("expected no matches for empty text, got %d", len(matches))
	}
}

func TestMatcher_DeterministicOrder(t *testing.T) {
	m := newTestMatcher(t)

	text := "attack the market with a bomb tonight and kill the police now"
	first := m.Match(text, "english")
	for i := 0; i < 20; i++ {
		again := m.Match(text, "english")
		if len(again) != len(first) {
			t.Fatalf("run %d: match count changed %d -> %d", i, len(first), len(again))
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("run %d: match %d changed: %+v vs %+v", i, j, first[j], again[j])
			}
		}
	}
}

func TestMatcher_CategoryOrderWithinToken(t *testing.T) {
	langs := map[string]map[model.Category][]string{
		"english": {
			model.CategoryViolentActions: {"strike"},
			model.CategoryWeapons:        {},
			model.CategoryEvents:         {"strike"},
			model.CategoryTargets:        {},
			model.CategoryUrgency:        {},
		},
	}
	set, err := dictionary.New("test", "english", langs, nil)
	if err != nil {
		t.Fatal(err)
	}

	matches := NewMatcher(set).Match("general strike", "english")
	if len(matches) != 2 {
		t.Fatalf("expected one match per category, got %d", len(matches))
	}
	if matches[0].Category != model.CategoryViolentActions || matches[1].Category != model.CategoryEvents {
		t.Errorf("categories out of canonical order: %s, %s", matches[0].Category, matches[1].Category)
	}
}

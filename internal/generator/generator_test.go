package generator

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/keydrill/keydrill/internal/engine"
)

func TestGenerateCountAndPool(t *testing.T) {
	g := NewWithSeed(1)
	pool := []string{"ink", "pen", "key"}
	got := g.Generate(pool, Options{Words: 10})
	if len(got) != 10 {
		t.Fatalf("got %d words, want 10", len(got))
	}
	allowed := map[string]bool{"ink": true, "pen": true, "key": true}
	for _, w := range got {
		if !allowed[w] {
			t.Fatalf("word %q is not from the pool", w)
		}
	}
}

func TestGenerateAppliesLengthCap(t *testing.T) {
	g := NewWithSeed(2)
	pool := []string{"a", "keyboard", "pen", "typewriter"}
	got := g.Generate(pool, Options{Words: 20, MaxWordLen: 3})
	for _, w := range got {
		if utf8.RuneCountInString(w) > 3 {
			t.Fatalf("word %q exceeds length cap", w)
		}
	}
}

func TestGenerateKeepsPoolWhenCapEmptiesIt(t *testing.T) {
	g := NewWithSeed(3)
	pool := []string{"keyboard", "typewriter"}
	got := g.Generate(pool, Options{Words: 5, MaxWordLen: 3})
	if len(got) != 5 {
		t.Fatalf("got %d words, want 5", len(got))
	}
}

func TestGenerateCapsAndPunct(t *testing.T) {
	g := NewWithSeed(4)
	pool := []string{"word"}
	got := g.Generate(pool, Options{Words: 50, CapsPct: 1, PunctPct: 1, PunctSet: []rune{'.'}})
	for _, w := range got {
		if w != "Word." {
			t.Fatalf("got %q, want %q", w, "Word.")
		}
	}
}

func TestGenerateFallsBackToDefaultPunctSet(t *testing.T) {
	g := NewWithSeed(6)
	pool := []string{"word"}
	got := g.Generate(pool, Options{Words: 50, PunctPct: 1})
	for _, w := range got {
		if w == "word" {
			t.Fatalf("expected punctuation from the default set, got bare %q", w)
		}
		if !strings.ContainsRune(DefaultPunctSet, []rune(w)[len([]rune(w))-1]) {
			t.Fatalf("word %q does not end with a default punctuation rune", w)
		}
	}
}

func TestGenerateWeightedPrefersWeakChars(t *testing.T) {
	g := NewWithSeed(5)
	pool := []string{"zzz", "aaa"}
	weak := map[rune]struct{}{'z': {}}
	got := g.Generate(pool, Options{Words: 200, WeakSet: weak, WeakFactor: 10})
	weakHits := 0
	for _, w := range got {
		if strings.Contains(w, "z") {
			weakHits++
		}
	}
	if weakHits <= 120 {
		t.Fatalf("expected weighting toward weak chars, got %d of 200", weakHits)
	}
}

func TestPresetPerLevel(t *testing.T) {
	easy := Preset(engine.LevelEasy)
	if easy.MaxWordLen != 5 || easy.CapsPct != 0 || easy.PunctPct != 0 {
		t.Fatalf("unexpected easy preset: %+v", easy)
	}
	medium := Preset(engine.LevelMedium)
	if medium.MaxWordLen != 8 || medium.CapsPct <= 0 {
		t.Fatalf("unexpected medium preset: %+v", medium)
	}
	hard := Preset(engine.LevelHard)
	if hard.MaxWordLen != 0 || hard.PunctPct <= medium.PunctPct {
		t.Fatalf("unexpected hard preset: %+v", hard)
	}
}

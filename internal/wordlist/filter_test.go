package wordlist

import (
	"reflect"
	"testing"
)

func TestFilterEnglishASCII(t *testing.T) {
	filter := FilterForLang("en")
	if !filter("hello") {
		t.Fatalf("expected hello to pass english filter")
	}
	for _, word := range []string{"résumé", "naïve", "don’t", "co-op"} {
		if filter(word) {
			t.Fatalf("expected %q to be rejected", word)
		}
	}
}

func TestFilterMaxLen(t *testing.T) {
	filter := FilterMaxLen(5)
	if !filter("hello") {
		t.Fatalf("expected hello to pass length cap of 5")
	}
	if filter("keyboard") {
		t.Fatalf("expected keyboard to be rejected by length cap of 5")
	}
	if !FilterMaxLen(2)("né") {
		t.Fatalf("expected cap to count runes, not bytes")
	}
	if !FilterMaxLen(0)("uncapped") {
		t.Fatalf("expected non-positive cap to keep everything")
	}
}

func TestApplyCombinesFilters(t *testing.T) {
	words := []string{"ink", "résumé", "keyboard", "pen"}
	got := Apply(words, FilterForLang("en"), FilterMaxLen(5))
	want := []string{"ink", "pen"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

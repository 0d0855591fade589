// Package wordlist provides word list filtering helpers.
package wordlist

import (
	"strings"
	"unicode/utf8"
)

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// FilterForLang returns a language-specific filter for word lists.
func FilterForLang(lang string) FilterFunc {
	switch strings.ToLower(lang) {
	case "en":
		return filterEnglishASCII
	default:
		return func(string) bool { return true }
	}
}

// FilterMaxLen keeps words of at most max runes. A non-positive max keeps everything.
func FilterMaxLen(max int) FilterFunc {
	if max <= 0 {
		return func(string) bool { return true }
	}
	return func(word string) bool {
		return utf8.RuneCountInString(word) <= max
	}
}

// Apply returns the words accepted by every filter, preserving order.
func Apply(words []string, filters ...FilterFunc) []string {
	kept := make([]string, 0, len(words))
next:
	for _, word := range words {
		for _, keep := range filters {
			if !keep(word) {
				continue next
			}
		}
		kept = append(kept, word)
	}
	return kept
}

func filterEnglishASCII(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		ch := word[i]
		if ch < 'a' || ch > 'z' {
			return false
		}
	}
	return true
}

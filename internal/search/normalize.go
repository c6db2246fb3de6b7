// Package search normalizes raw address search input and builds the
// ordered, deduplicated candidate set consumed by the Query Engine.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Mode selects how a candidate term is matched against the store.
type Mode string

const (
	ModeExact   Mode = "exact"
	ModePrefix  Mode = "prefix"
	ModePartial Mode = "partial"
)

// ParseMode maps a query-string mode value to a Mode, defaulting to
// ModePartial for an empty or unrecognized value.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeExact, ModePrefix, ModePartial:
		return Mode(s)
	default:
		return ModePartial
	}
}

// BuildTerm renders the match term for a candidate under the given mode.
func BuildTerm(mode Mode, candidate string) string {
	switch mode {
	case ModeExact:
		return candidate
	case ModePrefix:
		return candidate + "%"
	default:
		return "%" + candidate + "%"
	}
}

// Normalize NFKC-normalizes input and strips all Unicode whitespace.
func Normalize(input string) string {
	normalized := norm.NFKC.String(input)
	var b strings.Builder
	b.Grow(len(normalized))
	for _, r := range normalized {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

const (
	hiraganaLow  = 0x3041
	hiraganaHigh = 0x3096
	katakanaLow  = 0x30A1
	katakanaHigh = 0x30F6
	kanaShift    = 0x60
)

// HiraganaToKatakana maps hiragana U+3041..U+3096 to katakana by adding
// 0x60; other code points pass through unchanged.
func HiraganaToKatakana(input string) string {
	return foldKana(input, hiraganaLow, hiraganaHigh, kanaShift)
}

// KatakanaToHiragana maps katakana U+30A1..U+30F6 to hiragana by
// subtracting 0x60; other code points pass through unchanged.
func KatakanaToHiragana(input string) string {
	return foldKana(input, katakanaLow, katakanaHigh, -kanaShift)
}

func foldKana(input string, low, high rune, shift rune) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if r >= low && r <= high {
			b.WriteRune(r + shift)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// BuildCandidates returns the ordered, unique, non-empty candidate set for a
// normalized address: the input itself, its katakana form, and its
// hiragana form.
func BuildCandidates(normalizedAddress string) []string {
	candidates := make([]string, 0, 3)
	candidates = pushUnique(candidates, normalizedAddress)
	candidates = pushUnique(candidates, HiraganaToKatakana(normalizedAddress))
	candidates = pushUnique(candidates, KatakanaToHiragana(normalizedAddress))
	return candidates
}

func pushUnique(candidates []string, candidate string) []string {
	if candidate == "" {
		return candidates
	}
	for _, c := range candidates {
		if c == candidate {
			return candidates
		}
	}
	return append(candidates, candidate)
}

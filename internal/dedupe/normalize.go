// Package dedupe is the review deduplication core: text normalization,
// deterministic fingerprinting, in-batch dedup and an advisory near-duplicate
// check. Everything in here is a pure function over its inputs so the same
// code can run in the API, the importer, or any other execution context
// without drift.
package dedupe

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and drops combining marks, so "é" and "e"
// compare equal. Recomposition is unnecessary since marks are gone.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Normalize produces the canonical comparison form of free text: diacritics
// stripped, lowercased, only letters/digits/whitespace kept, whitespace runs
// collapsed, trimmed. Idempotent; empty input normalizes to "".
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		// Transform failures only happen on broken UTF-8; fall back to the
		// raw input so the function never fails outright.
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	lastSpace := true // swallows leading whitespace
	for _, r := range folded {
		switch {
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			lastSpace = false
		}
		// punctuation and control characters are dropped
	}
	return strings.TrimRight(b.String(), " ")
}

// dateLayouts are the shapes import sources actually produce, most specific
// first. Anything else counts as "no date".
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// ParseDate leniently parses a date-like string in UTC. Unparseable or empty
// input returns the zero time, which the rest of the package treats as
// "date unknown".
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

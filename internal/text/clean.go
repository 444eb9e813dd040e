package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var foldCaser = cases.Fold()

// Fold lowercases s with full Unicode case folding, for keyword matching.
func Fold(s string) string {
	return foldCaser.String(s)
}

// CleanOCR normalizes text recognized from an image: NFKC composition,
// control characters stripped, whitespace runs collapsed per line. OCR
// engines emit stray form feeds and fancy-quote codepoints that would
// otherwise defeat the pattern matchers.
func CleanOCR(s string) string {
	s = norm.NFKC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n':
			b.WriteRune(r)
		case unicode.IsControl(r):
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}

	lines := strings.Split(b.String(), "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

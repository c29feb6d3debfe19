// Package textproc normalizes raw text extracted from PDF documents
// before it is chunked and embedded.
package textproc

import (
	"regexp"
	"strings"
)

var (
	newlineRunRe   = regexp.MustCompile(`\n+`)
	spaceTabRe     = regexp.MustCompile(`[ \t]+`)
	blankLineRe    = regexp.MustCompile(`\n\s*\n`)
	disallowedRe   = regexp.MustCompile(`[^A-Za-z0-9.,:;?!()\n ]+`)
	multipleSpaces = regexp.MustCompile(` +`)
)

// Clean collapses repeated whitespace and strips characters outside
// the permitted set (letters, digits, basic punctuation, parentheses,
// newline, space). Applying Clean twice yields the same result as
// applying it once.
func Clean(text string) string {
	// Stripping can expose new whitespace runs (a line made entirely
	// of junk characters collapses into a blank line), so the passes
	// repeat until the text stops changing.
	for {
		next := cleanPass(text)
		if next == text {
			return next
		}
		text = next
	}
}

func cleanPass(text string) string {
	text = newlineRunRe.ReplaceAllString(text, "\n")
	text = spaceTabRe.ReplaceAllString(text, " ")
	text = blankLineRe.ReplaceAllString(text, "\n")
	text = disallowedRe.ReplaceAllString(text, "")
	text = multipleSpaces.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Package textnorm normalizes generated text before it is inserted into a
// document. Model output frequently contains typographic characters (smart
// quotes, en/em dashes, non-breaking spaces) that render poorly in resumes
// and break literal matching on later passes, so they are mapped to plain
// ASCII equivalents.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// replacements maps known typographic characters to ASCII equivalents.
// Characters without an entry are left in place and reported as unfixable.
var replacements = map[rune]string{
	// Space-like characters
	'\u00A0': " ", // no-break space
	'\u1680': " ",
	'\u2000': " ",
	'\u2001': " ",
	'\u2002': " ",
	'\u2003': " ",
	'\u2004': " ",
	'\u2005': " ",
	'\u2006': " ",
	'\u2007': " ",
	'\u2008': " ",
	'\u2009': " ",
	'\u200A': " ",
	'\u202F': " ",
	'\u205F': " ",
	'\u3000': " ",

	// Zero-width characters and joiners
	'\u200B': "",
	'\u200C': "",
	'\u200D': "",
	'\u2060': "",
	'\uFEFF': "",

	// Quotes
	'‘': "'",
	'’': "'",
	'‚': "'",
	'‛': "'",
	'“': `"`,
	'”': `"`,
	'„': `"`,
	'‟': `"`,
	'«': `"`,
	'»': `"`,
	'′': "'",
	'″': `"`,

	// Dashes and hyphens
	'‐': "-",
	'‑': "-",
	'‒': "-",
	'–': "-",
	'—': "-",
	'―': "-",
	'⁃': "-",
	'−': "-",

	// Ellipsis
	'…': "...",

	// Line and paragraph separators
	'\u2028': "\n",
	'\u2029': "\n",
	'\u00AD': "", // soft hyphen

	// Bullets and interpuncts
	'·': ".",
	'•': "-",
	'‣': "-",
	'▪': "-",
	'●': "-",
	'◦': "-",
	'․': ".",
	'‧': ".",
	'⋅': ".",

	'°': "deg",
}

// Replacement describes a single character substitution made by ToASCII.
type Replacement struct {
	Original    rune
	Replacement string
	Count       int
	Unfixable   bool
}

// ToASCII replaces known non-ASCII characters with ASCII equivalents.
// Characters without a mapping are left in place and reported as unfixable.
// Returns the normalized text and a report of every substitution made.
func ToASCII(text string) (string, []Replacement) {
	if isASCII(text) {
		return text, nil
	}

	counts := make(map[rune]int)
	unfixable := make(map[rune]bool)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
			continue
		}
		if repl, ok := replacements[r]; ok {
			counts[r]++
			b.WriteString(repl)
			continue
		}
		// No mapping: leave the character alone rather than guessing.
		counts[r]++
		unfixable[r] = true
		b.WriteRune(r)
	}

	report := make([]Replacement, 0, len(counts))
	for r, n := range counts {
		rep := Replacement{Original: r, Count: n}
		if unfixable[r] {
			rep.Unfixable = true
		} else {
			rep.Replacement = replacements[r]
		}
		report = append(report, rep)
	}
	return b.String(), report
}

// Newlines rewrites CRLF and CR line endings to LF.
func Newlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// CollapseBlankLines trims trailing whitespace from each line and collapses
// runs of three or more newlines down to two.
func CollapseBlankLines(text string) string {
	lines := strings.Split(Newlines(text), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	out := strings.Join(lines, "\n")
	for strings.Contains(out, "\n\n\n") {
		out = strings.ReplaceAll(out, "\n\n\n", "\n\n")
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

package gdoc

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

// Mode selects how many occurrences a search should yield.
type Mode int

const (
	// ModeFirst patches only the earliest occurrence.
	ModeFirst Mode = iota
	// ModeAll patches every occurrence.
	ModeAll
)

// Span is a half-open byte range into a snapshot's flat text.
type Span struct {
	Start int
	End   int
}

// Match is the outcome of searching flat text for a block.
type Match struct {
	Spans []Span
	// Literal is true when the block was found by exact substring search.
	// Literal matches are safe for the service's own text-replacement
	// operations; fuzzy matches are not.
	Literal bool
}

// Whitespace tolerated between and within lines: ASCII whitespace, every
// Unicode space separator, zero-width characters, and line/paragraph
// separators.
const fuzzySpace = `[\s\p{Zs}\x{200B}-\x{200D}\x{2060}\x{FEFF}\x{2028}\x{2029}]+`

// A leading list marker: *, -, bullet, en/em dash, or a short number with a
// dot or parenthesis. The marker must be followed by spacing so that text
// like "-40%" is not mistaken for a bullet.
var bulletPrefixRe = regexp.MustCompile(`^(?:[*\-\x{2022}\x{2013}\x{2014}]|\d{1,2}[.)])[ \t]+`)

const optionalBulletPattern = `(?:(?:[*\-\x{2022}\x{2013}\x{2014}]|\d{1,2}[.)])[ \t]+)?`

// FindBlock searches flat text for a block of original content. The literal
// substring search runs first and covers the common case where the document
// still contains the stored text byte for byte. When that fails the block is
// compiled into a tolerant pattern: whitespace runs match any whitespace,
// and per-line bullet markers are optional on both sides because list glyphs
// in the document are paragraph styling, not characters.
//
// A block that cannot be found yields a Match with no spans; the caller
// decides whether that is an error.
func FindBlock(flat, block string, mode Mode) Match {
	block = strings.TrimSpace(block)
	if block == "" {
		return Match{}
	}

	if spans := literalSpans(flat, block, mode); len(spans) > 0 {
		return Match{Spans: spans, Literal: true}
	}

	re, err := compileFuzzy(block)
	if err != nil {
		return Match{}
	}

	if mode == ModeFirst {
		loc := re.FindStringIndex(flat)
		if loc == nil {
			return Match{}
		}
		return Match{Spans: []Span{{Start: loc[0], End: loc[1]}}}
	}

	locs := re.FindAllStringIndex(flat, -1)
	spans := make([]Span, 0, len(locs))
	for _, loc := range locs {
		spans = append(spans, Span{Start: loc[0], End: loc[1]})
	}
	return Match{Spans: spans}
}

// literalSpans finds non-overlapping exact occurrences, earliest first.
func literalSpans(flat, block string, mode Mode) []Span {
	var spans []Span
	for from := 0; ; {
		i := strings.Index(flat[from:], block)
		if i < 0 {
			break
		}
		start := from + i
		spans = append(spans, Span{Start: start, End: start + len(block)})
		if mode == ModeFirst {
			break
		}
		from = start + len(block)
	}
	return spans
}

// compileFuzzy renders the block as a regular expression. Each line
// contributes an optional bullet marker plus its content with whitespace
// runs widened; lines are joined by the whitespace class so differing line
// endings and collapsed blank lines still match. Blank lines carry no
// content of their own and are dropped.
func compileFuzzy(block string) (*regexp.Regexp, error) {
	var parts []string
	for _, line := range strings.FieldsFunc(block, func(r rune) bool {
		return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
	}) {
		line = strings.TrimFunc(line, isFuzzySpace)
		if line == "" {
			continue
		}
		line = bulletPrefixRe.ReplaceAllString(line, "")
		parts = append(parts, optionalBulletPattern+fuzzyLine(line))
	}
	if len(parts) == 0 {
		return nil, errors.New("block has no matchable content")
	}
	return regexp.Compile(strings.Join(parts, fuzzySpace))
}

// fuzzyLine quotes a single line, replacing each maximal whitespace run with
// the tolerant whitespace pattern.
func fuzzyLine(line string) string {
	var b strings.Builder
	var literal []rune
	flush := func() {
		if len(literal) > 0 {
			b.WriteString(regexp.QuoteMeta(string(literal)))
			literal = literal[:0]
		}
	}

	inSpace := false
	for _, r := range line {
		if isFuzzySpace(r) {
			if !inSpace {
				flush()
				b.WriteString(fuzzySpace)
				inSpace = true
			}
			continue
		}
		inSpace = false
		literal = append(literal, r)
	}
	flush()
	return b.String()
}

func isFuzzySpace(r rune) bool {
	switch r {
	case '\u200B', '\u200C', '\u200D', '\u2060', '\uFEFF':
		return true
	}
	return unicode.IsSpace(r)
}

// StripBulletPrefixes removes literal list markers from the start of every
// line. Inserted text destined for a bulleted paragraph must not carry its
// own glyphs or the document renders double bullets.
func StripBulletPrefixes(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		lines[i] = bulletPrefixRe.ReplaceAllString(trimmed, "")
	}
	return strings.Join(lines, "\n")
}

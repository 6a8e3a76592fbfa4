package gdoc

import (
	"strings"
	"unicode/utf8"

	docs "google.golang.org/api/docs/v1"
)

// Segment maps a contiguous span of the flattened text back to the native
// index range of the text run it came from. Flat offsets are byte offsets
// into Snapshot.FlatText; native offsets count one unit per character within
// the run, matching the Docs addressing scheme.
type Segment struct {
	FlatStart   int
	FlatEnd     int
	NativeStart int64
	NativeEnd   int64
}

// Range is a half-open native index range.
type Range struct {
	Start int64
	End   int64
}

// Snapshot is an immutable flattened projection of one document revision.
// Segments are contiguous and ordered by FlatStart. It is rebuilt for every
// patch attempt and must never outlive the revision it was built from.
type Snapshot struct {
	FlatText string
	Segments []Segment
	// Bullets holds the native ranges of paragraphs that carry list styling.
	Bullets []Range
}

// BuildSnapshot flattens a document into plain text plus the offset
// translation table. The walk visits block elements depth first in document
// order so FlatText reads in natural reading order; table cells and table of
// contents entries are recursed into. Runs without a usable native address
// are excluded entirely, which makes them invisible to matching rather than
// mismapped.
func BuildSnapshot(doc *docs.Document) *Snapshot {
	b := &snapshotBuilder{}
	if doc != nil && doc.Body != nil {
		b.walk(doc.Body.Content)
	}
	return &Snapshot{
		FlatText: b.text.String(),
		Segments: b.segments,
		Bullets:  b.bullets,
	}
}

type snapshotBuilder struct {
	text     strings.Builder
	segments []Segment
	bullets  []Range
}

func (b *snapshotBuilder) walk(elements []*docs.StructuralElement) {
	for _, el := range elements {
		if el == nil {
			continue
		}
		switch {
		case el.Paragraph != nil:
			b.paragraph(el.Paragraph)
		case el.Table != nil:
			for _, row := range el.Table.TableRows {
				if row == nil {
					continue
				}
				for _, cell := range row.TableCells {
					if cell != nil {
						b.walk(cell.Content)
					}
				}
			}
		case el.TableOfContents != nil:
			b.walk(el.TableOfContents.Content)
		}
	}
}

func (b *snapshotBuilder) paragraph(p *docs.Paragraph) {
	var paraStart, paraEnd int64
	var sawRun bool

	for _, pe := range p.Elements {
		if pe == nil || pe.TextRun == nil {
			continue
		}
		content := pe.TextRun.Content
		if content == "" || !validRunAddress(pe, content) {
			continue
		}

		flatStart := b.text.Len()
		b.text.WriteString(content)
		b.segments = append(b.segments, Segment{
			FlatStart:   flatStart,
			FlatEnd:     b.text.Len(),
			NativeStart: pe.StartIndex,
			NativeEnd:   pe.EndIndex,
		})

		if !sawRun {
			paraStart = pe.StartIndex
			sawRun = true
		}
		paraEnd = pe.EndIndex
	}

	if sawRun && p.Bullet != nil {
		b.bullets = append(b.bullets, Range{Start: paraStart, End: paraEnd})
	}
}

// validRunAddress reports whether a run's native range is usable: present,
// well ordered, and sized one unit per character. Runs containing characters
// outside the basic plane occupy extra native units; those are skipped rather
// than mapped approximately.
func validRunAddress(pe *docs.ParagraphElement, content string) bool {
	if pe.EndIndex <= pe.StartIndex {
		return false
	}
	return pe.EndIndex-pe.StartIndex == int64(utf8.RuneCountInString(content))
}

// Translate maps a flat-text span to native start and end indexes via the
// segment table. It fails with ErrUntranslatable when the span crosses a
// native discontinuity, which happens when the span straddles a skipped run,
// a non-text element, or a structural boundary such as adjacent table cells.
func (s *Snapshot) Translate(span Span) (int64, int64, error) {
	if span.Start < 0 || span.End > len(s.FlatText) || span.Start >= span.End {
		return 0, 0, ErrUntranslatable
	}

	first := s.segmentAt(span.Start)
	last := s.segmentAt(span.End - 1)
	if first < 0 || last < 0 {
		return 0, 0, ErrUntranslatable
	}

	// The delete range must be one contiguous native span. Any native gap
	// between covered segments means content we cannot address sits inside
	// the match.
	for i := first; i < last; i++ {
		if s.Segments[i+1].NativeStart != s.Segments[i].NativeEnd {
			return 0, 0, ErrUntranslatable
		}
	}

	fs := s.Segments[first]
	ls := s.Segments[last]
	start := fs.NativeStart + runeOffset(s.FlatText, fs.FlatStart, span.Start)
	end := ls.NativeStart + runeOffset(s.FlatText, ls.FlatStart, span.End)
	return start, end, nil
}

// segmentAt returns the index of the segment whose flat range contains the
// byte offset, or -1. Containment is strict: a segment that merely abuts the
// offset does not count.
func (s *Snapshot) segmentAt(off int) int {
	lo, hi := 0, len(s.Segments)
	for lo < hi {
		mid := (lo + hi) / 2
		seg := s.Segments[mid]
		switch {
		case off < seg.FlatStart:
			hi = mid
		case off >= seg.FlatEnd:
			lo = mid + 1
		default:
			return mid
		}
	}
	return -1
}

// Bulleted reports whether any part of the native range falls inside a
// bulleted paragraph.
func (s *Snapshot) Bulleted(start, end int64) bool {
	for _, r := range s.Bullets {
		if start < r.End && end > r.Start {
			return true
		}
	}
	return false
}

// runeOffset counts characters between two byte offsets of text.
func runeOffset(text string, from, to int) int64 {
	return int64(utf8.RuneCountInString(text[from:to]))
}

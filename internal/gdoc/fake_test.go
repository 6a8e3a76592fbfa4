package gdoc

import (
	"context"
	"fmt"
	"strings"

	docs "google.golang.org/api/docs/v1"
)

// fakeDocs is an in-memory DocumentService. It models a document as a flat
// run of characters (native index base 1, one unit per character) with a
// per-character list flag, and rebuilds a paragraph/run tree on every Get.
// Requests in a batch apply sequentially against the mutating state, the
// same way the real service applies them.
type fakeDocs struct {
	chars       []rune
	bullet      []bool
	namedRanges map[string]Range
	batches     int
}

// newFakeDoc builds a document from paragraph text (without trailing
// newlines) and a set of bulleted paragraph indexes.
func newFakeDoc(paragraphs []string, bulleted ...int) *fakeDocs {
	f := &fakeDocs{namedRanges: map[string]Range{}}
	marks := map[int]bool{}
	for _, i := range bulleted {
		marks[i] = true
	}
	for i, p := range paragraphs {
		for _, r := range p + "\n" {
			f.chars = append(f.chars, r)
			f.bullet = append(f.bullet, marks[i])
		}
	}
	return f
}

func (f *fakeDocs) Get(_ context.Context, _ string) (*docs.Document, error) {
	doc := &docs.Document{Body: &docs.Body{}}
	start := int64(1)
	var para []rune
	var paraBulleted bool
	flush := func() {
		if len(para) == 0 {
			return
		}
		end := start + int64(len(para))
		p := &docs.Paragraph{
			Elements: []*docs.ParagraphElement{{
				StartIndex: start,
				EndIndex:   end,
				TextRun:    &docs.TextRun{Content: string(para)},
			}},
		}
		if paraBulleted {
			p.Bullet = &docs.Bullet{ListId: "list"}
		}
		doc.Body.Content = append(doc.Body.Content, &docs.StructuralElement{
			StartIndex: start,
			EndIndex:   end,
			Paragraph:  p,
		})
		start = end
		para = nil
		paraBulleted = false
	}
	for i, r := range f.chars {
		para = append(para, r)
		if f.bullet[i] {
			paraBulleted = true
		}
		if r == '\n' {
			flush()
		}
	}
	flush()
	return doc, nil
}

func (f *fakeDocs) BatchUpdate(_ context.Context, _ string, reqs []*docs.Request) error {
	f.batches++
	for _, req := range reqs {
		switch {
		case req.DeleteContentRange != nil:
			f.delete(req.DeleteContentRange.Range.StartIndex, req.DeleteContentRange.Range.EndIndex)
		case req.InsertText != nil:
			f.insert(req.InsertText.Location.Index, req.InsertText.Text, false)
		case req.CreateParagraphBullets != nil:
			f.markBullets(req.CreateParagraphBullets.Range.StartIndex, req.CreateParagraphBullets.Range.EndIndex)
		case req.CreateNamedRange != nil:
			f.namedRanges[req.CreateNamedRange.Name] = Range{
				Start: req.CreateNamedRange.Range.StartIndex,
				End:   req.CreateNamedRange.Range.EndIndex,
			}
		case req.ReplaceNamedRangeContent != nil:
			r, ok := f.namedRanges[req.ReplaceNamedRangeContent.NamedRangeName]
			if !ok {
				return fmt.Errorf("unknown named range %q", req.ReplaceNamedRangeContent.NamedRangeName)
			}
			f.delete(r.Start, r.End)
			f.insert(r.Start, req.ReplaceNamedRangeContent.Text, false)
		case req.DeleteNamedRange != nil:
			delete(f.namedRanges, req.DeleteNamedRange.Name)
		case req.ReplaceAllText != nil:
			f.replaceAll(req.ReplaceAllText.ContainsText.Text, req.ReplaceAllText.ReplaceText)
		default:
			return fmt.Errorf("unsupported request %+v", req)
		}
	}
	return nil
}

func (f *fakeDocs) delete(start, end int64) {
	s, e := int(start-1), int(end-1)
	f.chars = append(f.chars[:s], f.chars[e:]...)
	f.bullet = append(f.bullet[:s], f.bullet[e:]...)
}

func (f *fakeDocs) insert(at int64, text string, bulleted bool) {
	i := int(at - 1)
	ins := []rune(text)
	flags := make([]bool, len(ins))
	for j := range flags {
		flags[j] = bulleted
	}
	f.chars = append(f.chars[:i], append(append([]rune{}, ins...), f.chars[i:]...)...)
	f.bullet = append(f.bullet[:i], append(flags, f.bullet[i:]...)...)
}

func (f *fakeDocs) markBullets(start, end int64) {
	for i := int(start - 1); i < int(end-1) && i < len(f.bullet); i++ {
		f.bullet[i] = true
	}
}

func (f *fakeDocs) replaceAll(search, repl string) {
	text := strings.ReplaceAll(string(f.chars), search, repl)
	f.chars = []rune(text)
	f.bullet = make([]bool, len(f.chars))
}

// text returns the document's native character stream.
func (f *fakeDocs) text() string {
	return string(f.chars)
}

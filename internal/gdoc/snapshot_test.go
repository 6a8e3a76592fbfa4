package gdoc

import (
	"context"
	"reflect"
	"testing"

	docs "google.golang.org/api/docs/v1"
)

func paragraphElement(start, end int64, content string) *docs.StructuralElement {
	return &docs.StructuralElement{
		StartIndex: start,
		EndIndex:   end,
		Paragraph: &docs.Paragraph{
			Elements: []*docs.ParagraphElement{{
				StartIndex: start,
				EndIndex:   end,
				TextRun:    &docs.TextRun{Content: content},
			}},
		},
	}
}

func TestBuildSnapshot(t *testing.T) {
	t.Run("flattens paragraphs in order", func(t *testing.T) {
		doc := &docs.Document{Body: &docs.Body{Content: []*docs.StructuralElement{
			paragraphElement(1, 7, "Intro\n"),
			paragraphElement(7, 13, "Outro\n"),
		}}}

		snap := BuildSnapshot(doc)
		if snap.FlatText != "Intro\nOutro\n" {
			t.Errorf("FlatText = %q", snap.FlatText)
		}
		want := []Segment{
			{FlatStart: 0, FlatEnd: 6, NativeStart: 1, NativeEnd: 7},
			{FlatStart: 6, FlatEnd: 12, NativeStart: 7, NativeEnd: 13},
		}
		if !reflect.DeepEqual(snap.Segments, want) {
			t.Errorf("Segments = %+v, want %+v", snap.Segments, want)
		}
	})

	t.Run("is deterministic across rebuilds", func(t *testing.T) {
		fake := newFakeDoc([]string{"Intro", "did X", "did Y", "Outro"}, 1, 2)
		doc, err := fake.Get(context.Background(), "doc")
		if err != nil {
			t.Fatal(err)
		}

		first := BuildSnapshot(doc)
		second := BuildSnapshot(doc)
		if first.FlatText != second.FlatText {
			t.Errorf("FlatText differs between rebuilds")
		}
		if !reflect.DeepEqual(first.Segments, second.Segments) {
			t.Errorf("Segments differ between rebuilds")
		}
	})

	t.Run("round trips run text through segments", func(t *testing.T) {
		fake := newFakeDoc([]string{"Line one", "Line two", "Line three"})
		doc, _ := fake.Get(context.Background(), "doc")
		snap := BuildSnapshot(doc)

		var rebuilt string
		for _, seg := range snap.Segments {
			rebuilt += snap.FlatText[seg.FlatStart:seg.FlatEnd]
		}
		if rebuilt != snap.FlatText {
			t.Errorf("reconstructed %q, want %q", rebuilt, snap.FlatText)
		}
		if snap.FlatText != "Line one\nLine two\nLine three\n" {
			t.Errorf("FlatText = %q", snap.FlatText)
		}
	})

	t.Run("recurses into table cells in reading order", func(t *testing.T) {
		doc := &docs.Document{Body: &docs.Body{Content: []*docs.StructuralElement{
			paragraphElement(1, 6, "Head\n"),
			{
				StartIndex: 6,
				EndIndex:   16,
				Table: &docs.Table{TableRows: []*docs.TableRow{{
					TableCells: []*docs.TableCell{
						{Content: []*docs.StructuralElement{paragraphElement(7, 11, "one\n")}},
						{Content: []*docs.StructuralElement{paragraphElement(12, 16, "two\n")}},
					},
				}}},
			},
		}}}

		snap := BuildSnapshot(doc)
		if snap.FlatText != "Head\none\ntwo\n" {
			t.Errorf("FlatText = %q", snap.FlatText)
		}
	})

	t.Run("skips runs without usable addresses", func(t *testing.T) {
		doc := &docs.Document{Body: &docs.Body{Content: []*docs.StructuralElement{
			{
				StartIndex: 1,
				EndIndex:   11,
				Paragraph: &docs.Paragraph{
					Elements: []*docs.ParagraphElement{
						{StartIndex: 1, EndIndex: 6, TextRun: &docs.TextRun{Content: "good\n"}},
						// Zero-length native range: content is invisible
						// to matching rather than mapped to a guess.
						{StartIndex: 6, EndIndex: 6, TextRun: &docs.TextRun{Content: "bad\n"}},
						// Address width disagrees with character count.
						{StartIndex: 6, EndIndex: 7, TextRun: &docs.TextRun{Content: "also bad\n"}},
					},
				},
			},
		}}}

		snap := BuildSnapshot(doc)
		if snap.FlatText != "good\n" {
			t.Errorf("FlatText = %q", snap.FlatText)
		}
		if len(snap.Segments) != 1 {
			t.Errorf("Segments = %+v", snap.Segments)
		}
	})

	t.Run("records bulleted paragraph ranges", func(t *testing.T) {
		fake := newFakeDoc([]string{"Intro", "did X", "did Y", "Outro"}, 1, 2)
		doc, _ := fake.Get(context.Background(), "doc")
		snap := BuildSnapshot(doc)

		want := []Range{{Start: 7, End: 13}, {Start: 13, End: 19}}
		if !reflect.DeepEqual(snap.Bullets, want) {
			t.Errorf("Bullets = %+v, want %+v", snap.Bullets, want)
		}
		if !snap.Bulleted(8, 10) {
			t.Error("Bulleted(8, 10) = false, want true")
		}
		if snap.Bulleted(1, 7) {
			t.Error("Bulleted(1, 7) = true, want false")
		}
	})
}

func TestTranslate(t *testing.T) {
	fake := newFakeDoc([]string{"Intro", "did X", "did Y", "Outro"})
	doc, _ := fake.Get(context.Background(), "doc")
	snap := BuildSnapshot(doc)

	t.Run("maps spans inside one segment", func(t *testing.T) {
		// "did X" sits at flat [6:11), native [7:12).
		start, end, err := snap.Translate(Span{Start: 6, End: 11})
		if err != nil {
			t.Fatalf("Translate() error = %v", err)
		}
		if start != 7 || end != 12 {
			t.Errorf("got (%d, %d), want (7, 12)", start, end)
		}
	})

	t.Run("maps spans across contiguous segments", func(t *testing.T) {
		// "did X\ndid Y" spans two paragraphs: flat [6:17), native [7:18).
		start, end, err := snap.Translate(Span{Start: 6, End: 17})
		if err != nil {
			t.Fatalf("Translate() error = %v", err)
		}
		if start != 7 || end != 18 {
			t.Errorf("got (%d, %d), want (7, 18)", start, end)
		}
	})

	t.Run("fails across native discontinuities", func(t *testing.T) {
		gapped := &Snapshot{
			FlatText: "onetwo",
			Segments: []Segment{
				{FlatStart: 0, FlatEnd: 3, NativeStart: 1, NativeEnd: 4},
				// Native gap between 4 and 10: a skipped run sits between.
				{FlatStart: 3, FlatEnd: 6, NativeStart: 10, NativeEnd: 13},
			},
		}
		if _, _, err := gapped.Translate(Span{Start: 1, End: 5}); err != ErrUntranslatable {
			t.Errorf("error = %v, want ErrUntranslatable", err)
		}
	})

	t.Run("rejects out of range spans", func(t *testing.T) {
		if _, _, err := snap.Translate(Span{Start: 0, End: len(snap.FlatText) + 1}); err == nil {
			t.Error("expected error for out-of-range span")
		}
		if _, _, err := snap.Translate(Span{Start: 5, End: 5}); err == nil {
			t.Error("expected error for empty span")
		}
	})
}

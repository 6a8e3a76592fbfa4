package gdoc

import (
	"context"
	"strings"
	"testing"
)

func TestReplaceText(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces a bulleted block and keeps list styling", func(t *testing.T) {
		// Document: Intro / did X / did Y / Outro with bullets on the two
		// middle paragraphs. The stored block carries literal glyphs the
		// document does not have.
		fake := newFakeDoc([]string{"Intro", "did X", "did Y", "Outro"}, 1, 2)
		p := NewPatcher(fake, nil)

		res, err := p.ReplaceText(ctx, "doc", "- did X\n- did Y", "- did Z", ModeFirst)
		if err != nil {
			t.Fatalf("ReplaceText() error = %v", err)
		}
		if !res.Updated || res.Matches != 1 {
			t.Errorf("Result = %+v", res)
		}
		if res.Method != MethodDeleteInsert {
			t.Errorf("Method = %q", res.Method)
		}

		if got := fake.text(); got != "Intro\ndid Z\nOutro\n" {
			t.Errorf("document text = %q", got)
		}

		// The surviving line must still be bulleted.
		doc, _ := fake.Get(ctx, "doc")
		snap := BuildSnapshot(doc)
		if len(snap.Bullets) != 1 {
			t.Fatalf("Bullets = %+v", snap.Bullets)
		}
		start, end := snap.Bullets[0].Start, snap.Bullets[0].End
		if flat := snap.FlatText; !strings.Contains(flat, "did Z") {
			t.Errorf("FlatText = %q", flat)
		}
		if start != 7 || end != 13 {
			t.Errorf("bullet range = [%d, %d)", start, end)
		}
	})

	t.Run("uses a named range for exact unbulleted matches", func(t *testing.T) {
		fake := newFakeDoc([]string{"Intro", "middle text", "Outro"})
		p := NewPatcher(fake, nil)

		res, err := p.ReplaceText(ctx, "doc", "middle text", "better text", ModeFirst)
		if err != nil {
			t.Fatalf("ReplaceText() error = %v", err)
		}
		if res.Method != MethodNamedRange {
			t.Errorf("Method = %q", res.Method)
		}
		if got := fake.text(); got != "Intro\nbetter text\nOutro\n" {
			t.Errorf("document text = %q", got)
		}
		if len(fake.namedRanges) != 0 {
			t.Errorf("temporary named range not cleaned up: %v", fake.namedRanges)
		}
	})

	t.Run("first mode leaves later occurrences untouched", func(t *testing.T) {
		fake := newFakeDoc([]string{"repeat me", "filler", "repeat me"})
		p := NewPatcher(fake, nil)

		res, err := p.ReplaceText(ctx, "doc", "repeat me", "changed", ModeFirst)
		if err != nil {
			t.Fatalf("ReplaceText() error = %v", err)
		}
		if res.Matches != 1 {
			t.Errorf("Matches = %d", res.Matches)
		}
		if got := fake.text(); got != "changed\nfiller\nrepeat me\n" {
			t.Errorf("document text = %q", got)
		}
	})

	t.Run("all mode patches every occurrence", func(t *testing.T) {
		fake := newFakeDoc([]string{"repeat me", "filler", "repeat me"})
		p := NewPatcher(fake, nil)

		res, err := p.ReplaceText(ctx, "doc", "repeat me", "changed", ModeAll)
		if err != nil {
			t.Fatalf("ReplaceText() error = %v", err)
		}
		if res.Matches != 2 {
			t.Errorf("Matches = %d", res.Matches)
		}
		if res.Method != MethodReplaceAllText {
			t.Errorf("Method = %q", res.Method)
		}
		if got := fake.text(); got != "changed\nfiller\nchanged\n" {
			t.Errorf("document text = %q", got)
		}
	})

	t.Run("padded block still patches every occurrence", func(t *testing.T) {
		fake := newFakeDoc([]string{"repeat me", "filler", "repeat me"})
		p := NewPatcher(fake, nil)

		res, err := p.ReplaceText(ctx, "doc", "  repeat me\n", "changed", ModeAll)
		if err != nil {
			t.Fatalf("ReplaceText() error = %v", err)
		}
		if res.Matches != 2 || res.Method != MethodReplaceAllText {
			t.Errorf("Result = %+v", res)
		}
		if got := fake.text(); got != "changed\nfiller\nchanged\n" {
			t.Errorf("document text = %q", got)
		}
	})

	t.Run("fuzzy all mode applies edits back to front", func(t *testing.T) {
		fake := newFakeDoc([]string{"item  one", "filler", "item\u00A0one"})
		p := NewPatcher(fake, nil)

		res, err := p.ReplaceText(ctx, "doc", "item one", "item two", ModeAll)
		if err != nil {
			t.Fatalf("ReplaceText() error = %v", err)
		}
		if res.Matches != 2 || res.Method != MethodDeleteInsert {
			t.Errorf("Result = %+v", res)
		}
		if got := fake.text(); got != "item two\nfiller\nitem two\n" {
			t.Errorf("document text = %q", got)
		}
	})

	t.Run("absent block leaves the document unmodified", func(t *testing.T) {
		fake := newFakeDoc([]string{"only content"})
		before := fake.text()
		p := NewPatcher(fake, nil)

		res, err := p.ReplaceText(ctx, "doc", "not present anywhere", "replacement", ModeFirst)
		if err != nil {
			t.Fatalf("ReplaceText() error = %v", err)
		}
		if res.Updated || res.Matches != 0 {
			t.Errorf("Result = %+v", res)
		}
		if fake.text() != before {
			t.Error("document was modified on a failed match")
		}
		if fake.batches != 0 {
			t.Errorf("batches = %d, want 0", fake.batches)
		}
	})

	t.Run("strips literal glyphs from replacement in bulleted regions", func(t *testing.T) {
		fake := newFakeDoc([]string{"Intro", "old item", "Outro"}, 1)
		p := NewPatcher(fake, nil)

		_, err := p.ReplaceText(ctx, "doc", "old item", "* new item", ModeFirst)
		if err != nil {
			t.Fatalf("ReplaceText() error = %v", err)
		}
		if got := fake.text(); got != "Intro\nnew item\nOutro\n" {
			t.Errorf("document text = %q", got)
		}
	})
}

func TestPrependText(t *testing.T) {
	fake := newFakeDoc([]string{"Existing content"})
	p := NewPatcher(fake, nil)

	if err := p.PrependText(context.Background(), "doc", "New summary"); err != nil {
		t.Fatalf("PrependText() error = %v", err)
	}
	if got := fake.text(); got != "New summary\n\nExisting content\n" {
		t.Errorf("document text = %q", got)
	}
}

package gdoc

import (
	"reflect"
	"testing"
)

func TestFindBlock(t *testing.T) {
	t.Run("literal fast path", func(t *testing.T) {
		m := FindBlock("Intro\ndid X\nOutro\n", "did X", ModeFirst)
		if !m.Literal {
			t.Error("expected literal match")
		}
		if len(m.Spans) != 1 || m.Spans[0] != (Span{Start: 6, End: 11}) {
			t.Errorf("Spans = %+v", m.Spans)
		}
	})

	t.Run("tolerates CRLF line endings", func(t *testing.T) {
		m := FindBlock("A\r\n\r\nB", "A\n\nB", ModeFirst)
		if len(m.Spans) != 1 {
			t.Fatalf("Spans = %+v", m.Spans)
		}
		if m.Literal {
			t.Error("expected fuzzy match")
		}
		if m.Spans[0] != (Span{Start: 0, End: 6}) {
			t.Errorf("Spans[0] = %+v", m.Spans[0])
		}
	})

	t.Run("tolerates non breaking spaces", func(t *testing.T) {
		m := FindBlock("A\u00A0\u00A0B", "A\n\nB", ModeFirst)
		if len(m.Spans) != 1 {
			t.Fatalf("Spans = %+v", m.Spans)
		}
	})

	t.Run("tolerates zero width characters", func(t *testing.T) {
		m := FindBlock("grew revenue\u200B by 40%", "grew revenue by 40%", ModeFirst)
		if len(m.Spans) != 1 {
			t.Fatalf("Spans = %+v", m.Spans)
		}
	})

	t.Run("bullet prefixes in the block are optional in the target", func(t *testing.T) {
		flat := "Summary\nitem one\nitem two\nClosing\n"
		m := FindBlock(flat, "- item one\n- item two", ModeFirst)
		if len(m.Spans) != 1 {
			t.Fatalf("Spans = %+v", m.Spans)
		}
		got := flat[m.Spans[0].Start:m.Spans[0].End]
		if got != "item one\nitem two" {
			t.Errorf("matched %q", got)
		}
	})

	t.Run("numbered prefixes are optional", func(t *testing.T) {
		m := FindBlock("first step\nsecond step\n", "1. first step\n2. second step", ModeFirst)
		if len(m.Spans) != 1 {
			t.Fatalf("Spans = %+v", m.Spans)
		}
	})

	t.Run("literal glyphs in the target still match", func(t *testing.T) {
		m := FindBlock("• item one\n• item two\n", "- item one\n- item two", ModeFirst)
		if len(m.Spans) != 1 {
			t.Fatalf("Spans = %+v", m.Spans)
		}
	})

	t.Run("does not treat negative numbers as bullets", func(t *testing.T) {
		m := FindBlock("saved -40% of budget", "saved -40% of budget", ModeFirst)
		if !m.Literal || len(m.Spans) != 1 {
			t.Fatalf("match = %+v", m)
		}
	})

	t.Run("first mode picks the earliest occurrence", func(t *testing.T) {
		flat := "target here\nfiller\ntarget here\n"
		m := FindBlock(flat, "target here", ModeFirst)
		if len(m.Spans) != 1 || m.Spans[0].Start != 0 {
			t.Errorf("Spans = %+v", m.Spans)
		}
	})

	t.Run("all mode returns every occurrence", func(t *testing.T) {
		flat := "target here\nfiller\ntarget here\n"
		m := FindBlock(flat, "target here", ModeAll)
		want := []Span{{Start: 0, End: 11}, {Start: 19, End: 30}}
		if !reflect.DeepEqual(m.Spans, want) {
			t.Errorf("Spans = %+v, want %+v", m.Spans, want)
		}
	})

	t.Run("reports no match for absent blocks", func(t *testing.T) {
		m := FindBlock("nothing relevant", "absent block", ModeAll)
		if len(m.Spans) != 0 {
			t.Errorf("Spans = %+v", m.Spans)
		}
	})

	t.Run("empty block never matches", func(t *testing.T) {
		m := FindBlock("anything", "   \n  ", ModeAll)
		if len(m.Spans) != 0 {
			t.Errorf("Spans = %+v", m.Spans)
		}
	})
}

func TestStripBulletPrefixes(t *testing.T) {
	in := "* did Z\n- did W\n• did V\n3. did U\nplain line"
	want := "did Z\ndid W\ndid V\ndid U\nplain line"
	if got := StripBulletPrefixes(in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestStripBulletPrefixesKeepsNegativeNumbers(t *testing.T) {
	in := "-40% cost reduction"
	if got := StripBulletPrefixes(in); got != in {
		t.Errorf("got %q, want %q", got, in)
	}
}

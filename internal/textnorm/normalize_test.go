package textnorm

import (
	"strings"
	"testing"
)

func TestToASCII(t *testing.T) {
	t.Run("passes ascii through untouched", func(t *testing.T) {
		in := "Led migration of billing system to Go.\n- Cut latency 40%."
		out, report := ToASCII(in)
		if out != in {
			t.Errorf("expected unchanged output, got %q", out)
		}
		if report != nil {
			t.Errorf("expected nil report, got %v", report)
		}
	})

	t.Run("maps smart punctuation", func(t *testing.T) {
		out, report := ToASCII("“Smart” quotes — and\u00A0spaces…")
		want := `"Smart" quotes - and spaces...`
		if out != want {
			t.Errorf("got %q, want %q", out, want)
		}
		if len(report) == 0 {
			t.Error("expected replacement report entries")
		}
	})

	t.Run("removes zero width characters", func(t *testing.T) {
		out, _ := ToASCII("a\u200Bb\uFEFFc")
		if out != "abc" {
			t.Errorf("got %q, want abc", out)
		}
	})

	t.Run("maps bullet glyphs to hyphens", func(t *testing.T) {
		out, _ := ToASCII("• shipped the thing")
		if out != "- shipped the thing" {
			t.Errorf("got %q", out)
		}
	})

	t.Run("reports unmapped characters as unfixable", func(t *testing.T) {
		out, report := ToASCII("temp 5℃")
		if !strings.Contains(out, "℃") {
			t.Errorf("unmapped rune should be left in place, got %q", out)
		}
		var found bool
		for _, r := range report {
			if r.Original == '℃' && r.Unfixable {
				found = true
			}
		}
		if !found {
			t.Errorf("expected unfixable report entry, got %v", report)
		}
	})
}

func TestNewlines(t *testing.T) {
	if got := Newlines("a\r\nb\rc\nd"); got != "a\nb\nc\nd" {
		t.Errorf("got %q", got)
	}
}

func TestCollapseBlankLines(t *testing.T) {
	in := "one  \n\n\n\ntwo\t\nthree"
	want := "one\n\ntwo\nthree"
	if got := CollapseBlankLines(in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

package mathsnap

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestWrapFragment - Math mode detection
// ---------------------------------------------------------------------------

func TestWrapFragment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fragment string
		want     string
	}{
		{"inline math untouched", `$x^2$`, `$x^2$`},
		{"display dollars untouched", `$$x^2$$`, `$$x^2$$`},
		{"display bracket untouched", `\[x^2\]`, `\[x^2\]`},
		{"inline paren untouched", `\(x^2\)`, `\(x^2\)`},
		{"environment untouched", `\begin{align}a&=b\end{align}`, `\begin{align}a&=b\end{align}`},
		{"bare expression wrapped", `x^2`, `\[x^2\]`},
		{"command wrapped", `\frac{a}{b} = c`, `\[\frac{a}{b} = c\]`},
		{"trailing dollar is not an opener", `x^2$`, `\[x^2$\]`},
		{"leading space ignored", ` $x$`, ` $x$`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := WrapFragment(tt.fragment); got != tt.want {
				t.Errorf("WrapFragment(%q) = %q, want %q", tt.fragment, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestBuildDocument - Document structure
// ---------------------------------------------------------------------------

func TestBuildDocument(t *testing.T) {
	t.Parallel()

	t.Run("math fragment kept as is", func(t *testing.T) {
		t.Parallel()

		doc := BuildDocument(`$x^2$`)
		if got := FragmentOf(doc); got != `$x^2$` {
			t.Errorf("embedded fragment = %q, want %q", got, `$x^2$`)
		}
	})

	t.Run("bare fragment delimited", func(t *testing.T) {
		t.Parallel()

		doc := BuildDocument(`x^2`)
		got := FragmentOf(doc)
		if !strings.HasPrefix(got, displayOpen) || !strings.HasSuffix(got, displayClose) {
			t.Errorf("embedded fragment = %q, want display delimiters", got)
		}
		if !strings.Contains(got, "x^2") {
			t.Errorf("embedded fragment = %q lost content", got)
		}
	})

	t.Run("preamble and single document block", func(t *testing.T) {
		t.Parallel()

		doc := BuildDocument(`\frac{a}{b}`)
		if !strings.HasPrefix(doc, Preamble) {
			t.Error("document must start with the fixed preamble")
		}
		for _, pkg := range []string{"amsmath", "amssymb", "xcolor"} {
			if !strings.Contains(doc, `\usepackage{`+pkg+`}`) {
				t.Errorf("preamble missing %s", pkg)
			}
		}
		if n := strings.Count(doc, documentBegin); n != 1 {
			t.Errorf("document has %d begin markers, want 1", n)
		}
		if n := strings.Count(doc, documentEnd); n != 1 {
			t.Errorf("document has %d end markers, want 1", n)
		}
		if strings.Index(doc, documentBegin) > strings.Index(doc, documentEnd) {
			t.Error("document end precedes document begin")
		}
	})

	t.Run("sanitized input stays balanced", func(t *testing.T) {
		t.Parallel()

		for _, in := range sanitizeCorpus() {
			doc := BuildDocument(Sanitize(in))
			for _, env := range checkedEnvironments {
				begins, ends := environmentBalance(doc, env)
				if begins != ends {
					t.Errorf("BuildDocument(Sanitize(%q)) unbalanced %s: %d vs %d", in, env, begins, ends)
				}
			}
		}
	})
}

// ---------------------------------------------------------------------------
// TestFragmentOf - Extraction
// ---------------------------------------------------------------------------

func TestFragmentOf(t *testing.T) {
	t.Parallel()

	if got := FragmentOf("  plain  "); got != "plain" {
		t.Errorf("FragmentOf without markers = %q, want %q", got, "plain")
	}
	if got := FragmentOf(BuildDocument("$a$")); got != "$a$" {
		t.Errorf("FragmentOf round trip = %q, want %q", got, "$a$")
	}
}

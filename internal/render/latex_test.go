package render

// Notes:
// - latex and dvipng are replaced by command.Recorder. The fake writes the
//   files each tool would produce so the renderer's file checks run for real.
// - Real TeX runs live in render_integration_test.go (build tag integration).

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	mathsnap "github.com/alnah/go-mathsnap"
	"github.com/alnah/go-mathsnap/internal/command"
)

var fixedNow = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

// fakeTeX answers like latex and dvipng. latexLog, when set, makes latex fail
// after writing it as the job log.
func fakeTeX(latexLog string) func(command.Cmd) (command.Result, error) {
	return func(c command.Cmd) (command.Result, error) {
		switch c.Name {
		case "latex":
			if latexLog != "" {
				_ = os.WriteFile(filepath.Join(c.Dir, texJob+".log"), []byte(latexLog), 0o600)
				return command.Result{Stdout: []byte("see log")}, &command.Error{Name: "latex", Err: errors.New("exit status 1")}
			}
			return command.Result{}, os.WriteFile(filepath.Join(c.Dir, texJob+".dvi"), []byte("dvi"), 0o600)
		case "dvipng":
			out := c.Args[slices.Index(c.Args, "-o")+1]
			return command.Result{}, os.WriteFile(out, []byte("\x89PNG"), 0o600)
		}
		return command.Result{}, errors.New("unexpected command " + c.Name)
	}
}

// ---------------------------------------------------------------------------
// TestLaTeX_Render - Tool orchestration
// ---------------------------------------------------------------------------

func TestLaTeX_Render(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	rec := &command.Recorder{Respond: fakeTeX("")}
	r := &LaTeX{Runner: rec, Output: Output{Dir: outDir, Now: fixedNow}}

	doc := mathsnap.BuildDocument(`\frac{a}{b}`)
	a, err := r.Render(context.Background(), doc)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := filepath.Join(outDir, "latex_render_20240102_030405.png")
	if a.Path != want {
		t.Errorf("Artifact = %q, want %q", a.Path, want)
	}

	calls := rec.Calls()
	if len(calls) != 2 {
		t.Fatalf("calls = %d, want latex then dvipng", len(calls))
	}
	latex := strings.Join(calls[0].Args, " ")
	for _, arg := range []string{"-interaction=nonstopmode", "-halt-on-error", "-output-directory="} {
		if !strings.Contains(latex, arg) {
			t.Errorf("latex args %q missing %s", latex, arg)
		}
	}
	dvipng := calls[1].Args
	for _, pair := range [][2]string{{"-T", "tight"}, {"-D", "300"}, {"-bg", "rgb 1 1 1"}, {"-fg", "rgb 0 0 0"}} {
		i := slices.Index(dvipng, pair[0])
		if i < 0 || i+1 >= len(dvipng) || dvipng[i+1] != pair[1] {
			t.Errorf("dvipng args %q missing %s %s", dvipng, pair[0], pair[1])
		}
	}

	// The scratch directory is removed after rendering.
	if _, err := os.Stat(calls[0].Dir); !os.IsNotExist(err) {
		t.Errorf("work dir %s not removed", calls[0].Dir)
	}
}

func TestLaTeX_Render_NoOverwrite(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	r := &LaTeX{Runner: &command.Recorder{Respond: fakeTeX("")}, Output: Output{Dir: outDir, Now: fixedNow}}

	first, err := r.Render(context.Background(), mathsnap.BuildDocument("$a$"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Render(context.Background(), mathsnap.BuildDocument("$b$"))
	if err != nil {
		t.Fatal(err)
	}
	if first.Path == second.Path {
		t.Errorf("renders in the same second share %s", first.Path)
	}
}

func TestLaTeX_Render_Errors(t *testing.T) {
	t.Parallel()

	t.Run("latex error carries log lines", func(t *testing.T) {
		t.Parallel()

		log := "This is pdfTeX\n! Undefined control sequence.\n<recently read> \\frax \n\nl.7 \\[\\frax\n{a}{b}\\]\nNo pages of output."
		r := &LaTeX{Runner: &command.Recorder{Respond: fakeTeX(log)}, Output: Output{Dir: t.TempDir()}}

		_, err := r.Render(context.Background(), mathsnap.BuildDocument(`\frax{a}{b}`))
		var re *mathsnap.RenderError
		if !errors.As(err, &re) {
			t.Fatalf("Render() error = %v, want *RenderError", err)
		}
		if re.Diagnostic != "! Undefined control sequence.\nl.7 \\[\\frax" {
			t.Errorf("Diagnostic = %q", re.Diagnostic)
		}
		if !errors.Is(err, mathsnap.ErrRenderFailed) {
			t.Error("error must unwrap to ErrRenderFailed")
		}
	})

	t.Run("dvipng error removes partial image", func(t *testing.T) {
		t.Parallel()

		outDir := t.TempDir()
		rec := &command.Recorder{Respond: func(c command.Cmd) (command.Result, error) {
			if c.Name == "dvipng" {
				out := c.Args[slices.Index(c.Args, "-o")+1]
				_ = os.WriteFile(out, []byte("partial"), 0o600)
				return command.Result{Stderr: "dvipng: bad dvi"}, errors.New("exit status 1")
			}
			return fakeTeX("")(c)
		}}
		r := &LaTeX{Runner: rec, Output: Output{Dir: outDir}}

		_, err := r.Render(context.Background(), mathsnap.BuildDocument("$x$"))
		var re *mathsnap.RenderError
		if !errors.As(err, &re) || re.Diagnostic != "dvipng: bad dvi" {
			t.Fatalf("Render() error = %v", err)
		}
		entries, _ := os.ReadDir(outDir)
		if len(entries) != 0 {
			t.Errorf("output dir has %d files, want none", len(entries))
		}
	})

	t.Run("missing dvi", func(t *testing.T) {
		t.Parallel()

		r := &LaTeX{Runner: &command.Recorder{}, Output: Output{Dir: t.TempDir()}}
		_, err := r.Render(context.Background(), mathsnap.BuildDocument("$x$"))
		if !errors.Is(err, mathsnap.ErrRenderFailed) || !strings.Contains(err.Error(), "no output") {
			t.Errorf("Render() error = %v", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		r := &LaTeX{Runner: &command.Recorder{Respond: fakeTeX("")}, Output: Output{Dir: t.TempDir()}}
		_, err := r.Render(ctx, mathsnap.BuildDocument("$x$"))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Render() error = %v, want Canceled", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestDiagnostic - Log excerpt
// ---------------------------------------------------------------------------

func TestDiagnostic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		log  string
		want string
	}{
		{"empty", "", ""},
		{"no errors", "Output written on x.dvi (1 page).", ""},
		{"error without context", "! Emergency stop.", "! Emergency stop."},
		{"crlf", "! Missing $ inserted.\r\nl.3 x^\r\n", "! Missing $ inserted.\nl.3 x^"},
		{"context only after error", "l.1 stray\n! Bad.\nl.2 here", "! Bad.\nl.2 here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Diagnostic(tt.log); got != tt.want {
				t.Errorf("Diagnostic() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("bounded", func(t *testing.T) {
		t.Parallel()

		log := strings.Repeat("! again\n", 50)
		if n := strings.Count(Diagnostic(log), "\n") + 1; n != maxDiagnosticLines {
			t.Errorf("lines = %d, want %d", n, maxDiagnosticLines)
		}
	})
}

// ---------------------------------------------------------------------------
// TestOutput_NewPath - Artifact naming
// ---------------------------------------------------------------------------

func TestOutput_NewPath(t *testing.T) {
	t.Parallel()

	t.Run("creates nested dir", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "Pictures", "latex-renders")
		path, err := Output{Dir: dir, Now: fixedNow}.NewPath()
		if err != nil {
			t.Fatalf("NewPath() error = %v", err)
		}
		if path != filepath.Join(dir, "latex_render_20240102_030405.png") {
			t.Errorf("NewPath() = %q", path)
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("output dir not created: %v", err)
		}
	})

	t.Run("custom format", func(t *testing.T) {
		t.Parallel()

		path, err := Output{Dir: t.TempDir(), NameFormat: "iso", Now: fixedNow}.NewPath()
		if err != nil || filepath.Base(path) != "latex_render_2024-01-02_03-04-05.png" {
			t.Errorf("NewPath() = %q, %v", path, err)
		}
	})

	t.Run("format with separator", func(t *testing.T) {
		t.Parallel()

		if _, err := (Output{Dir: t.TempDir(), NameFormat: "YYYY/MM"}).NewPath(); err == nil {
			t.Error("NewPath() error = nil, want invalid format")
		}
	})
}

package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	mathsnap "github.com/alnah/go-mathsnap"
	"github.com/alnah/go-mathsnap/internal/command"
	"github.com/alnah/go-mathsnap/internal/palette"
)

// maxDiagnosticLines bounds the LaTeX log excerpt attached to failures.
const maxDiagnosticLines = 8

// texJob is the base name of the scratch document.
const texJob = "mathsnap"

// LaTeX renders with a local TeX installation.
type LaTeX struct {
	Runner command.Runner
	Output Output
	Latex  string // defaults to "latex"
	Dvipng string // defaults to "dvipng"
}

// Compile-time interface check.
var _ mathsnap.Renderer = (*LaTeX)(nil)

// NewLaTeX returns a LaTeX renderer backed by a real command runner.
func NewLaTeX(out Output) *LaTeX {
	return &LaTeX{Runner: &command.ExecRunner{}, Output: out}
}

// Render compiles document to DVI and converts it to a tightly cropped PNG.
func (l *LaTeX) Render(ctx context.Context, document string) (mathsnap.Artifact, error) {
	work, err := os.MkdirTemp("", "mathsnap-latex-*")
	if err != nil {
		return mathsnap.Artifact{}, &mathsnap.RenderError{Err: fmt.Errorf("creating work dir: %w", err)}
	}
	defer os.RemoveAll(work)

	tex := filepath.Join(work, texJob+".tex")
	if err := os.WriteFile(tex, []byte(document), 0o600); err != nil {
		return mathsnap.Artifact{}, &mathsnap.RenderError{Err: fmt.Errorf("writing document: %w", err)}
	}

	res, err := l.Runner.Run(ctx, command.Cmd{
		Name: or(l.Latex, "latex"),
		Args: []string{"-interaction=nonstopmode", "-halt-on-error", "-output-directory=" + work, tex},
		Dir:  work,
	})
	if err != nil {
		logText, _ := os.ReadFile(filepath.Join(work, texJob+".log"))
		diag := Diagnostic(string(logText))
		if diag == "" {
			diag = Diagnostic(string(res.Stdout))
		}
		return mathsnap.Artifact{}, &mathsnap.RenderError{Diagnostic: diag, Err: err}
	}

	dvi := filepath.Join(work, texJob+".dvi")
	if _, err := os.Stat(dvi); err != nil {
		return mathsnap.Artifact{}, &mathsnap.RenderError{Err: fmt.Errorf("latex produced no output: %w", err)}
	}

	out, err := l.Output.NewPath()
	if err != nil {
		return mathsnap.Artifact{}, &mathsnap.RenderError{Err: err}
	}

	res, err = l.Runner.Run(ctx, command.Cmd{
		Name: or(l.Dvipng, "dvipng"),
		Args: []string{
			"-q", "-T", "tight",
			"-D", strconv.Itoa(l.Output.dpi()),
			"-fg", palette.Dvipng(l.Output.foreground()),
			"-bg", palette.Dvipng(l.Output.background()),
			"-o", out, dvi,
		},
		Dir: work,
	})
	if err != nil {
		_ = os.Remove(out)
		return mathsnap.Artifact{}, &mathsnap.RenderError{Diagnostic: strings.TrimSpace(res.Stderr), Err: err}
	}

	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		_ = os.Remove(out)
		return mathsnap.Artifact{}, &mathsnap.RenderError{Err: errors.New("dvipng produced no image")}
	}
	return mathsnap.Artifact{Path: out}, nil
}

// Diagnostic extracts the error lines from LaTeX output: each line starting
// with "!" and the "l.<n>" context line that follows it.
func Diagnostic(log string) string {
	var lines []string
	inError := false
	for _, line := range strings.Split(log, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, "!"):
			lines = append(lines, line)
			inError = true
		case inError && strings.HasPrefix(line, "l."):
			lines = append(lines, line)
			inError = false
		}
		if len(lines) >= maxDiagnosticLines {
			break
		}
	}
	return strings.Join(lines, "\n")
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	mathsnap "github.com/alnah/go-mathsnap"
)

// Editor commands, each on a line of its own.
const (
	editorQuit  = ":q"
	editorPrint = ":p"
)

// terminalEditor is a line-based edit surface. Every non-empty line replaces
// the fragment and is rendered in the background; the session ends on ":q"
// or end of input.
type terminalEditor struct {
	in  io.Reader
	out io.Writer

	mu      sync.Mutex // serializes writes from the render worker
	current string
}

var _ mathsnap.EditSurface = (*terminalEditor)(nil)

func newTerminalEditor(in io.Reader, out io.Writer) *terminalEditor {
	return &terminalEditor{in: in, out: out}
}

// Edit reads lines until the user quits or ctx ends.
func (t *terminalEditor) Edit(ctx context.Context, loop *mathsnap.RenderLoop, fragment string) error {
	t.current = fragment
	t.printf("LaTeX: %s\nType a replacement line to re-render, %s to show it, %s to finish.\n",
		fragment, editorPrint, editorQuit)

	lines := make(chan string)
	scanErr := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)
	// Closing the input unblocks the scanner. A terminal stdin is left open:
	// its reader stays parked in Scan until the process exits, which the CLI
	// does right after the review.
	if c, ok := t.in.(io.Closer); ok && t.in != io.Reader(os.Stdin) {
		defer func() { _ = c.Close() }()
	}

	go func() {
		sc := bufio.NewScanner(t.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-stop:
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-scanErr:
			if err != nil {
				return fmt.Errorf("reading editor input: %w", err)
			}
			return nil
		case line := <-lines:
			switch text := strings.TrimSpace(line); text {
			case "":
			case editorQuit:
				return nil
			case editorPrint:
				t.printf("LaTeX: %s\n", t.current)
			default:
				t.current = text
				loop.Submit(text)
			}
		}
	}
}

// Report prints the outcome of a background render.
func (t *terminalEditor) Report(ev mathsnap.RenderEvent) {
	if ev.Err != nil {
		t.printf("render failed: %v\n", ev.Err)
		return
	}
	t.printf("rendered: %s\n", ev.Artifact.Path)
}

func (t *terminalEditor) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}

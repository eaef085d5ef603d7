// Package capture grabs a user-selected screen region with an external tool.
package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	mathsnap "github.com/alnah/go-mathsnap"
	"github.com/alnah/go-mathsnap/internal/command"
)

// DefaultCommand runs flameshot's region selector and writes the PNG to stdout.
var DefaultCommand = []string{"flameshot", "gui", "--raw"}

// ErrEmptyCapture means the tool exited cleanly but produced no image,
// typically because the user cancelled the selection.
var ErrEmptyCapture = errors.New("no screenshot was taken or the file is empty")

// Tool captures with a command that writes the image to stdout.
type Tool struct {
	Runner  command.Runner
	Command []string // defaults to DefaultCommand
	Dir     string   // where captures are written; defaults to os.TempDir()
}

// Compile-time interface check.
var _ mathsnap.Capturer = (*Tool)(nil)

// New returns a Tool backed by a real command runner.
func New(argv []string, dir string) *Tool {
	return &Tool{Runner: &command.ExecRunner{}, Command: argv, Dir: dir}
}

// Capture runs the tool and stores its output in a new temp PNG. The path is
// returned even on failure so the caller can delete whatever was written.
func (t *Tool) Capture(ctx context.Context) (string, error) {
	argv := t.Command
	if len(argv) == 0 {
		argv = DefaultCommand
	}

	dir := t.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, "mathsnap-capture-*.png")
	if err != nil {
		return "", fmt.Errorf("%w: creating capture file: %w", mathsnap.ErrCaptureFailed, err)
	}
	path := f.Name()

	_, runErr := t.Runner.Run(ctx, command.Cmd{Name: argv[0], Args: argv[1:], Stdout: f})
	closeErr := f.Close()

	switch {
	case runErr != nil:
		return path, fmt.Errorf("%w: running %s: %w", mathsnap.ErrCaptureFailed, filepath.Base(argv[0]), runErr)
	case closeErr != nil:
		return path, fmt.Errorf("%w: writing capture: %w", mathsnap.ErrCaptureFailed, closeErr)
	}

	info, err := os.Stat(path)
	if err != nil {
		return path, fmt.Errorf("%w: %w", mathsnap.ErrCaptureFailed, err)
	}
	if info.Size() == 0 {
		return path, fmt.Errorf("%w: %w", mathsnap.ErrCaptureFailed, ErrEmptyCapture)
	}
	return path, nil
}

// File is a Capturer that hands over an existing image, for rerunning OCR on
// a saved screenshot. The file is copied first because the pipeline deletes
// the capture when the run ends.
type File struct {
	Path string
	Dir  string
}

// Compile-time interface check.
var _ mathsnap.Capturer = (*File)(nil)

// Capture copies Path into a temp file and returns the copy.
func (f *File) Capture(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", mathsnap.ErrCaptureFailed, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: %w", mathsnap.ErrCaptureFailed, ErrEmptyCapture)
	}

	dir := f.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	out, err := os.CreateTemp(dir, "mathsnap-capture-*"+filepath.Ext(f.Path))
	if err != nil {
		return "", fmt.Errorf("%w: %w", mathsnap.ErrCaptureFailed, err)
	}
	path := out.Name()
	if _, err := out.Write(data); err != nil {
		_ = out.Close()
		return path, fmt.Errorf("%w: %w", mathsnap.ErrCaptureFailed, err)
	}
	if err := out.Close(); err != nil {
		return path, fmt.Errorf("%w: %w", mathsnap.ErrCaptureFailed, err)
	}
	return path, nil
}

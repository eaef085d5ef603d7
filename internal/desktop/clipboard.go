package desktop

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	mathsnap "github.com/alnah/go-mathsnap"
	"github.com/alnah/go-mathsnap/internal/command"
)

// ErrNoClipboardTool means none of the candidate commands is installed.
var ErrNoClipboardTool = errors.New("no clipboard tool found")

// Clipboard copies text by piping it to the first installed command.
type Clipboard struct {
	Runner     command.Runner
	Candidates [][]string // tried in order; a missing executable moves to the next
}

// Compile-time interface check.
var _ mathsnap.Clipboard = (*Clipboard)(nil)

// NewClipboard returns a Clipboard for argv, or for the detected platform
// tools when argv is empty.
func NewClipboard(argv []string) *Clipboard {
	c := &Clipboard{Runner: &command.ExecRunner{}}
	if len(argv) > 0 {
		c.Candidates = [][]string{argv}
	} else {
		c.Candidates = ClipboardCommands(runtime.GOOS, os.Getenv)
	}
	return c
}

// ClipboardCommands lists the clipboard tools to try on goos, best first.
func ClipboardCommands(goos string, getenv func(string) string) [][]string {
	xclip := []string{"xclip", "-selection", "clipboard"}
	wlCopy := []string{"wl-copy"}

	switch goos {
	case "darwin":
		return [][]string{{"pbcopy"}}
	case "windows":
		return [][]string{{"clip"}}
	}
	if getenv("WAYLAND_DISPLAY") != "" {
		return [][]string{wlCopy, xclip}
	}
	return [][]string{xclip, wlCopy}
}

// Copy writes text to the clipboard.
func (c *Clipboard) Copy(ctx context.Context, text string) error {
	var tried []string
	for _, argv := range c.Candidates {
		if len(argv) == 0 {
			continue
		}
		_, err := c.Runner.Run(ctx, command.Cmd{
			Name:   argv[0],
			Args:   argv[1:],
			Stdin:  strings.NewReader(text),
			Detach: true,
		})
		if err == nil {
			return nil
		}
		if !command.NotFound(err) {
			return fmt.Errorf("copying to clipboard: %w", err)
		}
		tried = append(tried, argv[0])
	}
	return fmt.Errorf("%w (tried %s)", ErrNoClipboardTool, strings.Join(tried, ", "))
}

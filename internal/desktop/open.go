package desktop

import (
	"context"
	"fmt"
	"runtime"

	mathsnap "github.com/alnah/go-mathsnap"
	"github.com/alnah/go-mathsnap/internal/command"
)

// Opener shows a file in the user's default application.
type Opener struct {
	Runner  command.Runner
	Command []string // overrides the platform default; the path is appended
	GOOS    string   // defaults to runtime.GOOS
}

// Compile-time interface check.
var _ mathsnap.Opener = (*Opener)(nil)

// NewOpener returns an Opener backed by a real command runner.
func NewOpener(argv []string) *Opener {
	return &Opener{Runner: &command.ExecRunner{}, Command: argv}
}

// OpenCommand returns the default viewer launcher for goos.
func OpenCommand(goos string) []string {
	switch goos {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler"}
	default:
		return []string{"xdg-open"}
	}
}

// Open launches the viewer for path.
func (o *Opener) Open(ctx context.Context, path string) error {
	argv := o.Command
	if len(argv) == 0 {
		goos := o.GOOS
		if goos == "" {
			goos = runtime.GOOS
		}
		argv = OpenCommand(goos)
	}
	args := append(append([]string(nil), argv[1:]...), path)
	if _, err := o.Runner.Run(ctx, command.Cmd{Name: argv[0], Args: args, Detach: true}); err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	return nil
}

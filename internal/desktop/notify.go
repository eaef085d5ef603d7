package desktop

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	mathsnap "github.com/alnah/go-mathsnap"
	"github.com/alnah/go-mathsnap/internal/command"
)

// DefaultAppName is the application name shown by the notification daemon.
const DefaultAppName = "Mistral OCR"

// Notifier shows notifications with notify-send, or osascript on macOS.
type Notifier struct {
	Runner  command.Runner
	AppName string // defaults to DefaultAppName
	Command string // overrides the platform default
	GOOS    string // defaults to runtime.GOOS
}

// Compile-time interface check.
var _ mathsnap.Notifier = (*Notifier)(nil)

// NewNotifier returns a Notifier backed by a real command runner.
func NewNotifier(appName, cmd string) *Notifier {
	return &Notifier{Runner: &command.ExecRunner{}, AppName: appName, Command: cmd}
}

// Notify displays n.
func (n *Notifier) Notify(ctx context.Context, notice mathsnap.Notice) error {
	name, args := n.argv(notice)
	if _, err := n.Runner.Run(ctx, command.Cmd{Name: name, Args: args}); err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	return nil
}

func (n *Notifier) argv(notice mathsnap.Notice) (string, []string) {
	app := n.AppName
	if app == "" {
		app = DefaultAppName
	}
	goos := n.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	if goos == "darwin" && (n.Command == "" || n.Command == "osascript") {
		script := fmt.Sprintf("display notification %s with title %s subtitle %s",
			appleScriptString(notice.Message), appleScriptString(app), appleScriptString(notice.Title))
		return "osascript", []string{"-e", script}
	}

	name := n.Command
	if name == "" {
		name = "notify-send"
	}
	urgency := notice.Urgency
	if urgency == "" {
		urgency = mathsnap.UrgencyNormal
	}
	return name, []string{
		"--urgency=" + string(urgency),
		"--app-name=" + app,
		notice.Title,
		notice.Message,
	}
}

// appleScriptString quotes s as an AppleScript string literal.
func appleScriptString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

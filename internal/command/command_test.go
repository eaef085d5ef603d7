package command

// Notes:
// - Tests use sh and are skipped on Windows.

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"
)

func skipWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
}

// ---------------------------------------------------------------------------
// TestExecRunner_Run - Output capture
// ---------------------------------------------------------------------------

func TestExecRunner_Run(t *testing.T) {
	t.Parallel()
	skipWindows(t)

	r := &ExecRunner{}

	t.Run("captures stdout", func(t *testing.T) {
		t.Parallel()

		res, err := r.Run(context.Background(), Cmd{Name: "sh", Args: []string{"-c", "printf hi"}})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if string(res.Stdout) != "hi" {
			t.Errorf("Stdout = %q, want %q", res.Stdout, "hi")
		}
	})

	t.Run("stdin and custom stdout", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		_, err := r.Run(context.Background(), Cmd{
			Name:   "cat",
			Stdin:  strings.NewReader("piped"),
			Stdout: &out,
		})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if out.String() != "piped" {
			t.Errorf("stdout = %q", out.String())
		}
	})

	t.Run("dir and env", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		res, err := r.Run(context.Background(), Cmd{
			Name: "sh",
			Args: []string{"-c", `printf "%s|%s" "$PWD" "$MATHSNAP_TEST"`},
			Dir:  dir,
			Env:  []string{"MATHSNAP_TEST=yes"},
		})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if !strings.HasSuffix(string(res.Stdout), "|yes") {
			t.Errorf("Stdout = %q, want env var", res.Stdout)
		}
	})

	t.Run("exit status carries stderr", func(t *testing.T) {
		t.Parallel()

		_, err := r.Run(context.Background(), Cmd{Name: "sh", Args: []string{"-c", "echo boom >&2; exit 3"}})
		var cerr *Error
		if !errors.As(err, &cerr) {
			t.Fatalf("Run() error = %T %v, want *Error", err, err)
		}
		if cerr.Name != "sh" || !strings.Contains(err.Error(), "boom") {
			t.Errorf("Error() = %q", err.Error())
		}
	})

	t.Run("missing executable", func(t *testing.T) {
		t.Parallel()

		_, err := r.Run(context.Background(), Cmd{Name: "mathsnap-no-such-tool"})
		if !NotFound(err) {
			t.Errorf("NotFound(%v) = false", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestExecRunner_Run_Forking - Tools that leave a background child
// ---------------------------------------------------------------------------

func TestExecRunner_Run_Forking(t *testing.T) {
	t.Parallel()
	skipWindows(t)

	t.Run("detached returns when the tool exits", func(t *testing.T) {
		t.Parallel()

		start := time.Now()
		_, err := (&ExecRunner{WaitDelay: 10 * time.Second}).Run(context.Background(), Cmd{
			Name:   "sh",
			Args:   []string{"-c", "sleep 3 & exit 0"},
			Detach: true,
		})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if took := time.Since(start); took > 2*time.Second {
			t.Errorf("Run() took %v, want it not to wait for the child", took)
		}
	})

	t.Run("detached keeps stderr", func(t *testing.T) {
		t.Parallel()

		_, err := (&ExecRunner{}).Run(context.Background(), Cmd{
			Name:   "sh",
			Args:   []string{"-c", "echo boom >&2; exit 3"},
			Detach: true,
		})
		var cerr *Error
		if !errors.As(err, &cerr) || !strings.Contains(cerr.Stderr, "boom") {
			t.Errorf("Run() error = %v, want stderr captured", err)
		}
	})

	t.Run("child holding pipes after success", func(t *testing.T) {
		t.Parallel()

		_, err := (&ExecRunner{WaitDelay: 100 * time.Millisecond}).Run(context.Background(), Cmd{
			Name: "sh",
			Args: []string{"-c", "sleep 3 & exit 0"},
		})
		if err != nil {
			t.Errorf("Run() error = %v, want success", err)
		}
	})
}

func TestExecRunner_Run_Cancel(t *testing.T) {
	t.Parallel()
	skipWindows(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := (&ExecRunner{}).Run(ctx, Cmd{Name: "sh", Args: []string{"-c", "sleep 10"}})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want DeadlineExceeded", err)
	}
	if took := time.Since(start); took > 5*time.Second {
		t.Errorf("Run() took %v after cancellation", took)
	}
}

func TestCmd_String(t *testing.T) {
	t.Parallel()

	c := Cmd{Name: "flameshot", Args: []string{"gui", "--raw"}}
	if got := c.String(); got != "flameshot gui --raw" {
		t.Errorf("String() = %q", got)
	}
	if got := (Cmd{Name: "true"}).String(); got != "true" {
		t.Errorf("String() = %q", got)
	}
}

// Package command runs external tools behind an interface so adapters can be
// tested without real subprocesses.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/alnah/go-mathsnap/internal/process"
)

// DefaultWaitDelay bounds how long Run waits for output pipes after the
// process is killed.
const DefaultWaitDelay = 2 * time.Second

// Cmd describes one invocation.
type Cmd struct {
	Name   string
	Args   []string
	Dir    string
	Env    []string  // appended to the current environment
	Stdin  io.Reader // nil means no input
	Stdout io.Writer // nil captures into Result.Stdout

	// Detach is for tools that fork a child which outlives them, such as
	// xclip or xdg-open. Stdout is discarded and stderr goes to a temporary
	// file, so the child holds no pipe that Run would wait on.
	Detach bool
}

// String returns the command line for logs.
func (c Cmd) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result holds captured output.
type Result struct {
	Stdout []byte
	Stderr string
}

// Runner abstracts command execution.
type Runner interface {
	Run(ctx context.Context, c Cmd) (Result, error)
}

// Error reports a command that could not start or exited unsuccessfully.
type Error struct {
	Name   string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Name + ": " + e.Err.Error()
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports whether err means the executable is not installed.
func NotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound)
}

// ExecRunner implements Runner using os/exec.
type ExecRunner struct {
	WaitDelay time.Duration // zero means DefaultWaitDelay
}

// Compile-time interface check.
var _ Runner = (*ExecRunner)(nil)

// Run executes c and waits for it. When ctx ends first, the process group is
// killed and the returned error wraps ctx.Err().
func (r *ExecRunner) Run(ctx context.Context, c Cmd) (Result, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	process.Isolate(cmd)
	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay == 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin
	if len(c.Env) > 0 {
		cmd.Env = append(cmd.Environ(), c.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if c.Stdout != nil {
		cmd.Stdout = c.Stdout
	}
	cmd.Stderr = &stderr

	var stderrFile *os.File
	if c.Detach {
		f, err := os.CreateTemp("", "mathsnap-stderr-*")
		if err != nil {
			return Result{}, &Error{Name: c.Name, Err: fmt.Errorf("creating stderr file: %w", err)}
		}
		defer func() {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}()
		stderrFile = f
		cmd.Stdout = nil
		cmd.Stderr = f
	}

	err := cmd.Run()
	if stderrFile != nil {
		if b, rerr := os.ReadFile(stderrFile.Name()); rerr == nil {
			stderr.Write(b)
		}
	}
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.String()}
	// A background child still holding the output pipes is not a failure of
	// a tool that exited 0.
	if errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState != nil && cmd.ProcessState.Success() {
		err = nil
	}
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, &Error{Name: c.Name, Stderr: res.Stderr, Err: fmt.Errorf("%w (%v)", ctxErr, err)}
	}
	return res, &Error{Name: c.Name, Stderr: res.Stderr, Err: err}
}

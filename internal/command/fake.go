package command

import (
	"context"
	"io"
	"sync"
)

// Recorder is a Runner for tests. It records every Cmd and answers with the
// configured Respond function, or an empty Result when Respond is nil.
type Recorder struct {
	Respond func(c Cmd) (Result, error)

	mu    sync.Mutex
	calls []Cmd
	stdin []string
}

// Compile-time interface check.
var _ Runner = (*Recorder)(nil)

// Run records c. Stdin is read fully and Stdout receives Result.Stdout.
func (r *Recorder) Run(ctx context.Context, c Cmd) (Result, error) {
	var in string
	if c.Stdin != nil {
		b, _ := io.ReadAll(c.Stdin)
		in = string(b)
	}

	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.stdin = append(r.stdin, in)
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if r.Respond == nil {
		return Result{}, nil
	}
	res, err := r.Respond(c)
	if c.Stdout != nil && len(res.Stdout) > 0 {
		if _, werr := c.Stdout.Write(res.Stdout); werr != nil && err == nil {
			err = werr
		}
	}
	return res, err
}

// Calls returns the recorded commands.
func (r *Recorder) Calls() []Cmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Cmd(nil), r.calls...)
}

// Stdin returns what each call read from its Stdin, in call order.
func (r *Recorder) Stdin() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.stdin...)
}

package mathsnap

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// RenderEvent reports one finished background render.
type RenderEvent struct {
	Rendering
	Err error
}

// RenderLoop re-renders edited text on a single background worker.
//
// Requests go through a queue of one: a new Submit replaces a request that has
// not started yet, and only one render runs at a time, so renders never race
// on the output file. Latest always holds the last successful artifact.
type RenderLoop struct {
	renderer Renderer
	timeout  time.Duration
	onEvent  func(RenderEvent)

	requests chan string
	done     chan struct{}
	latest   atomic.Pointer[Artifact]

	mu     sync.Mutex // guards closed and sends on requests
	closed bool
}

// NewRenderLoop starts the worker. initial seeds Latest, typically with the
// artifact of the render that opened the editing session. onEvent, if not
// nil, is called from the worker goroutine after each render.
func NewRenderLoop(ctx context.Context, renderer Renderer, timeout time.Duration, initial Artifact, onEvent func(RenderEvent)) *RenderLoop {
	l := &RenderLoop{
		renderer: renderer,
		timeout:  timeout,
		onEvent:  onEvent,
		requests: make(chan string, 1),
		done:     make(chan struct{}),
	}
	if !initial.IsZero() {
		l.latest.Store(&initial)
	}
	go l.work(ctx)
	return l
}

func (l *RenderLoop) work(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case text, ok := <-l.requests:
			if !ok {
				return
			}
			out, err := RenderText(ctx, l.renderer, text, l.timeout)
			if err == nil {
				a := out.Artifact
				l.latest.Store(&a)
			}
			if l.onEvent != nil {
				l.onEvent(RenderEvent{Rendering: out, Err: err})
			}
		}
	}
}

// Submit queues text for rendering, replacing any request still waiting.
// It returns false once the loop is closed.
func (l *RenderLoop) Submit(text string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	select {
	case <-l.requests:
	default:
	}
	l.requests <- text
	return true
}

// Latest returns the last successful artifact, or the zero Artifact.
func (l *RenderLoop) Latest() Artifact {
	if a := l.latest.Load(); a != nil {
		return *a
	}
	return Artifact{}
}

// Close drops any pending request, waits for the running render to finish
// and returns the last successful artifact. It is safe to call more than once.
func (l *RenderLoop) Close() Artifact {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		select {
		case <-l.requests:
		default:
		}
		close(l.requests)
	}
	l.mu.Unlock()

	<-l.done
	return l.Latest()
}

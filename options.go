package mathsnap

import (
	"log/slog"
	"time"
)

// Default stage timeouts. Capture is interactive and has no default limit.
const (
	DefaultOCRTimeout    = 60 * time.Second
	DefaultRenderTimeout = 30 * time.Second
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// pipelineConfig holds stage timeouts. Zero disables a limit.
type pipelineConfig struct {
	captureTimeout time.Duration
	ocrTimeout     time.Duration
	renderTimeout  time.Duration
}

// WithCapturer sets the screen capture collaborator.
func WithCapturer(c Capturer) Option {
	return func(p *Pipeline) { p.capturer = c }
}

// WithRecognizer sets the OCR collaborator.
func WithRecognizer(r Recognizer) Option {
	return func(p *Pipeline) { p.recognizer = r }
}

// WithRenderer sets the rendering collaborator.
func WithRenderer(r Renderer) Option {
	return func(p *Pipeline) { p.renderer = r }
}

// WithClipboard sets the clipboard sink.
func WithClipboard(c Clipboard) Option {
	return func(p *Pipeline) { p.clipboard = c }
}

// WithNotifier sets the notification sink.
func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) { p.notifier = n }
}

// WithReviewer sets the post-render strategy.
func WithReviewer(r Reviewer) Option {
	return func(p *Pipeline) { p.reviewer = r }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithOCRTimeout bounds the OCR call.
// Panics if d < 0 (programmer error, similar to time.NewTicker).
func WithOCRTimeout(d time.Duration) Option {
	mustNotBeNegative("WithOCRTimeout", d)
	return func(p *Pipeline) { p.cfg.ocrTimeout = d }
}

// WithRenderTimeout bounds each render invocation.
// Panics if d < 0.
func WithRenderTimeout(d time.Duration) Option {
	mustNotBeNegative("WithRenderTimeout", d)
	return func(p *Pipeline) { p.cfg.renderTimeout = d }
}

// WithCaptureTimeout bounds the interactive capture. Zero means no limit.
// Panics if d < 0.
func WithCaptureTimeout(d time.Duration) Option {
	mustNotBeNegative("WithCaptureTimeout", d)
	return func(p *Pipeline) { p.cfg.captureTimeout = d }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithRunIDs replaces the run ID generator, for tests.
func WithRunIDs(gen func() string) Option {
	return func(p *Pipeline) { p.newRunID = gen }
}

func mustNotBeNegative(name string, d time.Duration) {
	if d < 0 {
		panic("mathsnap: " + name + " duration must not be negative")
	}
}

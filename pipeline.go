package mathsnap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Pipeline runs capture, OCR, classification, sanitization and rendering once
// per call to Run. Collaborators are injected with options; clipboard,
// notifier and reviewer default to no-ops.
type Pipeline struct {
	cfg        pipelineConfig
	capturer   Capturer
	recognizer Recognizer
	renderer   Renderer
	clipboard  Clipboard
	notifier   Notifier
	reviewer   Reviewer
	logger     *slog.Logger
	now        func() time.Time
	newRunID   func() string
	removeFile func(string) error
}

// New creates a Pipeline. Capturer, recognizer and renderer are required.
func New(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		cfg: pipelineConfig{
			ocrTimeout:    DefaultOCRTimeout,
			renderTimeout: DefaultRenderTimeout,
		},
		clipboard:  noopSink{},
		notifier:   noopSink{},
		reviewer:   noopSink{},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        time.Now,
		newRunID:   uuid.NewString,
		removeFile: os.Remove,
	}

	for _, opt := range opts {
		opt(p)
	}

	switch {
	case p.capturer == nil:
		return nil, fmt.Errorf("%w: capturer", ErrMissingCollaborator)
	case p.recognizer == nil:
		return nil, fmt.Errorf("%w: recognizer", ErrMissingCollaborator)
	case p.renderer == nil:
		return nil, fmt.Errorf("%w: renderer", ErrMissingCollaborator)
	}
	return p, nil
}

// Run executes one pipeline run. It always returns a Result in a terminal
// state; fatal failures are reported in Result.Err, never as a panic.
func (p *Pipeline) Run(ctx context.Context) *Result {
	r := &run{
		p:     p,
		res:   &Result{RunID: p.newRunID()},
		start: p.now(),
	}
	r.log = p.logger.With(slog.String("run_id", r.res.RunID))
	r.enter(StateIdle)

	imagePath, err := r.capture(ctx)
	if err != nil {
		if !errors.Is(err, ErrCaptureFailed) {
			err = fmt.Errorf("%w: %w", ErrCaptureFailed, err)
		}
		r.abort(ctx, StateCaptureFailed, err, imagePath)
		return r.res
	}
	r.enter(StateCaptured)

	text, err := r.recognize(ctx, imagePath)
	if err != nil {
		r.abort(ctx, StateOCRFailed, err, imagePath)
		return r.res
	}
	r.res.Text = text
	r.res.IsNotation = IsNotation(text)
	r.enter(StateClassified)

	if r.res.IsNotation {
		r.renderNotation(ctx)
	} else {
		r.enter(StatePlainText)
	}

	if err := p.clipboard.Copy(ctx, text); err != nil {
		r.sinkFailed(SinkClipboard, err)
	}

	r.enter(StateDone)
	r.finish(ctx, imagePath)
	return r.res
}

// run carries the mutable state of one Pipeline.Run call.
type run struct {
	p       *Pipeline
	res     *Result
	log     *slog.Logger
	start   time.Time
	cleaned bool
}

func (r *run) enter(s State) {
	r.res.State = s
	r.res.Transitions = append(r.res.Transitions, s)
	r.log.Debug("pipeline state", slog.String("state", s.String()))
}

func (r *run) capture(ctx context.Context) (string, error) {
	ctx, cancel := withTimeout(ctx, r.p.cfg.captureTimeout)
	defer cancel()

	start := r.p.now()
	path, err := r.p.capturer.Capture(ctx)
	r.log.Debug("capture finished", slog.Duration("took", r.p.now().Sub(start)), slog.String("path", path))
	if err != nil {
		return path, err
	}
	if path == "" {
		return "", errors.New("no image produced")
	}

	info, err := os.Stat(path)
	if err != nil {
		return path, fmt.Errorf("stat capture: %w", err)
	}
	if info.Size() == 0 {
		return path, errors.New("captured image is empty")
	}
	return path, nil
}

func (r *run) recognize(ctx context.Context, imagePath string) (string, error) {
	ctx, cancel := withTimeout(ctx, r.p.cfg.ocrTimeout)
	defer cancel()

	start := r.p.now()
	text, err := r.p.recognizer.Recognize(ctx, imagePath)
	r.log.Debug("ocr finished", slog.Duration("took", r.p.now().Sub(start)), slog.Int("chars", len(text)))
	if err != nil {
		if !errors.Is(err, ErrOCRFailed) {
			err = fmt.Errorf("%w: %w", ErrOCRFailed, err)
		}
		return "", err
	}
	if strings.TrimSpace(text) == "" || isNoTextSentinel(text) {
		return "", fmt.Errorf("%w: %w", ErrOCRFailed, ErrNoText)
	}
	return text, nil
}

func (r *run) renderNotation(ctx context.Context) {
	r.res.Fragment = Sanitize(r.res.Text)
	r.enter(StateSanitized)

	start := r.p.now()
	doc, artifact, err := renderFragment(ctx, r.p.renderer, r.res.Fragment, r.p.cfg.renderTimeout)
	r.res.Document = doc
	r.log.Debug("render finished", slog.Duration("took", r.p.now().Sub(start)))
	if err != nil {
		r.res.RenderErr = err
		r.log.Warn("render failed", slog.String("error", err.Error()))
		r.enter(StateRenderFailed)
		return
	}

	r.res.Artifact = artifact
	r.enter(StateRendered)
	r.log.Info("render saved", slog.String("path", artifact.Path))

	reviewed, err := r.p.reviewer.Review(ctx, artifact, r.res.Fragment)
	if err != nil {
		r.sinkFailed(SinkReview, err)
		return
	}
	if !reviewed.IsZero() {
		r.res.Artifact = reviewed
	}
}

// abort ends the run in a failure state.
func (r *run) abort(ctx context.Context, s State, err error, imagePath string) {
	r.res.Err = err
	r.log.Error("pipeline aborted", slog.String("state", s.String()), slog.String("error", err.Error()))
	r.enter(s)
	r.finish(ctx, imagePath)
}

// finish sends the one notification and removes the capture.
func (r *run) finish(ctx context.Context, imagePath string) {
	r.res.Notice = BuildNotice(r.res)
	if err := r.p.notifier.Notify(ctx, r.res.Notice); err != nil {
		r.sinkFailed(SinkNotify, err)
	}
	r.cleanup(imagePath)
	r.res.Duration = r.p.now().Sub(r.start)
	r.log.Info("pipeline finished",
		slog.String("state", r.res.State.String()),
		slog.Bool("notation", r.res.IsNotation),
		slog.Duration("took", r.res.Duration))
}

func (r *run) cleanup(imagePath string) {
	if r.cleaned || imagePath == "" {
		return
	}
	r.cleaned = true
	if err := r.p.removeFile(imagePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		r.sinkFailed(SinkCleanup, err)
	}
}

func (r *run) sinkFailed(sink string, err error) {
	r.res.SinkErrs = append(r.res.SinkErrs, &SinkError{Sink: sink, Err: err})
	r.log.Warn("sink failed", slog.String("sink", sink), slog.String("error", err.Error()))
}

// noopSink satisfies the optional collaborators.
type noopSink struct{}

func (noopSink) Copy(context.Context, string) error   { return nil }
func (noopSink) Notify(context.Context, Notice) error { return nil }

func (noopSink) Review(_ context.Context, a Artifact, _ string) (Artifact, error) {
	return a, nil
}

package mathsnap

import "errors"

// Sentinel errors for pipeline stages.
// Collaborator adapters wrap these with fmt.Errorf("%w: ...") so callers can
// classify failures with errors.Is.
var (
	ErrCaptureFailed  = errors.New("screen capture failed")
	ErrEncodingFailed = errors.New("image encoding failed")
	ErrOCRFailed      = errors.New("text extraction failed")
	ErrNoText         = errors.New("no text found in image")
	ErrRenderFailed   = errors.New("LaTeX rendering failed")
	ErrEmptyFragment  = errors.New("sanitized fragment is empty")
	ErrSinkFailed     = errors.New("desktop sink failed")

	// Configuration errors.
	ErrMissingCollaborator = errors.New("pipeline collaborator not configured")
)

// RenderError carries the renderer's diagnostic output alongside the failure.
// It unwraps to ErrRenderFailed.
type RenderError struct {
	Diagnostic string
	Err        error
}

func (e *RenderError) Error() string {
	msg := ErrRenderFailed.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Diagnostic != "" {
		msg += "\n" + e.Diagnostic
	}
	return msg
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *RenderError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRenderFailed}
	}
	return []error{ErrRenderFailed, e.Err}
}

// Sink names used in SinkError.
const (
	SinkClipboard = "clipboard"
	SinkNotify    = "notify"
	SinkReview    = "review"
	SinkCleanup   = "cleanup"
)

// SinkError records a best-effort side effect that failed without aborting
// the run. It unwraps to ErrSinkFailed.
type SinkError struct {
	Sink string
	Err  error
}

func (e *SinkError) Error() string {
	return ErrSinkFailed.Error() + ": " + e.Sink + ": " + e.Err.Error()
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *SinkError) Unwrap() []error {
	return []error{ErrSinkFailed, e.Err}
}

package mathsnap

// Notes:
// - State: names are stable because they appear in logs and JSON output.
// - RenderError/SinkError: both must unwrap to their sentinel and the cause.

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestState - Names and terminal states
// ---------------------------------------------------------------------------

func TestState_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "idle"},
		{StateCaptured, "captured"},
		{StateClassified, "classified"},
		{StatePlainText, "plain_text"},
		{StateSanitized, "sanitized"},
		{StateRendered, "rendered"},
		{StateRenderFailed, "render_failed"},
		{StateDone, "done"},
		{StateCaptureFailed, "capture_failed"},
		{StateOCRFailed, "ocr_failed"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()

			if got := tt.state.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestState_Terminal(t *testing.T) {
	t.Parallel()

	terminal := map[State]bool{StateDone: true, StateCaptureFailed: true, StateOCRFailed: true}
	for s := StateIdle; s <= StateOCRFailed; s++ {
		if got := s.Terminal(); got != terminal[s] {
			t.Errorf("%v.Terminal() = %v, want %v", s, got, terminal[s])
		}
	}
}

// ---------------------------------------------------------------------------
// TestRenderError - Wrapping
// ---------------------------------------------------------------------------

func TestRenderError(t *testing.T) {
	t.Parallel()

	t.Run("with cause and diagnostic", func(t *testing.T) {
		t.Parallel()

		err := &RenderError{Diagnostic: "! Undefined control sequence.\nl.7 \\frax", Err: context.DeadlineExceeded}
		if !errors.Is(err, ErrRenderFailed) || !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("errors.Is failed for %v", err)
		}
		msg := err.Error()
		if !strings.HasPrefix(msg, ErrRenderFailed.Error()+": context deadline exceeded\n") {
			t.Errorf("Error() = %q", msg)
		}
		if !strings.Contains(msg, `l.7 \frax`) {
			t.Errorf("Error() = %q, want diagnostic", msg)
		}
	})

	t.Run("sentinel only", func(t *testing.T) {
		t.Parallel()

		err := &RenderError{}
		if err.Error() != ErrRenderFailed.Error() {
			t.Errorf("Error() = %q", err.Error())
		}
		if !errors.Is(err, ErrRenderFailed) {
			t.Error("errors.Is(ErrRenderFailed) = false")
		}
	})
}

func TestSinkError(t *testing.T) {
	t.Parallel()

	err := &SinkError{Sink: SinkClipboard, Err: fs.ErrNotExist}
	if !errors.Is(err, ErrSinkFailed) || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("errors.Is failed for %v", err)
	}
	if want := "desktop sink failed: clipboard: file does not exist"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

// ---------------------------------------------------------------------------
// TestBuildNotice - One message per outcome
// ---------------------------------------------------------------------------

func TestBuildNotice(t *testing.T) {
	t.Parallel()

	rendered := Artifact{Path: "/home/u/Pictures/latex-renders/latex_render_20240101_120000.png"}
	clipErr := &SinkError{Sink: SinkClipboard, Err: errors.New("no xclip")}
	notifyErr := &SinkError{Sink: SinkNotify, Err: errors.New("no daemon")}

	tests := []struct {
		name     string
		res      *Result
		title    string
		urgency  Urgency
		contains []string
		excludes []string
	}{
		{
			name:     "capture failed",
			res:      &Result{State: StateCaptureFailed, Err: errors.New("screen capture failed: exit 1\nstderr")},
			title:    TitleCaptureFailed,
			urgency:  UrgencyCritical,
			contains: []string{"exit 1"},
			excludes: []string{"stderr"},
		},
		{
			name:     "no text",
			res:      &Result{State: StateOCRFailed, Err: errors.Join(ErrOCRFailed, ErrNoText)},
			title:    TitleOCRFailed,
			urgency:  UrgencyCritical,
			contains: []string{"No text could be extracted from the image"},
		},
		{
			name:     "ocr error",
			res:      &Result{State: StateOCRFailed, Err: errors.New("status 401")},
			title:    TitleOCRFailed,
			urgency:  UrgencyCritical,
			contains: []string{"Error processing image: status 401"},
		},
		{
			name:     "render failed",
			res:      &Result{State: StateDone, IsNotation: true, RenderErr: &RenderError{Diagnostic: "! Missing $"}},
			title:    TitleRenderFailed,
			urgency:  UrgencyCritical,
			contains: []string{"Error rendering LaTeX: LaTeX rendering failed", "Text copied to clipboard"},
			excludes: []string{"Missing $"},
		},
		{
			name:     "clipboard failed after render",
			res:      &Result{State: StateDone, Artifact: rendered, SinkErrs: []error{clipErr}},
			title:    TitleClipboardError,
			urgency:  UrgencyCritical,
			contains: []string{"couldn't be copied", "latex_render_20240101_120000.png"},
			excludes: []string{"/home/u"},
		},
		{
			name:     "success plain",
			res:      &Result{State: StateDone},
			title:    TitleSuccess,
			urgency:  UrgencyNormal,
			contains: []string{"Text extracted and copied to clipboard"},
			excludes: []string{"LaTeX"},
		},
		{
			name:     "success rendered",
			res:      &Result{State: StateDone, Artifact: rendered},
			title:    TitleSuccess,
			urgency:  UrgencyNormal,
			contains: []string{"LaTeX rendered and saved to: latex_render_20240101_120000.png"},
		},
		{
			name:    "unrelated sink errors ignored",
			res:     &Result{State: StateDone, SinkErrs: []error{notifyErr}},
			title:   TitleSuccess,
			urgency: UrgencyNormal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n := BuildNotice(tt.res)
			if n.Title != tt.title || n.Urgency != tt.urgency {
				t.Errorf("BuildNotice() = %q/%q, want %q/%q", n.Title, n.Urgency, tt.title, tt.urgency)
			}
			for _, s := range tt.contains {
				if !strings.Contains(n.Message, s) {
					t.Errorf("message %q missing %q", n.Message, s)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(n.Message, s) {
					t.Errorf("message %q should not contain %q", n.Message, s)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestReviewers - Viewer and no-op
// ---------------------------------------------------------------------------

type fakeOpener struct {
	path string
	err  error
}

func (f *fakeOpener) Open(_ context.Context, path string) error {
	f.path = path
	return f.err
}

func TestReviewers(t *testing.T) {
	t.Parallel()

	a := Artifact{Path: "/tmp/r.png"}

	t.Run("no review", func(t *testing.T) {
		t.Parallel()

		got, err := NoReview{}.Review(context.Background(), a, "x")
		if err != nil || got != a {
			t.Errorf("Review() = %v, %v", got, err)
		}
	})

	t.Run("viewer opens artifact", func(t *testing.T) {
		t.Parallel()

		o := &fakeOpener{}
		got, err := (&ViewerReviewer{Opener: o}).Review(context.Background(), a, "x")
		if err != nil || got != a || o.path != a.Path {
			t.Errorf("Review() = %v, %v; opened %q", got, err, o.path)
		}
	})

	t.Run("viewer failure keeps artifact", func(t *testing.T) {
		t.Parallel()

		o := &fakeOpener{err: errors.New("no viewer")}
		got, err := (&ViewerReviewer{Opener: o}).Review(context.Background(), a, "x")
		if err == nil || got != a {
			t.Errorf("Review() = %v, %v", got, err)
		}
	})
}

package mathsnap

import (
	"context"
	"time"
)

// State is a step of a pipeline run.
type State int

// Pipeline states. Done, CaptureFailed and OCRFailed are terminal.
const (
	StateIdle State = iota
	StateCaptured
	StateClassified
	StatePlainText
	StateSanitized
	StateRendered
	StateRenderFailed
	StateDone
	StateCaptureFailed
	StateOCRFailed
)

var stateNames = map[State]string{
	StateIdle:          "idle",
	StateCaptured:      "captured",
	StateClassified:    "classified",
	StatePlainText:     "plain_text",
	StateSanitized:     "sanitized",
	StateRendered:      "rendered",
	StateRenderFailed:  "render_failed",
	StateDone:          "done",
	StateCaptureFailed: "capture_failed",
	StateOCRFailed:     "ocr_failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateCaptureFailed || s == StateOCRFailed
}

// Artifact is a rendered image owned by the caller once a run ends.
type Artifact struct {
	Path string
}

// IsZero reports whether the artifact points at nothing.
func (a Artifact) IsZero() bool { return a.Path == "" }

// Capturer produces an image of a user-selected screen region.
// The returned path must name a non-empty image file.
type Capturer interface {
	Capture(ctx context.Context) (string, error)
}

// Recognizer extracts text from an image file.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// Renderer turns a complete LaTeX document into a raster image.
// Failures should be *RenderError so the diagnostic reaches the user.
type Renderer interface {
	Render(ctx context.Context, document string) (Artifact, error)
}

// Clipboard receives the extracted text.
type Clipboard interface {
	Copy(ctx context.Context, text string) error
}

// Notifier shows a desktop notification.
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

// Reviewer decides what happens after a successful render: open a viewer,
// start an editing session, or nothing. It returns the artifact the run
// should report, which may differ from the input after editing.
type Reviewer interface {
	Review(ctx context.Context, artifact Artifact, fragment string) (Artifact, error)
}

// Urgency is the notification priority.
type Urgency string

// Notification urgencies understood by freedesktop notification daemons.
const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyCritical Urgency = "critical"
)

// Notice is the single user-facing message sent at the end of a run.
type Notice struct {
	Title   string
	Message string
	Urgency Urgency
}

// Result describes a finished run.
type Result struct {
	RunID       string
	State       State   // terminal state
	Transitions []State // every state visited, in order
	Text        string  // raw OCR text
	IsNotation  bool
	Fragment    string // sanitized fragment, notation runs only
	Document    string // document handed to the renderer
	Artifact    Artifact
	RenderErr   error   // non-fatal: the run still reaches StateDone
	SinkErrs    []error // clipboard, notification, viewer and cleanup failures
	Err         error   // fatal: set for StateCaptureFailed and StateOCRFailed
	Notice      Notice
	Duration    time.Duration
}

// Rendered reports whether the run produced an artifact.
func (r *Result) Rendered() bool { return !r.Artifact.IsZero() }

package mathsnap

import (
	"context"
	"time"
)

// Opener shows a file to the user, e.g. with the desktop image viewer.
type Opener interface {
	Open(ctx context.Context, path string) error
}

// EditSurface is an interactive editor. It pushes edited text into loop and
// returns when the user closes it.
type EditSurface interface {
	Edit(ctx context.Context, loop *RenderLoop, fragment string) error
}

// Compile-time interface checks.
var (
	_ Reviewer = NoReview{}
	_ Reviewer = (*ViewerReviewer)(nil)
	_ Reviewer = (*EditorReviewer)(nil)
)

// NoReview keeps the rendered artifact and does nothing else.
type NoReview struct{}

// Review returns artifact unchanged.
func (NoReview) Review(_ context.Context, artifact Artifact, _ string) (Artifact, error) {
	return artifact, nil
}

// ViewerReviewer opens the rendered image in a viewer.
type ViewerReviewer struct {
	Opener Opener
}

// Review opens artifact. A viewer failure does not lose the artifact.
func (v *ViewerReviewer) Review(ctx context.Context, artifact Artifact, _ string) (Artifact, error) {
	return artifact, v.Opener.Open(ctx, artifact.Path)
}

// EditorReviewer runs an edit-and-re-render session on Surface.
type EditorReviewer struct {
	Surface  EditSurface
	Renderer Renderer
	Timeout  time.Duration
	OnEvent  func(RenderEvent)
}

// Review runs the session and returns the last successful artifact, even if
// the surface was closed before the user saved or it returned an error.
func (e *EditorReviewer) Review(ctx context.Context, artifact Artifact, fragment string) (Artifact, error) {
	loop := NewRenderLoop(ctx, e.Renderer, e.Timeout, artifact, e.OnEvent)
	err := e.Surface.Edit(ctx, loop, fragment)
	return loop.Close(), err
}

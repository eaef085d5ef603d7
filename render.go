package mathsnap

import (
	"context"
	"errors"
	"time"
)

// Rendering is the outcome of sanitizing and rendering one text.
type Rendering struct {
	Fragment string
	Document string
	Artifact Artifact
}

// RenderText sanitizes text, builds the document and hands it to renderer.
// A zero timeout leaves ctx unchanged. Failures unwrap to ErrRenderFailed.
func RenderText(ctx context.Context, renderer Renderer, text string, timeout time.Duration) (Rendering, error) {
	out := Rendering{Fragment: Sanitize(text)}
	doc, artifact, err := renderFragment(ctx, renderer, out.Fragment, timeout)
	out.Document = doc
	out.Artifact = artifact
	return out, err
}

// renderFragment never hands an empty fragment to the renderer.
func renderFragment(ctx context.Context, renderer Renderer, fragment string, timeout time.Duration) (string, Artifact, error) {
	if fragment == "" {
		return "", Artifact{}, &RenderError{Err: ErrEmptyFragment}
	}

	doc := BuildDocument(fragment)

	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	artifact, err := renderer.Render(ctx, doc)
	if err != nil {
		if !errors.Is(err, ErrRenderFailed) {
			err = &RenderError{Err: err}
		}
		return doc, Artifact{}, err
	}
	if artifact.IsZero() {
		return doc, Artifact{}, &RenderError{Err: errors.New("renderer returned no artifact")}
	}
	return doc, artifact, nil
}

// withTimeout applies d when positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

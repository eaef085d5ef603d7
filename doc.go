// Package mathsnap turns a screenshot of math into rendered LaTeX.
//
// # Quick Start
//
// Wire the collaborators and run once:
//
//	p, err := mathsnap.New(
//	    mathsnap.WithCapturer(capturer),
//	    mathsnap.WithRecognizer(recognizer),
//	    mathsnap.WithRenderer(renderer),
//	    mathsnap.WithClipboard(clipboard),
//	    mathsnap.WithNotifier(notifier),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res := p.Run(ctx)
//	fmt.Println(res.State, res.Artifact.Path)
//
// Run never panics on collaborator failure; the Result always ends in one of
// the terminal states StateDone, StateCaptureFailed or StateOCRFailed.
//
// # Pipeline
//
// Each run follows these stages:
//
//  1. Capture a screen region (Capturer) and check the image is non-empty
//  2. Extract text (Recognizer)
//  3. Classify the text with IsNotation
//  4. Plain text: copy to the clipboard and stop
//  5. Notation: Sanitize, BuildDocument, Render, then hand the artifact to
//     the Reviewer (viewer, editor or nothing)
//  6. Copy the original text, send exactly one notification, delete the capture
//
// A render failure does not abort the run: the text is still copied and the
// failure is reported in Result.RenderErr.
//
// # Sanitizing
//
// Sanitize strips document scaffolding, rewrites aligned to align and drops
// the markers of any checked environment whose begin and end counts differ.
// It favours dropping a broken wrapper over repairing it:
//
//	mathsnap.Sanitize(`\begin{align}x`) // "x"
//
// # Editing
//
// RenderLoop serves interactive editors. Submissions replace any pending
// request and a single worker renders them one at a time:
//
//	loop := mathsnap.NewRenderLoop(ctx, renderer, 30*time.Second, first, nil)
//	loop.Submit(`\frac{a}{b}`)
//	last := loop.Close() // last successful artifact
package mathsnap

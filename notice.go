package mathsnap

import (
	"errors"
	"path/filepath"
	"strings"
)

// Notification titles.
const (
	TitleSuccess        = "OCR Successful"
	TitleCaptureFailed  = "Screenshot Failed"
	TitleOCRFailed      = "OCR Failed"
	TitleRenderFailed   = "LaTeX Rendering Failed"
	TitleClipboardError = "Clipboard Error"
)

// BuildNotice chooses the single notification for a finished run.
func BuildNotice(res *Result) Notice {
	switch res.State {
	case StateCaptureFailed:
		return Notice{
			Title:   TitleCaptureFailed,
			Message: firstLine(res.Err),
			Urgency: UrgencyCritical,
		}
	case StateOCRFailed:
		msg := "Error processing image: " + firstLine(res.Err)
		if errors.Is(res.Err, ErrNoText) {
			msg = "No text could be extracted from the image"
		}
		return Notice{Title: TitleOCRFailed, Message: msg, Urgency: UrgencyCritical}
	}

	clipboardFailed := hasSinkError(res.SinkErrs, SinkClipboard)

	if res.RenderErr != nil {
		msg := "Error rendering LaTeX: " + firstLine(res.RenderErr)
		if clipboardFailed {
			msg += "\nText extracted but couldn't be copied to clipboard"
		} else {
			msg += "\nText copied to clipboard"
		}
		return Notice{Title: TitleRenderFailed, Message: msg, Urgency: UrgencyCritical}
	}

	if clipboardFailed {
		msg := "Text extracted but couldn't be copied to clipboard"
		if res.Rendered() {
			msg += "\nLaTeX rendered and saved to: " + filepath.Base(res.Artifact.Path)
		}
		return Notice{Title: TitleClipboardError, Message: msg, Urgency: UrgencyCritical}
	}

	msg := "Text extracted and copied to clipboard"
	if res.Rendered() {
		msg += "\nLaTeX rendered and saved to: " + filepath.Base(res.Artifact.Path)
	}
	return Notice{Title: TitleSuccess, Message: msg, Urgency: UrgencyNormal}
}

func hasSinkError(errs []error, sink string) bool {
	for _, err := range errs {
		var se *SinkError
		if errors.As(err, &se) && se.Sink == sink {
			return true
		}
	}
	return false
}

// firstLine keeps notifications short; diagnostics go to the console.
func firstLine(err error) string {
	if err == nil {
		return ""
	}
	line, _, _ := strings.Cut(err.Error(), "\n")
	return line
}

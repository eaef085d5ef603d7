package main

import (
	"errors"
	"os"

	mathsnap "github.com/alnah/go-mathsnap"
	"github.com/alnah/go-mathsnap/internal/config"
	"github.com/alnah/go-mathsnap/internal/ocr"
	"github.com/alnah/go-mathsnap/internal/yamlutil"
)

// Exit codes for the mathsnap CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Text copied (and rendered, for notation)
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or missing API key
	ExitCapture = 3 // Screen capture or file I/O failed
	ExitOCR     = 4 // Text extraction failed
	ExitRender  = 5 // Rendering failed (text was still copied)
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Usage/config errors (exit 2), checked first: a missing API key also
	// wraps ErrOCRFailed.
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, yamlutil.ErrInvalidDur) ||
		errors.Is(err, ocr.ErrMissingAPIKey) ||
		errors.Is(err, ocr.ErrTesseractUnavailable) ||
		errors.Is(err, mathsnap.ErrMissingCollaborator) {
		return ExitUsage
	}

	if errors.Is(err, mathsnap.ErrRenderFailed) {
		return ExitRender
	}
	if errors.Is(err, mathsnap.ErrOCRFailed) {
		return ExitOCR
	}
	if errors.Is(err, mathsnap.ErrCaptureFailed) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitCapture
	}

	return ExitGeneral
}

// exitCodeForResult maps a finished run to an exit code. Sink failures do
// not change it.
func exitCodeForResult(res *mathsnap.Result) int {
	switch {
	case res.Err != nil:
		return exitCodeFor(res.Err)
	case res.RenderErr != nil:
		return ExitRender
	default:
		return ExitSuccess
	}
}

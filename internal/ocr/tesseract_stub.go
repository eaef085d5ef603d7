//go:build !tesseract

package ocr

import (
	"context"
	"fmt"

	mathsnap "github.com/alnah/go-mathsnap"
)

// TesseractAvailable reports whether the local backend was compiled in.
const TesseractAvailable = false

// Tesseract is a placeholder that always fails.
type Tesseract struct {
	Language string
}

// Compile-time interface check.
var _ mathsnap.Recognizer = (*Tesseract)(nil)

// Recognize always returns ErrTesseractUnavailable.
func (t *Tesseract) Recognize(context.Context, string) (string, error) {
	return "", fmt.Errorf("%w: %w", mathsnap.ErrOCRFailed, ErrTesseractUnavailable)
}

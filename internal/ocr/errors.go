package ocr

import "errors"

// Sentinel errors for OCR backends.
var (
	// ErrMissingAPIKey is returned before any request when no key is configured.
	ErrMissingAPIKey = errors.New("mistral API key not set")

	// ErrTesseractUnavailable is returned when the binary was built without
	// the tesseract build tag.
	ErrTesseractUnavailable = errors.New("tesseract support not compiled in (rebuild with -tags tesseract)")
)

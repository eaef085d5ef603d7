//go:build tesseract

package ocr

import (
	"context"
	"fmt"

	mathsnap "github.com/alnah/go-mathsnap"
	"github.com/otiai10/gosseract/v2"
)

// TesseractAvailable reports whether the local backend was compiled in.
const TesseractAvailable = true

// Tesseract recognizes text locally with libtesseract.
type Tesseract struct {
	Language string // defaults to "eng"
}

// Compile-time interface check.
var _ mathsnap.Recognizer = (*Tesseract)(nil)

// Recognize enhances the capture and runs Tesseract on it. gosseract has no
// cancellation, so ctx is only checked before the call.
func (t *Tesseract) Recognize(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	img, err := LoadImage(imagePath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", mathsnap.ErrOCRFailed, err)
	}
	data, err := EncodePNG(Enhance(img))
	if err != nil {
		return "", fmt.Errorf("%w: %w", mathsnap.ErrOCRFailed, err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	lang := t.Language
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(lang); err != nil {
		return "", fmt.Errorf("%w: set language: %w", mathsnap.ErrOCRFailed, err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("%w: set image: %w", mathsnap.ErrOCRFailed, err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("%w: %w", mathsnap.ErrOCRFailed, err)
	}
	return JoinSegments([]string{text}), nil
}

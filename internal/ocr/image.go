package ocr

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"

	mathsnap "github.com/alnah/go-mathsnap"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// LoadImage decodes the image at path, honouring EXIF orientation.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", mathsnap.ErrEncodingFailed, err)
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", mathsnap.ErrEncodingFailed, path, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: %s has no pixels", mathsnap.ErrEncodingFailed, path)
	}
	return img, nil
}

// Flatten composites img onto an opaque background, so transparent
// screenshots do not reach the OCR service as black on black.
func Flatten(img image.Image, background color.Color) *image.NRGBA {
	b := img.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), background)
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
}

// EncodePNG returns img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("%w: %w", mathsnap.ErrEncodingFailed, err)
	}
	return buf.Bytes(), nil
}

// DataURL loads the image at path, flattens it onto background and returns a
// base64 PNG data URL.
func DataURL(path string, background color.Color) (string, error) {
	img, err := LoadImage(path)
	if err != nil {
		return "", err
	}
	data, err := EncodePNG(Flatten(img, background))
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

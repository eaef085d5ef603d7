package ocr

import (
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// MinOCRHeight is the height below which captures are upscaled before local
// recognition. Tesseract reads small glyphs poorly.
const MinOCRHeight = 300

// maxUpscale bounds the resize factor for tiny selections.
const maxUpscale = 4

// Enhance prepares img for local OCR: upscale when short, grayscale, then
// stretch contrast.
func Enhance(img image.Image) image.Image {
	b := img.Bounds()
	if h := b.Dy(); h > 0 && h < MinOCRHeight {
		factor := (MinOCRHeight + h - 1) / h
		if factor > maxUpscale {
			factor = maxUpscale
		}
		img = imaging.Resize(img, b.Dx()*factor, 0, imaging.Lanczos)
	}
	gray := effect.Grayscale(img)
	return adjust.Contrast(gray, 0.3)
}

// Package ocr extracts text from captured images.
//
// Mistral calls the hosted Mistral OCR API and is the default backend.
// Tesseract runs locally through gosseract and is only compiled with the
// "tesseract" build tag because it needs libtesseract headers.
//
// Both backends return the page texts joined by newlines after trimming,
// dropping empty pages and NFC normalization. An empty result is not an
// error here; the pipeline decides what no text means.
package ocr

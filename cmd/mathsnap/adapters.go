package main

import (
	"fmt"

	mathsnap "github.com/alnah/go-mathsnap"
	"github.com/alnah/go-mathsnap/internal/assets"
	"github.com/alnah/go-mathsnap/internal/capture"
	"github.com/alnah/go-mathsnap/internal/config"
	"github.com/alnah/go-mathsnap/internal/desktop"
	"github.com/alnah/go-mathsnap/internal/fileutil"
	"github.com/alnah/go-mathsnap/internal/ocr"
	"github.com/alnah/go-mathsnap/internal/palette"
	"github.com/alnah/go-mathsnap/internal/render"
)

// adapters are the concrete collaborators for one command.
type adapters struct {
	Capturer   mathsnap.Capturer
	Recognizer mathsnap.Recognizer
	Renderer   mathsnap.Renderer
	Clipboard  mathsnap.Clipboard
	Notifier   mathsnap.Notifier
	Opener     mathsnap.Opener
	Assets     assets.AssetLoader // review and KaTeX page templates; nil means built-in
	Close      func() error       // releases the renderer (e.g. stops Chrome)
}

// adapterFactory builds adapters from a validated config.
type adapterFactory func(cfg *config.Config) (*adapters, error)

// newAdapters wires the production implementations.
func newAdapters(cfg *config.Config) (*adapters, error) {
	fg, err := palette.Parse(cfg.Render.Foreground)
	if err != nil {
		return nil, fmt.Errorf("%w: render.foreground: %w", config.ErrInvalidValue, err)
	}
	bg, err := palette.Parse(cfg.Render.Background)
	if err != nil {
		return nil, fmt.Errorf("%w: render.background: %w", config.ErrInvalidValue, err)
	}
	out := render.Output{
		Dir:        cfg.Render.OutputDir,
		NameFormat: cfg.Render.NameLayout(),
		DPI:        cfg.Render.DPI,
		Foreground: fg,
		Background: bg,
	}

	assetsDir, err := fileutil.ExpandHome(cfg.Render.AssetsDir)
	if err != nil {
		return nil, fmt.Errorf("%w: render.assetsDir: %w", config.ErrInvalidValue, err)
	}
	loader, err := assets.NewAssetResolver(assetsDir)
	if err != nil {
		return nil, fmt.Errorf("%w: render.assetsDir: %w", config.ErrInvalidValue, err)
	}

	a := &adapters{
		Capturer:  capture.New(cfg.Capture.Command, cfg.Capture.TempDir),
		Clipboard: desktop.NewClipboard(cfg.Clipboard.Command),
		Notifier:  desktop.NewNotifier(cfg.Notify.AppName, cfg.Notify.Command),
		Opener:    desktop.NewOpener(cfg.Review.Viewer),
		Assets:    loader,
		Close:     func() error { return nil },
	}

	switch cfg.OCR.Backend {
	case config.OCRTesseract:
		if !ocr.TesseractAvailable {
			return nil, ocr.ErrTesseractUnavailable
		}
		a.Recognizer = &ocr.Tesseract{Language: cfg.OCR.Language}
	default:
		a.Recognizer = &ocr.Mistral{
			APIKey:     cfg.OCR.APIKey,
			Endpoint:   cfg.OCR.Endpoint,
			Model:      cfg.OCR.Model,
			Background: bg,
		}
	}

	switch cfg.Render.Backend {
	case config.RendererBrowser:
		b := render.NewBrowser(out)
		b.KaTeXURL = cfg.Render.KaTeXURL
		b.Assets = loader
		a.Renderer = b
		a.Close = b.Close
	default:
		l := render.NewLaTeX(out)
		l.Latex = cfg.Render.Latex
		l.Dvipng = cfg.Render.Dvipng
		a.Renderer = l
	}
	return a, nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	mathsnap "github.com/alnah/go-mathsnap"
	"github.com/alnah/go-mathsnap/internal/capture"
	"github.com/alnah/go-mathsnap/internal/config"
	"github.com/alnah/go-mathsnap/internal/export"
	"github.com/alnah/go-mathsnap/internal/ocr"
)

// Notification sent when the run cannot start.
const (
	titleConfigError = "Configuration Error"
	msgMissingAPIKey = ocr.APIKeyEnv + " environment variable not set"
)

// runSnapCmd captures a region (or reads the image given as argument), runs
// OCR and renders notation.
func runSnapCmd(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseSnapFlags(args, env.Stderr)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return exitCodeFor(err)
	}
	if len(positional) > 1 {
		fmt.Fprintln(env.Stderr, "error: snap takes at most one image path")
		return ExitUsage
	}
	logger := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)

	cfg, err := loadRunConfig(flags, env)
	if err != nil {
		printError(env.Stderr, err, "")
		return exitCodeFor(err)
	}

	a, err := env.Adapters(cfg)
	if err != nil {
		printError(env.Stderr, err, "")
		return exitCodeFor(err)
	}
	defer closeAdapters(a, logger)

	if cfg.OCR.Backend == config.OCRMistral && strings.TrimSpace(cfg.OCR.APIKey) == "" {
		if !cfg.Notify.Disabled {
			notice := mathsnap.Notice{Title: titleConfigError, Message: msgMissingAPIKey, Urgency: mathsnap.UrgencyCritical}
			if err := a.Notifier.Notify(ctx, notice); err != nil {
				logger.Warn("notification failed", slog.String("error", err.Error()))
			}
		}
		printError(env.Stderr, ocr.ErrMissingAPIKey, "")
		return ExitUsage
	}

	if len(positional) == 1 {
		a.Capturer = &capture.File{Path: positional[0], Dir: cfg.Capture.TempDir}
	}

	opts := []mathsnap.Option{
		mathsnap.WithCapturer(a.Capturer),
		mathsnap.WithRecognizer(a.Recognizer),
		mathsnap.WithRenderer(a.Renderer),
		mathsnap.WithClipboard(a.Clipboard),
		mathsnap.WithReviewer(newReviewer(cfg, a, env)),
		mathsnap.WithLogger(logger),
		mathsnap.WithClock(env.Now),
		mathsnap.WithCaptureTimeout(cfg.Capture.Timeout.Std()),
		mathsnap.WithOCRTimeout(cfg.OCR.Timeout.Std()),
		mathsnap.WithRenderTimeout(cfg.Render.Timeout.Std()),
	}
	if !cfg.Notify.Disabled {
		opts = append(opts, mathsnap.WithNotifier(a.Notifier))
	}

	p, err := mathsnap.New(opts...)
	if err != nil {
		printError(env.Stderr, err, "")
		return exitCodeFor(err)
	}

	res := p.Run(ctx)
	printResult(env, res)

	if cfg.Render.HTML && res.Rendered() {
		writeReviewPage(ctx, env, cfg, a, export.Page{
			Image:    res.Artifact.Path,
			Fragment: res.Fragment,
			Text:     res.Text,
		})
	}
	return exitCodeForResult(res)
}

// loadRunConfig resolves the config and applies the command line on top.
func loadRunConfig(flags *runFlags, env *Environment) (*config.Config, error) {
	cfg, err := resolveConfig(flags.common.config, env)
	if err != nil {
		return nil, err
	}
	applyFlags(flags, cfg)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newReviewer returns the post-render strategy for cfg.Review.Mode.
func newReviewer(cfg *config.Config, a *adapters, env *Environment) mathsnap.Reviewer {
	switch cfg.Review.Mode {
	case config.ReviewNone:
		return mathsnap.NoReview{}
	case config.ReviewEditor:
		ed := newTerminalEditor(env.Stdin, env.Stderr)
		return &mathsnap.EditorReviewer{
			Surface:  ed,
			Renderer: a.Renderer,
			Timeout:  cfg.Render.Timeout.Std(),
			OnEvent:  ed.Report,
		}
	default:
		return &mathsnap.ViewerReviewer{Opener: a.Opener}
	}
}

// writeReviewPage writes the optional HTML page. Failure is a warning: the
// image and clipboard are already done.
func writeReviewPage(ctx context.Context, env *Environment, cfg *config.Config, a *adapters, page export.Page) {
	path, err := export.NewWithAssets(cfg.Render.HTMLStyle, a.Assets).Write(ctx, page)
	if err != nil {
		fmt.Fprintf(env.Stderr, "warning: %v\n", err)
		return
	}
	fmt.Fprintln(env.Stdout, path)
}

func closeAdapters(a *adapters, logger *slog.Logger) {
	if a.Close == nil {
		return
	}
	if err := a.Close(); err != nil {
		logger.Warn("closing renderer", slog.String("error", err.Error()))
	}
}

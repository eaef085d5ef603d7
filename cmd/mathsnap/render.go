package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	mathsnap "github.com/alnah/go-mathsnap"
	"github.com/alnah/go-mathsnap/internal/config"
	"github.com/alnah/go-mathsnap/internal/export"
)

// maxStdinText bounds text read from stdin by render and classify.
const maxStdinText = 1 << 20

// runRenderCmd sanitizes and renders LaTeX given as argument or on stdin,
// without capture or OCR. The reviewer only runs when --review is given.
func runRenderCmd(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return exitCodeFor(err)
	}
	logger := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)

	text, err := inputText(positional, env.Stdin)
	if err != nil {
		printError(env.Stderr, err, "")
		return exitCodeFor(err)
	}

	if flags.review == "" {
		flags.review = config.ReviewNone
	}
	cfg, err := loadRunConfig(flags, env)
	if err != nil {
		printError(env.Stderr, err, "")
		return exitCodeFor(err)
	}
	// No OCR here; keep a binary without tesseract from refusing to render.
	cfg.OCR.Backend = config.OCRMistral

	a, err := env.Adapters(cfg)
	if err != nil {
		printError(env.Stderr, err, "")
		return exitCodeFor(err)
	}
	defer closeAdapters(a, logger)

	start := env.Now()
	out, err := mathsnap.RenderText(ctx, a.Renderer, text, cfg.Render.Timeout.Std())
	if err != nil {
		printError(env.Stderr, err, "--render-timeout")
		return exitCodeFor(err)
	}
	logger.Debug("rendered", slog.String("path", out.Artifact.Path), slog.Duration("took", env.Now().Sub(start)))

	artifact, err := newReviewer(cfg, a, env).Review(ctx, out.Artifact, out.Fragment)
	if err != nil {
		fmt.Fprintf(env.Stderr, "warning: %v%s\n", err, hintFor(err, ""))
	}
	fmt.Fprintln(env.Stdout, artifact.Path)

	if cfg.Render.HTML {
		writeReviewPage(ctx, env, cfg, a, export.Page{Image: artifact.Path, Fragment: out.Fragment, Text: text})
	}
	return ExitSuccess
}

// inputText returns the single positional argument, or stdin when it is
// absent or "-".
func inputText(positional []string, stdin io.Reader) (string, error) {
	switch {
	case len(positional) > 1:
		return "", fmt.Errorf("%w: expected one argument, got %d (quote the text)", ErrUsage, len(positional))
	case len(positional) == 1 && positional[0] != "-":
		return positional[0], nil
	}
	data, err := io.ReadAll(io.LimitReader(stdin, maxStdinText+1))
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	if len(data) > maxStdinText {
		return "", fmt.Errorf("%w: input exceeds %d bytes", ErrUsage, maxStdinText)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

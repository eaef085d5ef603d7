package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	mathsnap "github.com/alnah/go-mathsnap"
	"github.com/alnah/go-mathsnap/internal/command"
	"github.com/alnah/go-mathsnap/internal/config"
	"github.com/alnah/go-mathsnap/internal/desktop"
	"github.com/alnah/go-mathsnap/internal/hints"
	"github.com/alnah/go-mathsnap/internal/ocr"
	"github.com/alnah/go-mathsnap/internal/render"
)

// printError writes err with an actionable hint when one applies.
// timeoutFlag names the flag that raises the timeout of the failing stage.
func printError(w io.Writer, err error, timeoutFlag string) {
	fmt.Fprintf(w, "error: %v%s\n", err, hintFor(err, timeoutFlag))
}

// hintFor picks the most specific hint for err, or "".
func hintFor(err error, timeoutFlag string) string {
	var cmdErr *command.Error
	switch {
	case errors.Is(err, ocr.ErrMissingAPIKey):
		return hints.ForAPIKey(ocr.APIKeyEnv)
	case errors.Is(err, ocr.ErrTesseractUnavailable):
		return hints.ForTesseract()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(triedPaths(err))
	case errors.Is(err, render.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, desktop.ErrNoClipboardTool):
		return hints.ForMissingTool("xclip")
	case errors.As(err, &cmdErr) && command.NotFound(err):
		return hints.ForMissingTool(cmdErr.Name)
	case errors.Is(err, context.DeadlineExceeded) && timeoutFlag != "":
		return hints.ForTimeout(timeoutFlag)
	case errors.Is(err, mathsnap.ErrRenderFailed) && errors.Is(err, os.ErrPermission):
		return hints.ForOutputDirectory()
	}
	return ""
}

// triedPaths recovers the search list from a config lookup error.
func triedPaths(err error) []string {
	_, list, ok := strings.Cut(err.Error(), "tried ")
	if !ok {
		return nil
	}
	return strings.Split(list, ", ")
}

// printResult writes the outcome of a run: the artifact path or the copied
// text on stdout, failures on stderr.
func printResult(env *Environment, res *mathsnap.Result) {
	if res.Err != nil {
		printError(env.Stderr, res.Err, stageTimeoutFlag(res.State))
		return
	}

	if res.Rendered() {
		fmt.Fprintln(env.Stdout, res.Artifact.Path)
	} else {
		fmt.Fprintln(env.Stdout, res.Text)
	}

	if res.RenderErr != nil {
		printError(env.Stderr, res.RenderErr, "--render-timeout")
	}
	for _, err := range res.SinkErrs {
		fmt.Fprintf(env.Stderr, "warning: %v%s\n", err, hintFor(err, ""))
	}
}

func stageTimeoutFlag(s mathsnap.State) string {
	switch s {
	case mathsnap.StateCaptureFailed:
		return "--capture-timeout"
	case mathsnap.StateOCRFailed:
		return "--ocr-timeout"
	}
	return ""
}

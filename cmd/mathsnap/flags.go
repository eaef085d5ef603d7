package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// ErrUsage marks invalid command lines.
var ErrUsage = errors.New("usage error")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// runFlags override config values for snap and render.
type runFlags struct {
	common         commonFlags
	output         string
	review         string
	ocr            string
	renderer       string
	ocrTimeout     time.Duration
	renderTimeout  time.Duration
	captureTimeout time.Duration
	html           bool
	noNotify       bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timings")
}

// addRunFlags adds the pipeline override flags to a FlagSet.
func addRunFlags(fs *flag.FlagSet, f *runFlags) {
	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.output, "output", "o", "", "directory for rendered images")
	fs.StringVar(&f.review, "review", "", "after rendering: none, viewer, editor")
	fs.StringVar(&f.renderer, "renderer", "", "render backend: latex, browser")
	fs.DurationVar(&f.renderTimeout, "render-timeout", 0, "timeout for each render (e.g. 30s)")
	fs.BoolVar(&f.html, "html", false, "write an HTML review page next to the image")
}

// addSnapFlags adds the flags only snap understands.
func addSnapFlags(fs *flag.FlagSet, f *runFlags) {
	fs.StringVar(&f.ocr, "ocr", "", "OCR backend: mistral, tesseract")
	fs.DurationVar(&f.ocrTimeout, "ocr-timeout", 0, "timeout for the OCR call (e.g. 1m)")
	fs.DurationVar(&f.captureTimeout, "capture-timeout", 0, "timeout for the region selection (0 = none)")
	fs.BoolVar(&f.noNotify, "no-notify", false, "do not send a desktop notification")
}

// doctorFlags holds the doctor command flags.
type doctorFlags struct {
	common commonFlags
	json   bool
}

func addDoctorFlags(fs *flag.FlagSet, f *doctorFlags) {
	addCommonFlags(fs, &f.common)
	fs.BoolVar(&f.json, "json", false, "print results as JSON")
}

// newFlagSet returns a FlagSet that reports errors instead of exiting.
func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false
	return fs
}

// parseSnapFlags parses snap flags and returns positional args.
func parseSnapFlags(args []string, stderr io.Writer) (*runFlags, []string, error) {
	fs := newFlagSet("snap", stderr)
	f := &runFlags{}
	addRunFlags(fs, f)
	addSnapFlags(fs, f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if err := f.validate(); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseRenderFlags parses render flags and returns positional args.
func parseRenderFlags(args []string, stderr io.Writer) (*runFlags, []string, error) {
	fs := newFlagSet("render", stderr)
	f := &runFlags{}
	addRunFlags(fs, f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if err := f.validate(); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseCommonFlags parses commands that only take the common flags.
func parseCommonFlags(name string, args []string, stderr io.Writer) (*commonFlags, []string, error) {
	fs := newFlagSet(name, stderr)
	f := &commonFlags{}
	addCommonFlags(fs, f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return f, fs.Args(), nil
}

func (f *runFlags) validate() error {
	if f.common.quiet && f.common.verbose {
		return fmt.Errorf("%w: --quiet and --verbose are mutually exclusive", ErrUsage)
	}
	for name, d := range map[string]time.Duration{
		"--ocr-timeout":     f.ocrTimeout,
		"--render-timeout":  f.renderTimeout,
		"--capture-timeout": f.captureTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrUsage, name)
		}
	}
	return nil
}

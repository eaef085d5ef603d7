package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alnah/go-mathsnap/internal/config"
	"github.com/alnah/go-mathsnap/internal/ocr"
	"github.com/alnah/go-mathsnap/internal/yamlutil"
)

// envPrefix marks the variables read by loadEnvConfig.
const envPrefix = "MATHSNAP_"

// envConfig holds configuration from environment variables.
type envConfig struct {
	ConfigPath     string            // MATHSNAP_CONFIG: config file name or path
	OutputDir      string            // MATHSNAP_OUTPUT_DIR: rendered image directory
	OCR            string            // MATHSNAP_OCR: mistral, tesseract
	Renderer       string            // MATHSNAP_RENDERER: latex, browser
	Review         string            // MATHSNAP_REVIEW: none, viewer, editor
	OCRTimeout     yamlutil.Duration // MATHSNAP_OCR_TIMEOUT
	RenderTimeout  yamlutil.Duration // MATHSNAP_RENDER_TIMEOUT
	CaptureTimeout yamlutil.Duration // MATHSNAP_CAPTURE_TIMEOUT
	DPI            int               // MATHSNAP_DPI
	APIKey         string            // MISTRAL_API_KEY
}

// knownEnvVars lists valid MATHSNAP_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MATHSNAP_CONFIG":          true,
	"MATHSNAP_OUTPUT_DIR":      true,
	"MATHSNAP_OCR":             true,
	"MATHSNAP_RENDERER":        true,
	"MATHSNAP_REVIEW":          true,
	"MATHSNAP_OCR_TIMEOUT":     true,
	"MATHSNAP_RENDER_TIMEOUT":  true,
	"MATHSNAP_CAPTURE_TIMEOUT": true,
	"MATHSNAP_DPI":             true,
}

// loadEnvConfig reads configuration from environment variables. Malformed
// numbers and durations are errors rather than silently ignored.
func loadEnvConfig(getenv func(string) string) (*envConfig, error) {
	cfg := &envConfig{
		ConfigPath: getenv("MATHSNAP_CONFIG"),
		OutputDir:  getenv("MATHSNAP_OUTPUT_DIR"),
		OCR:        getenv("MATHSNAP_OCR"),
		Renderer:   getenv("MATHSNAP_RENDERER"),
		Review:     getenv("MATHSNAP_REVIEW"),
		APIKey:     getenv(ocr.APIKeyEnv),
	}

	for name, dst := range map[string]*yamlutil.Duration{
		"MATHSNAP_OCR_TIMEOUT":     &cfg.OCRTimeout,
		"MATHSNAP_RENDER_TIMEOUT":  &cfg.RenderTimeout,
		"MATHSNAP_CAPTURE_TIMEOUT": &cfg.CaptureTimeout,
	} {
		v := getenv(name)
		if v == "" {
			continue
		}
		d, err := yamlutil.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		*dst = d
	}

	if v := getenv("MATHSNAP_DPI"); v != "" {
		dpi, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: MATHSNAP_DPI: %q is not a number", config.ErrInvalidValue, v)
		}
		cfg.DPI = dpi
	}
	return cfg, nil
}

// warnUnknownEnvVars logs warnings for unrecognized MATHSNAP_* variables.
// Helps catch typos like MATHSNAP_RENDERERS instead of MATHSNAP_RENDERER.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig overrides config file values with set environment values.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via applyFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	setIf(&cfg.Render.OutputDir, env.OutputDir)
	setIf(&cfg.OCR.Backend, env.OCR)
	setIf(&cfg.Render.Backend, env.Renderer)
	setIf(&cfg.Review.Mode, env.Review)
	setIf(&cfg.OCR.APIKey, env.APIKey)

	if env.OCRTimeout != 0 {
		cfg.OCR.Timeout = env.OCRTimeout
	}
	if env.RenderTimeout != 0 {
		cfg.Render.Timeout = env.RenderTimeout
	}
	if env.CaptureTimeout != 0 {
		cfg.Capture.Timeout = env.CaptureTimeout
	}
	if env.DPI != 0 {
		cfg.Render.DPI = env.DPI
	}
}

// applyFlags overrides config values with explicitly set flags.
func applyFlags(f *runFlags, cfg *config.Config) {
	setIf(&cfg.Render.OutputDir, f.output)
	setIf(&cfg.Review.Mode, f.review)
	setIf(&cfg.OCR.Backend, f.ocr)
	setIf(&cfg.Render.Backend, f.renderer)

	if f.ocrTimeout > 0 {
		cfg.OCR.Timeout = yamlutil.Duration(f.ocrTimeout)
	}
	if f.renderTimeout > 0 {
		cfg.Render.Timeout = yamlutil.Duration(f.renderTimeout)
	}
	if f.captureTimeout > 0 {
		cfg.Capture.Timeout = yamlutil.Duration(f.captureTimeout)
	}
	if f.html {
		cfg.Render.HTML = true
	}
	if f.noNotify {
		cfg.Notify.Disabled = true
	}
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// resolveConfig loads the config named by the flag or MATHSNAP_CONFIG (or
// the defaults), then applies the environment. The result is validated with
// defaults applied; callers applying flags must validate again.
func resolveConfig(flagConfig string, env *Environment) (*config.Config, error) {
	warnUnknownEnvVars(env.Stderr, env.Environ())

	ec, err := loadEnvConfig(env.Getenv)
	if err != nil {
		return nil, err
	}

	name := flagConfig
	if name == "" {
		name = ec.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		if cfg, err = config.LoadConfig(name); err != nil {
			return nil, err
		}
	}

	applyEnvConfig(ec, cfg)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

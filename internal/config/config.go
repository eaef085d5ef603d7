package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-mathsnap/internal/dateutil"
	"github.com/alnah/go-mathsnap/internal/palette"
	"github.com/alnah/go-mathsnap/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppDir is the directory under the user config dir searched for named configs.
const AppDir = "mathsnap"

// Field length limits.
const (
	MaxPathLength   = 4096
	MaxURLLength    = 2048
	MaxAPIKeyLength = 256
	MaxNameLength   = 100
	MaxArgLength    = 1024
	MaxArgs         = 32
	MaxColorLength  = 20
	MaxLanguageLen  = 50
	MinDPI          = 50
	MaxDPI          = 2400
	MaxTimeout      = time.Hour
)

// Backend and mode names.
const (
	OCRMistral      = "mistral"
	OCRTesseract    = "tesseract"
	RendererLaTeX   = "latex"
	RendererBrowser = "browser"
	ReviewNone      = "none"
	ReviewViewer    = "viewer"
	ReviewEditor    = "editor"
)

// Default timeouts.
const (
	DefaultOCRTimeout    = 60 * time.Second
	DefaultRenderTimeout = 30 * time.Second
)

// Config holds everything a run needs. Zero fields fall back to defaults.
type Config struct {
	Capture   CaptureConfig   `yaml:"capture"`
	OCR       OCRConfig       `yaml:"ocr"`
	Render    RenderConfig    `yaml:"render"`
	Clipboard ClipboardConfig `yaml:"clipboard"`
	Notify    NotifyConfig    `yaml:"notify"`
	Review    ReviewConfig    `yaml:"review"`
}

// CaptureConfig selects the screenshot tool.
type CaptureConfig struct {
	Command []string          `yaml:"command,omitempty"` // argv writing a PNG to stdout
	Timeout yamlutil.Duration `yaml:"timeout,omitempty"` // 0 = wait for the user indefinitely
	TempDir string            `yaml:"tempDir,omitempty"`
}

// OCRConfig selects and configures the text recognizer.
type OCRConfig struct {
	Backend  string            `yaml:"backend,omitempty"` // "mistral" or "tesseract"
	APIKey   string            `yaml:"apiKey,omitempty"`
	Endpoint string            `yaml:"endpoint,omitempty"`
	Model    string            `yaml:"model,omitempty"`
	Language string            `yaml:"language,omitempty"` // tesseract only
	Timeout  yamlutil.Duration `yaml:"timeout,omitempty"`
}

// RenderConfig controls how notation becomes an image.
type RenderConfig struct {
	Backend    string            `yaml:"backend,omitempty"` // "latex" or "browser"
	OutputDir  string            `yaml:"outputDir,omitempty"`
	NameFormat string            `yaml:"nameFormat,omitempty"` // dateutil pattern or preset name
	DPI        int               `yaml:"dpi,omitempty"`
	Foreground string            `yaml:"foreground,omitempty"` // hex colour
	Background string            `yaml:"background,omitempty"`
	Timeout    yamlutil.Duration `yaml:"timeout,omitempty"`
	Latex      string            `yaml:"latex,omitempty"`
	Dvipng     string            `yaml:"dvipng,omitempty"`
	KaTeXURL   string            `yaml:"katexURL,omitempty"`
	HTML       bool              `yaml:"html,omitempty"`      // write a review page next to the image
	HTMLStyle  string            `yaml:"htmlStyle,omitempty"` // chroma style for the review page
	AssetsDir  string            `yaml:"assetsDir,omitempty"` // overrides for styles/ and templates/
}

// ClipboardConfig overrides the detected clipboard tool.
type ClipboardConfig struct {
	Command []string `yaml:"command,omitempty"`
}

// NotifyConfig controls desktop notifications.
type NotifyConfig struct {
	Disabled bool   `yaml:"disabled,omitempty"`
	AppName  string `yaml:"appName,omitempty"`
	Command  string `yaml:"command,omitempty"`
}

// ReviewConfig selects what happens after a successful render.
type ReviewConfig struct {
	Mode   string   `yaml:"mode,omitempty"`   // "none", "viewer" or "editor"
	Viewer []string `yaml:"viewer,omitempty"` // overrides xdg-open / open
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults lower-cases enum fields and fills zero fields with their
// defaults.
func (c *Config) ApplyDefaults() {
	c.OCR.Backend = strings.ToLower(c.OCR.Backend)
	c.Render.Backend = strings.ToLower(c.Render.Backend)
	c.Review.Mode = strings.ToLower(c.Review.Mode)

	setDefault(&c.OCR.Backend, OCRMistral)
	setDefault(&c.Render.Backend, RendererLaTeX)
	setDefault(&c.Render.OutputDir, "~/Pictures/latex-renders")
	setDefault(&c.Render.NameFormat, dateutil.DefaultFileStamp)
	setDefault(&c.Render.Foreground, palette.DefaultForeground)
	setDefault(&c.Render.Background, palette.DefaultBackground)
	setDefault(&c.Review.Mode, ReviewViewer)
	if c.Render.DPI == 0 {
		c.Render.DPI = 300
	}
	if c.OCR.Timeout == 0 {
		c.OCR.Timeout = yamlutil.Duration(DefaultOCRTimeout)
	}
	if c.Render.Timeout == 0 {
		c.Render.Timeout = yamlutil.Duration(DefaultRenderTimeout)
	}
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// NameLayout resolves NameFormat, which may be a dateutil preset name.
func (r RenderConfig) NameLayout() string {
	if p, ok := dateutil.Presets[r.NameFormat]; ok {
		return p
	}
	return r.NameFormat
}

// Validate checks enums, ranges, colours and field lengths.
// Called automatically by LoadConfig, but available for callers
// who build or merge a Config themselves.
func (c *Config) Validate() error {
	if err := validateArgv("capture.command", c.Capture.Command); err != nil {
		return err
	}
	if err := validateTimeout("capture.timeout", c.Capture.Timeout); err != nil {
		return err
	}
	if err := validateFieldLength("capture.tempDir", c.Capture.TempDir, MaxPathLength); err != nil {
		return err
	}

	if err := validateEnum("ocr.backend", c.OCR.Backend, OCRMistral, OCRTesseract); err != nil {
		return err
	}
	if err := validateFieldLength("ocr.apiKey", c.OCR.APIKey, MaxAPIKeyLength); err != nil {
		return err
	}
	if err := validateFieldLength("ocr.endpoint", c.OCR.Endpoint, MaxURLLength); err != nil {
		return err
	}
	if err := validateFieldLength("ocr.model", c.OCR.Model, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("ocr.language", c.OCR.Language, MaxLanguageLen); err != nil {
		return err
	}
	if err := validateTimeout("ocr.timeout", c.OCR.Timeout); err != nil {
		return err
	}

	if err := validateEnum("render.backend", c.Render.Backend, RendererLaTeX, RendererBrowser); err != nil {
		return err
	}
	if err := validateFieldLength("render.outputDir", c.Render.OutputDir, MaxPathLength); err != nil {
		return err
	}
	if c.Render.NameFormat != "" {
		if _, err := dateutil.FileStamp(c.Render.NameLayout(), time.Now()); err != nil {
			return fmt.Errorf("%w: render.nameFormat: %w", ErrInvalidValue, err)
		}
	}
	if c.Render.DPI != 0 && (c.Render.DPI < MinDPI || c.Render.DPI > MaxDPI) {
		return fmt.Errorf("%w: render.dpi: must be between %d and %d, got %d", ErrInvalidValue, MinDPI, MaxDPI, c.Render.DPI)
	}
	for _, f := range []struct{ name, value string }{
		{"render.foreground", c.Render.Foreground},
		{"render.background", c.Render.Background},
	} {
		if err := validateFieldLength(f.name, f.value, MaxColorLength); err != nil {
			return err
		}
		if f.value == "" {
			continue
		}
		if _, err := palette.Parse(f.value); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidValue, f.name, err)
		}
	}
	if err := validateTimeout("render.timeout", c.Render.Timeout); err != nil {
		return err
	}
	for _, f := range []struct{ name, value string }{
		{"render.latex", c.Render.Latex},
		{"render.dvipng", c.Render.Dvipng},
		{"render.katexURL", c.Render.KaTeXURL},
		{"render.assetsDir", c.Render.AssetsDir},
	} {
		if err := validateFieldLength(f.name, f.value, MaxPathLength); err != nil {
			return err
		}
	}
	if err := validateFieldLength("render.htmlStyle", c.Render.HTMLStyle, MaxNameLength); err != nil {
		return err
	}

	if err := validateArgv("clipboard.command", c.Clipboard.Command); err != nil {
		return err
	}

	if err := validateFieldLength("notify.appName", c.Notify.AppName, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("notify.command", c.Notify.Command, MaxPathLength); err != nil {
		return err
	}

	if err := validateEnum("review.mode", c.Review.Mode, ReviewNone, ReviewViewer, ReviewEditor); err != nil {
		return err
	}
	return validateArgv("review.viewer", c.Review.Viewer)
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateEnum accepts empty values so partially filled configs validate.
func validateEnum(fieldName, value string, allowed ...string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s: %q (must be %s)", ErrInvalidValue, fieldName, value, strings.Join(allowed, ", "))
}

func validateTimeout(fieldName string, d yamlutil.Duration) error {
	if d < 0 || d.Std() > MaxTimeout {
		return fmt.Errorf("%w: %s: must be between 0 and %s, got %s", ErrInvalidValue, fieldName, MaxTimeout, d.Std())
	}
	return nil
}

func validateArgv(fieldName string, argv []string) error {
	if len(argv) == 0 {
		return nil
	}
	if len(argv) > MaxArgs {
		return fmt.Errorf("%w: %s (%d args, max %d)", ErrFieldTooLong, fieldName, len(argv), MaxArgs)
	}
	if strings.TrimSpace(argv[0]) == "" {
		return fmt.Errorf("%w: %s: program name is empty", ErrInvalidValue, fieldName)
	}
	for i, a := range argv {
		if err := validateFieldLength(fmt.Sprintf("%s[%d]", fieldName, i), a, MaxArgLength); err != nil {
			return err
		}
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
// The result has defaults applied and is validated.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// Dump renders c as YAML.
func (c *Config) Dump() (string, error) {
	redacted := *c
	if redacted.OCR.APIKey != "" {
		redacted.OCR.APIKey = "********"
	}
	out, err := yamlutil.Marshal(&redacted)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/mathsnap/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, AppDir, name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

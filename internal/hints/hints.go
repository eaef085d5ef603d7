// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-mathsnap/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// Package names for tools that are not their own package.
var packages = map[string]struct{ apt, pacman string }{
	"flameshot":   {"flameshot", "flameshot"},
	"xclip":       {"xclip", "xclip"},
	"wl-copy":     {"wl-clipboard", "wl-clipboard"},
	"notify-send": {"libnotify-bin", "libnotify"},
	"xdg-open":    {"xdg-utils", "xdg-utils"},
	"latex":       {"texlive-latex-base", "texlive-basic"},
	"dvipng":      {"dvipng", "texlive-binextra"},
}

// Install returns the apt and pacman commands that provide tool, or "" when
// the tool is unknown.
func Install(tool string) string {
	p, ok := packages[tool]
	if !ok {
		return ""
	}
	return "sudo apt install " + p.apt + " (Debian/Ubuntu) or sudo pacman -S " + p.pacman + " (Arch)"
}

// ForMissingTool returns the install hint for tool.
func ForMissingTool(tool string) string {
	install := Install(tool)
	if install == "" {
		return format("make sure " + tool + " is installed and on PATH")
	}
	return format("install " + tool + ": " + install)
}

// ForAPIKey returns the hint shown when the OCR API key is missing or rejected.
func ForAPIKey(envVar string) string {
	return format("set " + envVar + " or ocr.apiKey in the config file")
}

// ForTesseract returns the hint for a binary built without local OCR.
func ForTesseract() string {
	return format("rebuild with -tags tesseract (needs libtesseract-dev) or use --ocr mistral")
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}
	hints = append(hints, "or use --renderer latex")

	return formatHints(hints)
}

// ForTimeout returns a hint about raising the timeout behind flag.
func ForTimeout(flag string) string {
	return format("slow service or large capture? raise it with " + flag)
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/mathsnap/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/mathsnap") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check the parent of render.outputDir exists and is writable")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/alnah/go-mathsnap/internal/assets"
	"github.com/alnah/go-mathsnap/internal/capture"
	"github.com/alnah/go-mathsnap/internal/command"
	"github.com/alnah/go-mathsnap/internal/config"
	"github.com/alnah/go-mathsnap/internal/desktop"
	"github.com/alnah/go-mathsnap/internal/fileutil"
	"github.com/alnah/go-mathsnap/internal/hints"
	"github.com/alnah/go-mathsnap/internal/ocr"
	"github.com/go-rod/rod/lib/launcher"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Tools    []toolInfo `json:"tools"`
	Chrome   chromeInfo `json:"chrome"`
	OCR      ocrInfo    `json:"ocr"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// toolInfo is the lookup result for one external program.
type toolInfo struct {
	Name    string `json:"name"`
	Purpose string `json:"purpose"`
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Needed  bool   `json:"needed"`
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// ocrInfo describes the configured OCR backend.
type ocrInfo struct {
	Backend   string `json:"backend"`
	APIKeySet bool   `json:"api_key_set"`
	Tesseract bool   `json:"tesseract_compiled"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	Wayland       bool   `json:"wayland"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable   bool   `json:"temp_writable"`
	OutputDir      string `json:"output_dir"`
	OutputWritable bool   `json:"output_writable"`
	AssetsDir      string `json:"assets_dir,omitempty"`
	AssetsValid    bool   `json:"assets_valid,omitempty"`
}

// doctorProbe holds the lookups doctor performs, replaceable in tests.
type doctorProbe struct {
	goos       string
	getenv     func(string) string
	lookPath   func(string) (string, error)
	findChrome func() (string, bool)
	runner     command.Runner
	tempDir    string
}

func defaultProbe(env *Environment) *doctorProbe {
	return &doctorProbe{
		goos:       runtime.GOOS,
		getenv:     env.Getenv,
		lookPath:   exec.LookPath,
		findChrome: launcher.LookPath,
		runner:     &command.ExecRunner{},
		tempDir:    os.TempDir(),
	}
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	return runDoctorWith(args, env, defaultProbe(env))
}

func runDoctorWith(args []string, env *Environment, probe *doctorProbe) int {
	fs := newFlagSet("doctor", env.Stderr)
	var f doctorFlags
	addDoctorFlags(fs, &f)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(env.Stderr, "error: %v: %v\n", ErrUsage, err)
		return ExitUsage
	}

	cfg, cfgErr := resolveConfig(f.common.config, env)
	if cfgErr != nil {
		cfg = config.DefaultConfig()
		cfg.Render.OutputDir = "" // unknown; not created
	}

	result := runDoctor(cfg, probe)
	if cfgErr != nil {
		result.Errors = append(result.Errors, "Config: "+cfgErr.Error())
		result.Status = statusErrors
	}

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks against cfg.
func runDoctor(cfg *config.Config, probe *doctorProbe) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         probe.goos,
			Arch:       runtime.GOARCH,
			Wayland:    probe.getenv("WAYLAND_DISPLAY") != "",
			NoSandbox:  probe.getenv("ROD_NO_SANDBOX"),
			BrowserBin: probe.getenv("ROD_BROWSER_BIN"),
		},
	}

	checkTools(cfg, probe, result)
	checkChrome(cfg, probe, result)
	checkOCR(cfg, result)
	checkEnvironment(probe, result)
	checkSystem(cfg, probe, result)
	checkAssets(cfg, result)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}

	return result
}

// checkTools looks up every external program the configured run would start.
// Capture, clipboard and the LaTeX toolchain are required; notifications and
// the viewer only degrade the run.
func checkTools(cfg *config.Config, probe *doctorProbe, result *doctorResult) {
	find := func(name, purpose string) bool {
		info := toolInfo{Name: name, Purpose: purpose}
		if p, err := probe.lookPath(name); err == nil {
			info.Found, info.Path = true, p
		}
		result.Tools = append(result.Tools, info)
		return info.Found
	}

	captureCmd := cfg.Capture.Command
	if len(captureCmd) == 0 {
		captureCmd = capture.DefaultCommand
	}
	if !find(captureCmd[0], "screen capture") {
		result.Errors = append(result.Errors, missingTool(captureCmd[0]))
	}

	candidates := [][]string{cfg.Clipboard.Command}
	if len(cfg.Clipboard.Command) == 0 {
		candidates = desktop.ClipboardCommands(probe.goos, probe.getenv)
	}
	clipboardFound := false
	var tried []string
	for _, argv := range candidates {
		tried = append(tried, argv[0])
		if find(argv[0], "clipboard") {
			clipboardFound = true
			break
		}
	}
	if !clipboardFound {
		result.Errors = append(result.Errors,
			fmt.Sprintf("No clipboard tool found (tried %s)%s", strings.Join(tried, ", "), hints.ForMissingTool(tried[0])))
	}

	if cfg.Render.Backend == config.RendererLaTeX {
		for _, name := range []string{or(cfg.Render.Latex, "latex"), or(cfg.Render.Dvipng, "dvipng")} {
			if !find(name, "LaTeX rendering") {
				result.Errors = append(result.Errors, missingTool(name))
			}
		}
	}

	if !cfg.Notify.Disabled {
		name := cfg.Notify.Command
		if name == "" {
			name = "notify-send"
			if probe.goos == "darwin" {
				name = "osascript"
			}
		}
		if !find(name, "notifications") {
			result.Warnings = append(result.Warnings, missingTool(name))
		}
	}

	if cfg.Review.Mode == config.ReviewViewer {
		viewer := cfg.Review.Viewer
		if len(viewer) == 0 {
			viewer = desktop.OpenCommand(probe.goos)
		}
		if !find(viewer[0], "image viewer") {
			result.Warnings = append(result.Warnings, missingTool(viewer[0]))
		}
	}
}

func missingTool(name string) string {
	return name + " not found" + hints.ForMissingTool(name)
}

// checkChrome detects Chrome/Chromium installation. A missing browser is an
// error only when the browser renderer is selected.
func checkChrome(cfg *config.Config, probe *doctorProbe, result *doctorResult) {
	result.Chrome.Needed = cfg.Render.Backend == config.RendererBrowser
	report := func(msg string) {
		if result.Chrome.Needed {
			result.Errors = append(result.Errors, msg+hints.ForBrowserConnect())
		} else {
			result.Warnings = append(result.Warnings, msg+" (only needed for --renderer browser)")
		}
	}

	chromePath := result.Env.BrowserBin
	if chromePath == "" {
		// Use rod's launcher to locate Chrome
		var found bool
		chromePath, found = probe.findChrome()
		if !found {
			report("Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	// Verify it exists
	if _, err := os.Stat(chromePath); err != nil {
		report(fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	res, err := probe.runner.Run(ctx, command.Cmd{Name: chromePath, Args: []string{"--version"}})
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(res.Stdout))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	// Sandbox status: disabled if ROD_NO_SANDBOX=1
	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkOCR verifies the selected backend can run.
func checkOCR(cfg *config.Config, result *doctorResult) {
	result.OCR = ocrInfo{
		Backend:   cfg.OCR.Backend,
		APIKeySet: strings.TrimSpace(cfg.OCR.APIKey) != "",
		Tesseract: ocr.TesseractAvailable,
	}

	switch cfg.OCR.Backend {
	case config.OCRTesseract:
		if !result.OCR.Tesseract {
			result.Errors = append(result.Errors, ocr.ErrTesseractUnavailable.Error()+hints.ForTesseract())
		}
	default:
		if !result.OCR.APIKeySet {
			result.Errors = append(result.Errors, ocr.APIKeyEnv+" not set"+hints.ForAPIKey(ocr.APIKeyEnv))
		}
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(probe *doctorProbe, result *doctorResult) {
	// Detect container (multi-signal approach)
	result.Env.Container, result.Env.ContainerHint = isContainer(probe.getenv)

	// Detect CI environments
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if probe.getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	// Warn if container/CI without sandbox disabled
	if result.Chrome.Needed && (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
	if result.Env.Container || result.Env.CI {
		result.Warnings = append(result.Warnings,
			"No desktop session expected here: capture, clipboard and notifications need one")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(getenv func(string) string) (bool, string) {
	// Explicit override (highest priority)
	if getenv("MATHSNAP_CONTAINER") == "1" {
		return true, "MATHSNAP_CONTAINER=1"
	}
	// Docker
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn / general container indicator
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	// Kubernetes
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp and output directories are writable.
func checkSystem(cfg *config.Config, probe *doctorProbe, result *doctorResult) {
	result.System.TempWritable = probeWritable(probe.tempDir)
	if !result.System.TempWritable {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", probe.tempDir))
	}

	if cfg.Render.OutputDir == "" {
		return
	}
	dir, err := fileutil.ExpandHome(cfg.Render.OutputDir)
	if err != nil {
		dir = cfg.Render.OutputDir
	}
	result.System.OutputDir = dir
	if err := fileutil.EnsureDir(dir); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Output directory %s: %v%s", dir, err, hints.ForOutputDirectory()))
		return
	}
	result.System.OutputWritable = probeWritable(dir)
	if !result.System.OutputWritable {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Output directory not writable: %s%s", dir, hints.ForOutputDirectory()))
	}
}

// checkAssets verifies the override directory, when set, can serve the
// review and KaTeX templates.
func checkAssets(cfg *config.Config, result *doctorResult) {
	if cfg.Render.AssetsDir == "" {
		return
	}
	dir, err := fileutil.ExpandHome(cfg.Render.AssetsDir)
	if err != nil {
		dir = cfg.Render.AssetsDir
	}
	result.System.AssetsDir = dir

	loader, err := assets.NewAssetResolver(dir)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Assets directory: %v", err))
		return
	}
	for _, name := range []string{assets.TemplateReview, assets.TemplateKaTeX} {
		if _, err := loader.LoadTemplate(name); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Assets directory: %v", err))
			return
		}
	}
	if _, err := loader.LoadStyle(assets.StyleReview); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Assets directory: %v", err))
		return
	}
	result.System.AssetsValid = true
}

func probeWritable(dir string) bool {
	testFile := filepath.Join(dir, ".mathsnap-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return false
	}
	_ = os.Remove(testFile)
	return true
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "mathsnap doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Tools")
	for _, t := range r.Tools {
		if t.Found {
			fmt.Fprintf(w, "  [OK] %s (%s): %s\n", t.Name, t.Purpose, t.Path)
		} else {
			fmt.Fprintf(w, "  [MISSING] %s (%s)\n", t.Name, t.Purpose)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "OCR")
	fmt.Fprintf(w, "  [OK] Backend: %s\n", r.OCR.Backend)
	if r.OCR.Backend == config.OCRTesseract {
		if r.OCR.Tesseract {
			fmt.Fprintln(w, "  [OK] Tesseract: compiled in")
		} else {
			fmt.Fprintln(w, "  [ERROR] Tesseract: not compiled in")
		}
	} else if r.OCR.APIKeySet {
		fmt.Fprintln(w, "  [OK] API key: set")
	} else {
		fmt.Fprintln(w, "  [ERROR] API key: not set")
	}
	fmt.Fprintln(w)

	// Chrome section
	fmt.Fprintln(w, "Chrome/Chromium")
	switch {
	case r.Chrome.Found:
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	case r.Chrome.Needed:
		fmt.Fprintln(w, "  [ERROR] Not found")
	default:
		fmt.Fprintln(w, "  [WARN] Not found (latex renderer selected)")
	}
	fmt.Fprintln(w)

	// Environment section
	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Wayland {
		fmt.Fprintln(w, "  [OK] Session: Wayland")
	}
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	// System section
	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	switch {
	case r.System.OutputDir == "":
	case r.System.OutputWritable:
		fmt.Fprintf(w, "  [OK] Output directory: %s\n", r.System.OutputDir)
	default:
		fmt.Fprintf(w, "  [ERROR] Output directory: %s not writable\n", r.System.OutputDir)
	}
	switch {
	case r.System.AssetsDir == "":
	case r.System.AssetsValid:
		fmt.Fprintf(w, "  [OK] Assets directory: %s\n", r.System.AssetsDir)
	default:
		fmt.Fprintf(w, "  [ERROR] Assets directory: %s unusable\n", r.System.AssetsDir)
	}
	fmt.Fprintln(w)

	// Warnings
	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	// Errors
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	// Final status
	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to snap")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	mathsnap "github.com/alnah/go-mathsnap"
	"github.com/alnah/go-mathsnap/internal/assets"
	"github.com/alnah/go-mathsnap/internal/fileutil"
	"github.com/alnah/go-mathsnap/internal/palette"
	"github.com/alnah/go-mathsnap/internal/process"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultKaTeXURL is where the KaTeX assets are loaded from.
const DefaultKaTeXURL = "https://cdn.jsdelivr.net/npm/katex@0.16.11/dist"

// defaultPageTimeout applies when ctx has no deadline.
const defaultPageTimeout = 30 * time.Second

// Sentinel errors for the browser backend.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageLoad       = errors.New("failed to load render page")
)

// Browser renders math with KaTeX in headless Chrome.
// Rod downloads Chromium on first use if none is installed.
type Browser struct {
	Output   Output
	KaTeXURL string             // defaults to DefaultKaTeXURL
	Assets   assets.AssetLoader // source of the katex template; nil means built-in

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// Compile-time interface check.
var _ mathsnap.Renderer = (*Browser)(nil)

// NewBrowser returns a Browser renderer. Call Close to stop Chrome.
func NewBrowser(out Output) *Browser {
	return &Browser{Output: out}
}

// ensureBrowser lazily launches and connects to Chrome.
func (b *Browser) ensureBrowser() error {
	if b.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	b.launcher = l
	b.browser = browser
	return nil
}

// Close stops Chrome and any helper processes it started.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	if pid := b.launcher.PID(); pid > 0 {
		process.KillProcessGroup(pid)
	}
	b.launcher.Kill()
	b.browser = nil
	b.launcher = nil
	return err
}

// Render typesets the math of document and screenshots it.
func (b *Browser) Render(ctx context.Context, document string) (mathsnap.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return mathsnap.Artifact{}, &mathsnap.RenderError{Err: err}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureBrowser(); err != nil {
		return mathsnap.Artifact{}, &mathsnap.RenderError{Err: err}
	}

	source, mode := MathSource(mathsnap.FragmentOf(document))
	doc, err := b.page(source, mode)
	if err != nil {
		return mathsnap.Artifact{}, &mathsnap.RenderError{Err: err}
	}
	htmlPath, cleanup, err := fileutil.WriteTempFile(doc, "html")
	if err != nil {
		return mathsnap.Artifact{}, &mathsnap.RenderError{Err: err}
	}
	defer cleanup()

	png, err := b.shoot(ctx, htmlPath)
	if err != nil {
		return mathsnap.Artifact{}, err
	}

	out, err := b.Output.NewPath()
	if err != nil {
		return mathsnap.Artifact{}, &mathsnap.RenderError{Err: err}
	}
	// #nosec G306 -- images are meant to be readable
	if err := os.WriteFile(out, png, 0o644); err != nil {
		return mathsnap.Artifact{}, &mathsnap.RenderError{Err: fmt.Errorf("writing image: %w", err)}
	}
	return mathsnap.Artifact{Path: out}, nil
}

func (b *Browser) shoot(ctx context.Context, htmlPath string) ([]byte, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{URL: "file://" + htmlPath})
	if err != nil {
		return nil, &mathsnap.RenderError{Err: fmt.Errorf("%w: %v", ErrPageLoad, err)}
	}
	defer page.Close()

	timeout := defaultPageTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, &mathsnap.RenderError{Err: context.DeadlineExceeded}
		}
	}
	page = page.Context(ctx).Timeout(timeout)

	if err := page.WaitLoad(); err != nil {
		return nil, &mathsnap.RenderError{Err: fmt.Errorf("%w: %v", ErrPageLoad, err)}
	}

	status, err := page.Eval(`() => document.body.dataset.status || ""`)
	if err != nil {
		return nil, &mathsnap.RenderError{Err: fmt.Errorf("%w: %v", ErrPageLoad, err)}
	}
	if s := status.Value.Str(); s != "ok" {
		if s == "" {
			s = "KaTeX did not load"
		}
		return nil, &mathsnap.RenderError{Diagnostic: s, Err: errors.New("KaTeX rejected the input")}
	}

	el, err := page.Element("#math")
	if err != nil {
		return nil, &mathsnap.RenderError{Err: err}
	}
	png, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, &mathsnap.RenderError{Err: fmt.Errorf("screenshot: %w", err)}
	}
	return png, nil
}

// katexPage fills the KaTeX template. Source and Options land in an inline
// script, where html/template encodes them as JS values. Text selects the
// auto-render path for prose with embedded math.
type katexPage struct {
	KaTeXURL   string
	Foreground template.CSS
	Background template.CSS
	FontSize   template.CSS
	Source     string
	Text       bool
	Options    map[string]any
}

// page builds the HTML that renders source with KaTeX and reports the
// outcome in body[data-status].
func (b *Browser) page(source string, mode MathMode) (string, error) {
	loader := b.Assets
	if loader == nil {
		loader = assets.Default()
	}
	layout, err := loader.LoadTemplate(assets.TemplateKaTeX)
	if err != nil {
		return "", err
	}
	tmpl, err := template.New(assets.TemplateKaTeX).Parse(layout)
	if err != nil {
		return "", fmt.Errorf("parsing KaTeX template: %w", err)
	}

	options := map[string]any{"displayMode": mode == ModeDisplay, "throwOnError": true}
	if mode == ModeText {
		options = map[string]any{"delimiters": mathDelimiters, "throwOnError": true}
	}

	var out bytes.Buffer
	// #nosec G203 -- colours come from palette.CSS and the size is numeric
	err = tmpl.Execute(&out, katexPage{
		KaTeXURL:   strings.TrimRight(or(b.KaTeXURL, DefaultKaTeXURL), "/"),
		Foreground: template.CSS(palette.CSS(b.Output.foreground())),
		Background: template.CSS(palette.CSS(b.Output.background())),
		FontSize:   template.CSS(strconv.FormatFloat(float64(b.Output.dpi())/96, 'f', 2, 64) + "em"),
		Source:     source,
		Text:       mode == ModeText,
		Options:    options,
	})
	if err != nil {
		return "", fmt.Errorf("executing KaTeX template: %w", err)
	}
	return out.String(), nil
}

// MathMode selects how the KaTeX page typesets its source.
type MathMode int

const (
	ModeDisplay MathMode = iota // katex.render, display style
	ModeInline                  // katex.render, inline style
	ModeText                    // prose with delimited math, via auto-render
)

// delimiter is one math delimiter pair, in the shape auto-render expects.
type delimiter struct {
	Left    string `json:"left"`
	Right   string `json:"right"`
	Display bool   `json:"display"`
}

// mathDelimiters lists the delimiters KaTeX does not accept inside its
// source. $$ precedes $ so the longer match wins.
var mathDelimiters = []delimiter{
	{`$$`, `$$`, true},
	{`\[`, `\]`, true},
	{`\(`, `\)`, false},
	{`$`, `$`, false},
}

// MathSource prepares fragment for KaTeX. One pair of outer delimiters is
// stripped when nothing of the same kind remains inside. Fragments that
// still hold delimiters are prose with embedded math and go to ModeText
// unchanged. Anything else, environments included, is display math.
func MathSource(fragment string) (string, MathMode) {
	f := strings.TrimSpace(fragment)
	for _, d := range mathDelimiters {
		if len(f) < len(d.Left)+len(d.Right) || !strings.HasPrefix(f, d.Left) || !strings.HasSuffix(f, d.Right) {
			continue
		}
		end := len(f) - len(d.Right)
		if escaped(f, end) {
			continue
		}
		inner := f[len(d.Left):end]
		if hasDelimiter(inner, d.Left) || hasDelimiter(inner, d.Right) {
			continue
		}
		mode := ModeInline
		if d.Display {
			mode = ModeDisplay
		}
		return strings.TrimSpace(inner), mode
	}
	for _, d := range mathDelimiters {
		if hasDelimiter(f, d.Left) {
			return f, ModeText
		}
	}
	return f, ModeDisplay
}

// hasDelimiter reports whether s holds delim at a position not escaped by a
// backslash.
func hasDelimiter(s, delim string) bool {
	for i := 0; i < len(s); {
		j := strings.Index(s[i:], delim)
		if j < 0 {
			return false
		}
		if !escaped(s, i+j) {
			return true
		}
		i += j + 1
	}
	return false
}

// escaped reports whether the byte at i follows an odd run of backslashes.
func escaped(s string, i int) bool {
	n := 0
	for k := i - 1; k >= 0 && s[k] == '\\'; k-- {
		n++
	}
	return n%2 == 1
}

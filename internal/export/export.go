// Package export writes an HTML review page next to a rendered image: the
// image itself, the highlighted LaTeX source and the text OCR returned.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/alnah/go-mathsnap/internal/assets"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	goldhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates the review page could not be generated.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// DefaultStyle is the chroma style used for the LaTeX source.
const DefaultStyle = "github"

// Page is the content of one review page.
type Page struct {
	Title    string
	Image    string // path of the rendered PNG; may be empty
	Fragment string // LaTeX sent to the renderer
	Text     string // raw OCR output
}

// Exporter converts review pages to HTML. The page layout comes from the
// "review" template and style of its asset loader.
type Exporter struct {
	md     goldmark.Markdown
	style  string
	assets assets.AssetLoader
}

// New returns an Exporter using the named chroma style, or DefaultStyle,
// and the built-in page assets. Unknown names fall back to chroma's default
// style.
func New(style string) *Exporter {
	return NewWithAssets(style, nil)
}

// NewWithAssets is New with page assets from loader; nil means built-in.
func NewWithAssets(style string, loader assets.AssetLoader) *Exporter {
	if loader == nil {
		loader = assets.Default()
	}
	if style == "" {
		style = DefaultStyle
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true), // styles come from the page's <style> block
				),
			),
		),
		goldmark.WithRendererOptions(
			goldhtml.WithXHTML(),
		),
	)
	return &Exporter{md: md, style: style, assets: loader}
}

// Markdown returns the page body as Markdown. The image is referenced by
// base name since the page is written beside it.
func (p Page) Markdown() string {
	var b strings.Builder
	b.WriteString("# " + escapeInline(p.title()) + "\n\n")
	if p.Image != "" {
		fmt.Fprintf(&b, "![rendered LaTeX](<%s>)\n\n", filepath.Base(p.Image))
	}
	if p.Fragment != "" {
		b.WriteString("## LaTeX source\n\n")
		writeFence(&b, "latex", p.Fragment)
	}
	if p.Text != "" && p.Text != p.Fragment {
		b.WriteString("## Extracted text\n\n")
		writeFence(&b, "text", p.Text)
	}
	return b.String()
}

func (p Page) title() string {
	if t := strings.TrimSpace(p.Title); t != "" {
		return t
	}
	if p.Image != "" {
		return strings.TrimSuffix(filepath.Base(p.Image), filepath.Ext(p.Image))
	}
	return "LaTeX render"
}

// writeFence writes body in a fenced code block longer than any backtick run
// inside it.
func writeFence(b *strings.Builder, lang, body string) {
	fence := "```"
	for strings.Contains(body, fence) {
		fence += "`"
	}
	fmt.Fprintf(b, "%s%s\n%s\n%s\n\n", fence, lang, strings.TrimRight(body, "\n"), fence)
}

// escapeInline backslash-escapes Markdown punctuation in a heading.
func escapeInline(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune("\\`*_{}[]()#+-.!<>|~$", r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToHTML renders p as a standalone HTML document.
// Goldmark has no context support, so conversion runs in a goroutine.
func (e *Exporter) ToHTML(ctx context.Context, p Page) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var body bytes.Buffer
		if err := e.md.Convert([]byte(p.Markdown()), &body); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		doc, err := e.page(p.title(), body.String())
		if err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: doc}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// reviewData fills the review template. Style and Highlight are CSS,
// Body is goldmark output; Title is escaped by the template.
type reviewData struct {
	Title     string
	Style     template.CSS
	Highlight template.CSS
	Body      template.HTML
}

func (e *Exporter) page(title, body string) (string, error) {
	layout, err := e.assets.LoadTemplate(assets.TemplateReview)
	if err != nil {
		return "", err
	}
	style, err := e.assets.LoadStyle(assets.StyleReview)
	if err != nil {
		return "", err
	}
	tmpl, err := template.New(assets.TemplateReview).Parse(layout)
	if err != nil {
		return "", fmt.Errorf("parsing review template: %w", err)
	}

	var highlight bytes.Buffer
	if err := chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(&highlight, styles.Get(e.style)); err != nil {
		return "", err
	}

	var out bytes.Buffer
	// #nosec G203 -- body is goldmark output with raw HTML disabled; CSS is local
	err = tmpl.Execute(&out, reviewData{
		Title:     title,
		Style:     template.CSS(style),
		Highlight: template.CSS(highlight.String()),
		Body:      template.HTML(body),
	})
	if err != nil {
		return "", fmt.Errorf("executing review template: %w", err)
	}
	return out.String(), nil
}

// Write renders p and saves it next to p.Image with an .html extension.
// It returns the written path.
func (e *Exporter) Write(ctx context.Context, p Page) (string, error) {
	if p.Image == "" {
		return "", fmt.Errorf("%w: no image to review", ErrHTMLConversion)
	}
	doc, err := e.ToHTML(ctx, p)
	if err != nil {
		return "", err
	}
	out := strings.TrimSuffix(p.Image, filepath.Ext(p.Image)) + ".html"
	// #nosec G306 -- review pages are meant to be readable
	if err := os.WriteFile(out, []byte(doc), 0o644); err != nil {
		return "", fmt.Errorf("writing review page: %w", err)
	}
	return out, nil
}

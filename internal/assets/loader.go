package assets

import (
	"fmt"
	"strings"
)

// Built-in asset names.
const (
	StyleReview    = "review" // styles/review.css
	TemplateReview = "review" // templates/review.html
	TemplateKaTeX  = "katex"  // templates/katex.html
)

// AssetLoader loads CSS styles and HTML templates by bare name.
type AssetLoader interface {
	// LoadStyle returns styles/{name}.css, or ErrStyleNotFound.
	LoadStyle(name string) (string, error)

	// LoadTemplate returns templates/{name}.html, or ErrTemplateNotFound.
	LoadTemplate(name string) (string, error)
}

// Default returns the loader used when none is configured.
func Default() AssetLoader {
	return NewEmbeddedLoader()
}

// kind is one asset directory and the extension its files carry.
type kind struct {
	dir      string
	ext      string
	notFound error
}

var (
	styleKind    = kind{dir: "styles", ext: ".css", notFound: ErrStyleNotFound}
	templateKind = kind{dir: "templates", ext: ".html", notFound: ErrTemplateNotFound}
)

// ValidateAssetName rejects names that are empty or could select a file
// other than {dir}/{name}.{ext}.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}

package assets

import (
	"embed"
	"fmt"
	"path"
)

//go:embed styles/*.css templates/*.html
var builtin embed.FS

// EmbeddedLoader serves the assets compiled into the binary.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadStyle returns a built-in CSS style.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	return e.read(styleKind, name)
}

// LoadTemplate returns a built-in HTML template.
func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	return e.read(templateKind, name)
}

func (e *EmbeddedLoader) read(k kind, name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	// embed.FS paths always use forward slashes.
	content, err := builtin.ReadFile(path.Join(k.dir, name+k.ext))
	if err != nil {
		return "", fmt.Errorf("%w: %q", k.notFound, name)
	}
	return string(content), nil
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)

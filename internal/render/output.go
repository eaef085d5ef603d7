package render

import (
	"image/color"
	"time"

	"github.com/alnah/go-mathsnap/internal/dateutil"
	"github.com/alnah/go-mathsnap/internal/fileutil"
	"github.com/alnah/go-mathsnap/internal/palette"
)

// Defaults for rendered images.
const (
	DefaultOutputDir = "~/Pictures/latex-renders"
	DefaultDPI       = 300
	FilePrefix       = "latex_render_"
)

// Output describes where and how images are written.
type Output struct {
	Dir        string // "~" is expanded; created on demand
	NameFormat string // dateutil pattern; defaults to dateutil.DefaultFileStamp
	DPI        int
	Foreground color.Color
	Background color.Color
	Now        func() time.Time
}

// NewPath creates the output directory if needed and returns a free path for
// the next image.
func (o Output) NewPath() (string, error) {
	dir := o.Dir
	if dir == "" {
		dir = DefaultOutputDir
	}
	dir, err := fileutil.ExpandHome(dir)
	if err != nil {
		return "", err
	}
	if err := fileutil.EnsureDir(dir); err != nil {
		return "", err
	}

	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	stamp, err := dateutil.FileStamp(o.NameFormat, now())
	if err != nil {
		return "", err
	}
	return fileutil.UniquePath(dir, FilePrefix+stamp, "png")
}

func (o Output) dpi() int {
	if o.DPI <= 0 {
		return DefaultDPI
	}
	return o.DPI
}

func (o Output) foreground() color.Color {
	if o.Foreground == nil {
		return palette.MustParse(palette.DefaultForeground)
	}
	return o.Foreground
}

func (o Output) background() color.Color {
	if o.Background == nil {
		return palette.MustParse(palette.DefaultBackground)
	}
	return o.Background
}

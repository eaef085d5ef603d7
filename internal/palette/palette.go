// Package palette parses the hex colours used for rendering and converts them
// to the forms each backend expects.
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidColor indicates a colour that is not #rgb or #rrggbb.
var ErrInvalidColor = errors.New("invalid color")

// Defaults for rendered math.
const (
	DefaultForeground = "#000000"
	DefaultBackground = "#ffffff"
)

// Parse accepts "#rgb" or "#rrggbb", with or without the leading '#'.
func Parse(hex string) (color.NRGBA, error) {
	s := strings.TrimSpace(hex)
	if s == "" {
		return color.NRGBA{}, fmt.Errorf("%w: empty", ErrInvalidColor)
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// MustParse is Parse for constants. It panics on error.
func MustParse(hex string) color.NRGBA {
	c, err := Parse(hex)
	if err != nil {
		panic(err)
	}
	return c
}

// Dvipng formats c for dvipng's -fg and -bg options, e.g. "rgb 1 0.5 0".
func Dvipng(c color.Color) string {
	cf, _ := colorful.MakeColor(opaque(c))
	return fmt.Sprintf("rgb %s %s %s", unit(cf.R), unit(cf.G), unit(cf.B))
}

// CSS formats c as #rrggbb.
func CSS(c color.Color) string {
	cf, _ := colorful.MakeColor(opaque(c))
	return cf.Hex()
}

// opaque drops alpha; MakeColor refuses fully transparent colours.
func opaque(c color.Color) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 0xff
	return n
}

func unit(v float64) string {
	s := fmt.Sprintf("%.3f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

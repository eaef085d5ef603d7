// Package dateutil formats timestamps from user-friendly patterns such as
// "YYYYMMDD_HHmmss", used to name rendered images.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidFormat indicates an invalid timestamp pattern.
var ErrInvalidFormat = errors.New("invalid timestamp format")

// MaxFormatLength limits pattern length.
const MaxFormatLength = 50

// DefaultFileStamp is the pattern for render file names.
const DefaultFileStamp = "YYYYMMDD_HHmmss"

// tokens maps pattern tokens to Go layout components.
// Ordered by length descending for greedy matching. Tokens are case
// sensitive: MM is the month, mm the minute.
var tokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
	{"M", "1"},
	{"D", "2"},
}

// Presets are named shortcuts for common patterns.
var Presets = map[string]string{
	"compact": DefaultFileStamp,
	"iso":     "YYYY-MM-DD_HH-mm-ss",
	"date":    "YYYY-MM-DD",
}

// ParseFormat converts a pattern to a Go time layout.
// Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D, HH, mm, ss.
// Brackets escape literal text: [render] keeps "render" as is.
// Other characters are kept as literals.
func ParseFormat(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidFormat)
	}
	if len(format) > MaxFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidFormat, MaxFormatLength)
	}

	var layout strings.Builder
	layout.Grow(len(format) + 10)

	i := 0
	for i < len(format) {
		if format[i] == '[' {
			end := strings.Index(format[i+1:], "]")
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidFormat, i)
			}
			layout.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}

		matched := false
		for _, t := range tokens {
			if strings.HasPrefix(format[i:], t.token) {
				layout.WriteString(t.goFmt)
				i += len(t.token)
				matched = true
				break
			}
		}
		if !matched {
			layout.WriteByte(format[i])
			i++
		}
	}

	return layout.String(), nil
}

// Format renders t with a pattern or preset name.
func Format(format string, t time.Time) (string, error) {
	if preset, ok := Presets[strings.ToLower(format)]; ok {
		format = preset
	}
	layout, err := ParseFormat(format)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}

// FileStamp is Format restricted to results usable inside a file name.
func FileStamp(format string, t time.Time) (string, error) {
	if format == "" {
		format = DefaultFileStamp
	}
	s, err := Format(format, t)
	if err != nil {
		return "", err
	}
	if strings.ContainsAny(s, "/\\\x00") {
		return "", fmt.Errorf("%w: %q produces a path separator", ErrInvalidFormat, format)
	}
	return s, nil
}

package ocr

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// JoinSegments trims each page, drops empty ones and joins the rest with a
// newline. Text is NFC-normalized so composed accents compare equal to what
// the user would type.
func JoinSegments(segments []string) string {
	kept := make([]string, 0, len(segments))
	for _, s := range segments {
		s = strings.TrimSpace(norm.NFC.String(s))
		if s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, "\n")
}

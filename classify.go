package mathsnap

import (
	"regexp"
	"strings"
)

// noTextSentinels are what OCR services commonly return for a blank region.
var noTextSentinels = []string{"no text found", "no text found in image"}

// notationMarkers are surface markers of math markup. A single match anywhere
// in the text is enough; none of them validates grammar.
var notationMarkers = []*regexp.Regexp{
	regexp.MustCompile(`\\[a-zA-Z]+\{`), // command with required argument
	regexp.MustCompile(`\\[a-zA-Z]+\[`), // command with optional argument
	regexp.MustCompile(`\$\$.*\$\$`),    // display math
	regexp.MustCompile(`\$.*\$`),        // inline math
	regexp.MustCompile(`\\begin\{.*\}`), // environment begin
	regexp.MustCompile(`\\end\{.*\}`),   // environment end
}

// bracketDelimiters are math delimiters recognised even when unpaired.
var bracketDelimiters = []string{`\[`, `\]`, `\(`, `\)`}

// IsNotation reports whether text looks like LaTeX math notation.
// It never fails: empty text and the "no text found" sentinel report false.
func IsNotation(text string) bool {
	if text == "" || isNoTextSentinel(text) {
		return false
	}

	for _, tok := range bracketDelimiters {
		if strings.Contains(text, tok) {
			return true
		}
	}
	for _, re := range notationMarkers {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func isNoTextSentinel(text string) bool {
	text = strings.TrimSpace(text)
	for _, s := range noTextSentinels {
		if strings.EqualFold(text, s) {
			return true
		}
	}
	return false
}

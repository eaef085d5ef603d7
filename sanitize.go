package mathsnap

import (
	"regexp"
	"strings"
)

// Document scaffolding markers.
const (
	documentBegin = `\begin{document}`
	documentEnd   = `\end{document}`
)

// checkedEnvironments lists the environment kinds whose begin/end markers
// must balance in a sanitized fragment. Unbalanced kinds lose all their
// markers.
var checkedEnvironments = []string{"align", "equation", "matrix", "bmatrix", "cases"}

var (
	documentBodyPattern  = regexp.MustCompile(`(?s)\\begin\{document\}(.*?)\\end\{document\}`)
	documentClassPattern = regexp.MustCompile(`\\documentclass\s*(?:\[[^\]]*\])?\s*\{[^}]*\}`)
	usePackagePattern    = regexp.MustCompile(`\\usepackage\s*(?:\[[^\]]*\])?\s*\{[^}]*\}`)
)

// Sanitize reduces arbitrary OCR markup to a fragment that can be embedded in
// BuildDocument's template. It never fails; the result may be empty when the
// input was nothing but scaffolding.
//
// Passes repeat until the text stops changing. Every pass only removes or
// shortens text, so the loop terminates, and the result is a fixed point:
// Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(text string) string {
	for {
		next := sanitizePass(text)
		if next == text {
			return next
		}
		text = next
	}
}

func sanitizePass(text string) string {
	text = documentBodyPattern.ReplaceAllString(text, "${1}")
	text = documentClassPattern.ReplaceAllString(text, "")
	text = usePackagePattern.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, documentBegin, "")
	text = strings.ReplaceAll(text, documentEnd, "")

	text = strings.ReplaceAll(text, beginMarker("aligned"), beginMarker("align"))
	text = strings.ReplaceAll(text, endMarker("aligned"), endMarker("align"))

	for _, env := range checkedEnvironments {
		text = dropUnbalanced(text, env)
	}

	return strings.Join(strings.Fields(text), " ")
}

// dropUnbalanced removes every marker of env when begins and ends differ,
// leaving the enclosed content in place.
func dropUnbalanced(text, env string) string {
	begin, end := beginMarker(env), endMarker(env)
	if strings.Count(text, begin) == strings.Count(text, end) {
		return text
	}
	text = strings.ReplaceAll(text, begin, "")
	return strings.ReplaceAll(text, end, "")
}

func beginMarker(env string) string { return `\begin{` + env + `}` }

func endMarker(env string) string { return `\end{` + env + `}` }

package mathsnap

import "strings"

// Preamble is the fixed document header used for every render. It loads only
// what common math needs: AMS math and symbols plus xcolor.
const Preamble = `\documentclass[12pt]{article}
\usepackage{amsmath}
\usepackage{amssymb}
\usepackage{xcolor}
\pagestyle{empty}
`

// Display math delimiters added around fragments that are not already in math mode.
const (
	displayOpen  = `\[`
	displayClose = `\]`
)

// mathOpeners are prefixes that already put the fragment in math mode.
var mathOpeners = []string{"$", `\[`, `\(`, `\begin{`}

// WrapFragment puts fragment in display math unless it already starts with a
// math-mode opener.
func WrapFragment(fragment string) string {
	trimmed := strings.TrimSpace(fragment)
	for _, p := range mathOpeners {
		if strings.HasPrefix(trimmed, p) {
			return fragment
		}
	}
	return displayOpen + fragment + displayClose
}

// BuildDocument embeds fragment in the fixed preamble and a document block.
// The fragment should come from Sanitize; BuildDocument does not validate it.
func BuildDocument(fragment string) string {
	var b strings.Builder
	b.Grow(len(Preamble) + len(fragment) + 64)
	b.WriteString(Preamble)
	b.WriteString(documentBegin)
	b.WriteByte('\n')
	b.WriteString(WrapFragment(fragment))
	b.WriteByte('\n')
	b.WriteString(documentEnd)
	b.WriteByte('\n')
	return b.String()
}

// FragmentOf extracts the body between the document markers of a document
// built by BuildDocument. Documents without markers are returned trimmed.
func FragmentOf(document string) string {
	start := strings.Index(document, documentBegin)
	end := strings.LastIndex(document, documentEnd)
	if start < 0 || end < start {
		return strings.TrimSpace(document)
	}
	return strings.TrimSpace(document[start+len(documentBegin) : end])
}

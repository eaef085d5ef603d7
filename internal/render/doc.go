// Package render turns LaTeX documents into PNG images.
//
// LaTeX (the default) runs latex and dvipng in a scratch directory. Browser
// renders the math with KaTeX in headless Chrome through go-rod, for systems
// without a TeX installation. Both write to Output, which names files
// latex_render_<stamp>.png and never overwrites an existing image.
package render

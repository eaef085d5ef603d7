// Package assets provides the CSS and HTML templates used for the review
// page and the KaTeX render page.
//
// # Loaders
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in assets compiled into the binary
//	    ├── FilesystemLoader  - user overrides in a directory on disk
//	    └── AssetResolver     - custom first, embedded on not-found
//
// # Directory Structure
//
// An override directory mirrors the embedded layout:
//
//	{basePath}/
//	├── styles/
//	│   └── review.css
//	└── templates/
//	    ├── review.html
//	    └── katex.html
//
// Only the files present are overridden; the rest come from the binary.
//
// # Security
//
// Asset names may not contain separators or dots. FilesystemLoader resolves
// symlinks and refuses paths that leave basePath.
package assets

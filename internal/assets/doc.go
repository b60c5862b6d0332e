// Package assets provides the manuscript template and house stylesheets.
//
// A Library reads assets from one source: the files embedded at compile
// time (Builtin) or a directory supplied by the press (OpenDir). An Overlay
// stacks a press directory over the built-in library so a press can replace
// one asset and keep the others.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css           # House style appended after generated rules
//	└── templates/
//	    └── {name}.html          # html/template document (manuscript.html)
//
// # Security
//
// Asset names are restricted to letters, digits, hyphens and underscores.
// Directory reads go through os.OpenInRoot, so a symlink inside the press
// directory cannot reach files outside it.
package assets

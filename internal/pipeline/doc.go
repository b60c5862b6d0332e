// Package pipeline implements the manuscript-to-HTML stages of the typesetter.
//
// This package handles normalization and composition:
//   - Plain text splitting into paragraphs on blank lines
//   - HTML (from DOCX conversion or Markdown) walking into typed blocks
//   - Scene-break detection
//   - Stylesheet generation from a layout.Profile
//   - Rendering the final HTML document from an embedded template
//
// PDF generation is handled separately by the root typeset package using
// headless Chrome (go-rod). The split keeps this package free of I/O: every
// function here is a pure transformation of its inputs.
package pipeline

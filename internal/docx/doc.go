// Package docx converts Word (.docx) manuscripts to HTML.
//
// Only what a novel interior needs survives the conversion: paragraphs,
// Title/Heading 1-3 styles (or outline levels) as h1-h3, bold and italic
// runs, and line breaks. Tables, images, footnotes, comments and tracked
// deletions are dropped. The archive is read with size limits so a crafted
// upload cannot exhaust memory.
package docx

package pipeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/literatipub/typeset/internal/layout"
)

// dropCapLines is the drop cap height in body lines.
const dropCapLines = 3

// BuildStylesheet generates the manuscript CSS for a profile.
// Every rule is derived from profile fields; the same profile always yields
// the same stylesheet.
func BuildStylesheet(p layout.Profile) string {
	var buf strings.Builder

	writePageCSS(&buf, p)
	writeBodyCSS(&buf, p)
	writeHeadingCSS(&buf, p)
	writeParagraphCSS(&buf, p)
	writeSceneBreakCSS(&buf, p)
	if p.DropCap {
		writeDropCapCSS(&buf, p)
	}

	return buf.String()
}

// writePageCSS declares the page box size only. Margins are applied by the
// render engine from the same profile.
func writePageCSS(buf *strings.Builder, p layout.Profile) {
	fmt.Fprintf(buf, `/* Page */
@page {
  size: %s %s;
}
`, p.Page.Width, p.Page.Height)
}

func writeBodyCSS(buf *strings.Builder, p layout.Profile) {
	fmt.Fprintf(buf, `
/* Body */
html, body {
  margin: 0;
  padding: 0;
}
body {
  font-family: %s;
  font-size: %s;
  line-height: %s;
  text-align: %s;
  color: #000;
  font-kerning: normal;
  font-variant-ligatures: common-ligatures;
  -webkit-print-color-adjust: exact;
  print-color-adjust: exact;
`, p.Font.Stack, p.Body.Size, formatFloat(p.Body.LineHeight), p.Body.Align)

	if p.Body.Hyphenate {
		buf.WriteString("  hyphens: auto;\n  -webkit-hyphens: auto;\n")
	} else {
		buf.WriteString("  hyphens: manual;\n  -webkit-hyphens: manual;\n")
	}
	buf.WriteString("}\n")
}

func writeHeadingCSS(buf *strings.Builder, p layout.Profile) {
	h := p.Heading

	fmt.Fprintf(buf, `
/* Headings: never alone at a page bottom */
h1, h2, h3 {
  font-weight: normal;
  text-align: %s;
  text-indent: 0;
  hyphens: manual;
  -webkit-hyphens: manual;
  break-after: avoid;
  page-break-after: avoid;
  break-inside: avoid;
  page-break-inside: avoid;
}
h1 {
  font-size: %sem;
  margin: 0 0 2em;
  padding-top: %s;
}
h2 {
  font-size: 1.25em;
  margin: 1.5em 0 1em;
}
h3 {
  font-size: 1.1em;
  font-style: italic;
  margin: 1.2em 0 0.8em;
}
`, h.Align, formatFloat(h.SizeEm), h.Sink)

	if h.BreakBefore {
		buf.WriteString(`
/* Chapters start on a new page */
h1 {
  break-before: page;
  page-break-before: always;
}
/* Exception: no break before the first chapter if it opens the body */
body > h1:first-child {
  break-before: auto;
  page-break-before: auto;
}
`)
	}
}

// writeParagraphCSS emits paragraph separation. First-line indentation is
// suppressed by adjacency selectors, never per paragraph.
func writeParagraphCSS(buf *strings.Builder, p layout.Profile) {
	fmt.Fprintf(buf, `
/* Paragraphs */
p {
  margin: 0 0 %s;
  text-indent: %s;
  orphans: %d;
  widows: %d;
}
`, p.Paragraph.SpaceAfter, p.Paragraph.Indent, p.Orphans, p.Widows)

	if !p.Paragraph.Indent.IsZero() {
		buf.WriteString(`h1 + p, h2 + p, h3 + p, .scene-break + p {
  text-indent: 0;
}
`)
	}
}

func writeSceneBreakCSS(buf *strings.Builder, p layout.Profile) {
	sb := p.SceneBreak
	fmt.Fprintf(buf, `
/* Scene breaks */
.scene-break {
  text-align: center;
  text-indent: 0;
  letter-spacing: %s;
  margin: %s 0;
  break-inside: avoid;
  page-break-inside: avoid;
  break-after: avoid;
  page-break-after: avoid;
}
`, sb.LetterSpacing, sb.Space)
}

func writeDropCapCSS(buf *strings.Builder, p layout.Profile) {
	size := float64(dropCapLines) * p.Body.LineHeight * 0.8
	fmt.Fprintf(buf, `
/* Drop cap on the paragraph opening a chapter */
h1 + p::first-letter {
  float: left;
  font-size: %sem;
  line-height: 0.85;
  padding: 0.05em 0.08em 0 0;
}
`, formatFloat(size))
}

// formatFloat renders a number without trailing zeros, rounded to
// hundredths.
func formatFloat(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

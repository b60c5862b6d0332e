package pipeline

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// maxHeadingLevel caps heading depth; deeper headings render as level 3.
const maxHeadingLevel = 3

// headingLevels maps heading tags to block levels.
var headingLevels = map[atom.Atom]int{
	atom.H1: 1,
	atom.H2: 2,
	atom.H3: 3,
	atom.H4: 3,
	atom.H5: 3,
	atom.H6: 3,
}

// paragraphTags produce one paragraph block each.
var paragraphTags = map[atom.Atom]bool{
	atom.P:          true,
	atom.Li:         true,
	atom.Dd:         true,
	atom.Dt:         true,
	atom.Figcaption: true,
	atom.Pre:        true,
}

// skipTags is the set of tags whose content is never part of the manuscript.
var skipTags = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Template: true,
	atom.Noscript: true,
}

// FromHTML walks an HTML document or fragment and returns its blocks.
// The title comes from <title> when present, else the first heading.
// h1-h3 become headings (h4-h6 fold into level 3), p and list items become
// paragraphs, hr and separator-only paragraphs become scene breaks.
// Returns ErrEmptyContent if nothing survives.
func FromHTML(content string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	w := &htmlWalker{doc: &Document{}}
	w.walk(root)
	w.flushLoose()

	if len(w.doc.Blocks) == 0 {
		return nil, ErrEmptyContent
	}
	w.doc.Title = documentTitle(root)
	if w.doc.Title == "" {
		w.doc.Title = w.doc.firstHeading()
	}
	return w.doc, nil
}

// htmlWalker accumulates blocks in document order.
type htmlWalker struct {
	doc   *Document
	loose []Span // inline content found directly under a container
}

func (w *htmlWalker) walk(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			w.loose = append(w.loose, Span{Text: c.Data})
			continue
		case html.ElementNode:
		default:
			w.walk(c)
			continue
		}

		if skipTags[c.DataAtom] {
			continue
		}

		if level, ok := headingLevels[c.DataAtom]; ok {
			w.flushLoose()
			w.addHeading(c, level)
			continue
		}

		switch {
		case c.DataAtom == atom.Hr:
			w.flushLoose()
			w.doc.Blocks = append(w.doc.Blocks, Block{Kind: KindSceneBreak, Text: "* * *"})
		case paragraphTags[c.DataAtom]:
			w.flushLoose()
			w.addParagraph(c)
		case isInline(c.DataAtom):
			w.loose = append(w.loose, nodeSpans(c, false, false)...)
		default:
			w.flushLoose()
			w.walk(c)
			w.flushLoose()
		}
	}
}

// flushLoose turns pending inline content into a paragraph.
func (w *htmlWalker) flushLoose() {
	if len(w.loose) == 0 {
		return
	}
	spans := cleanSpans(w.loose)
	w.loose = nil
	w.appendParagraph(spans)
}

func (w *htmlWalker) addHeading(n *html.Node, level int) {
	spans := cleanSpans(collectSpans(n, false, false))
	text := spansText(spans)
	if text == "" {
		return
	}
	if level > maxHeadingLevel {
		level = maxHeadingLevel
	}
	w.doc.Blocks = append(w.doc.Blocks, Block{
		Kind:  KindHeading,
		Level: level,
		Text:  text,
		Spans: formattedOrNil(spans),
	})
}

func (w *htmlWalker) addParagraph(n *html.Node) {
	// A list item or similar may nest real paragraphs; walk those instead.
	if hasBlockChild(n) {
		w.walk(n)
		w.flushLoose()
		return
	}
	w.appendParagraph(cleanSpans(collectSpans(n, false, false)))
}

func (w *htmlWalker) appendParagraph(spans []Span) {
	text := spansText(spans)
	if text == "" {
		return
	}
	w.doc.Blocks = append(w.doc.Blocks, paragraphBlock(text, formattedOrNil(spans)))
}

// collectSpans flattens the inline content of n's children into spans.
func collectSpans(n *html.Node, emphasis, strong bool) []Span {
	var spans []Span
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		spans = append(spans, nodeSpans(c, emphasis, strong)...)
	}
	return spans
}

// nodeSpans returns the spans of n itself, applying its own formatting.
func nodeSpans(n *html.Node, emphasis, strong bool) []Span {
	switch n.Type {
	case html.TextNode:
		return []Span{{Text: n.Data, Emphasis: emphasis, Strong: strong}}
	case html.ElementNode:
	default:
		return nil
	}

	if skipTags[n.DataAtom] {
		return nil
	}
	switch n.DataAtom {
	case atom.Br:
		return []Span{{Text: " ", Emphasis: emphasis, Strong: strong}}
	case atom.Em, atom.I, atom.Cite:
		return collectSpans(n, true, strong)
	case atom.Strong, atom.B:
		return collectSpans(n, emphasis, true)
	}
	return collectSpans(n, emphasis, strong)
}

// cleanSpans collapses whitespace, trims the ends and merges neighbours with
// identical formatting.
func cleanSpans(raw []Span) []Span {
	out := make([]Span, 0, len(raw))
	for _, s := range raw {
		s.Text = whitespaceRun.ReplaceAllString(s.Text, " ")
		if s.Text == "" {
			continue
		}
		if n := len(out); n > 0 {
			prev := &out[n-1]
			if strings.HasSuffix(prev.Text, " ") && strings.HasPrefix(s.Text, " ") {
				s.Text = s.Text[1:]
				if s.Text == "" {
					continue
				}
			}
			if prev.Emphasis == s.Emphasis && prev.Strong == s.Strong {
				prev.Text += s.Text
				continue
			}
		}
		out = append(out, s)
	}

	// Trim leading and trailing whitespace across span boundaries.
	for len(out) > 0 {
		out[0].Text = strings.TrimLeft(out[0].Text, " ")
		if out[0].Text != "" {
			break
		}
		out = out[1:]
	}
	for len(out) > 0 {
		last := len(out) - 1
		out[last].Text = strings.TrimRight(out[last].Text, " ")
		if out[last].Text != "" {
			break
		}
		out = out[:last]
	}
	return out
}

// spansText concatenates span text.
func spansText(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// formattedOrNil drops spans that carry no formatting.
func formattedOrNil(spans []Span) []Span {
	for _, s := range spans {
		if s.Emphasis || s.Strong {
			return spans
		}
	}
	return nil
}

// documentTitle returns the text of the first <title> element, or "".
func documentTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		var b strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
		return strings.TrimSpace(whitespaceRun.ReplaceAllString(b.String(), " "))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := documentTitle(c); t != "" {
			return t
		}
	}
	return ""
}

// hasBlockChild reports whether n contains a nested block element.
func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if paragraphTags[c.DataAtom] || c.DataAtom == atom.Hr || c.DataAtom == atom.Div {
			return true
		}
		if _, ok := headingLevels[c.DataAtom]; ok {
			return true
		}
	}
	return false
}

// isInline reports whether a tag is phrasing content.
func isInline(a atom.Atom) bool {
	switch a {
	case atom.A, atom.Abbr, atom.B, atom.Br, atom.Cite, atom.Code, atom.Em,
		atom.I, atom.Mark, atom.Q, atom.S, atom.Small, atom.Span, atom.Strong,
		atom.Sub, atom.Sup, atom.U:
		return true
	}
	return false
}

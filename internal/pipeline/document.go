package pipeline

import "strings"

// Kind classifies a block of a normalized manuscript.
type Kind int

// Block kinds.
const (
	KindParagraph Kind = iota
	KindHeading
	KindSceneBreak
)

// String returns the kind name used in logs and JSON.
func (k Kind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindSceneBreak:
		return "scene_break"
	}
	return "paragraph"
}

// Span is a run of inline text sharing the same emphasis.
type Span struct {
	Text     string
	Emphasis bool
	Strong   bool
}

// Block is one unit of a manuscript.
// Level is 1-3 for headings and 0 otherwise. Spans is nil when the block
// carries no inline formatting; Text always holds the plain text.
type Block struct {
	Kind  Kind
	Level int
	Text  string
	Spans []Span
}

// IsHeading reports whether the block is a heading.
func (b Block) IsHeading() bool { return b.Kind == KindHeading }

// IsSceneBreak reports whether the block is a scene break.
func (b Block) IsSceneBreak() bool { return b.Kind == KindSceneBreak }

// Document is an ordered sequence of blocks.
type Document struct {
	Title  string
	Blocks []Block
}

// Len returns the number of blocks.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Blocks)
}

// Count returns the number of blocks of the given kind.
func (d *Document) Count(kind Kind) int {
	if d == nil {
		return 0
	}
	n := 0
	for _, b := range d.Blocks {
		if b.Kind == kind {
			n++
		}
	}
	return n
}

// firstHeading returns the text of the first heading, or "".
func (d *Document) firstHeading() string {
	for _, b := range d.Blocks {
		if b.Kind == KindHeading {
			return b.Text
		}
	}
	return ""
}

// paragraphBlock builds a paragraph or, for separator-only text, a scene break.
func paragraphBlock(text string, spans []Span) Block {
	if IsSceneBreak(text) {
		return Block{Kind: KindSceneBreak, Text: strings.TrimSpace(text)}
	}
	return Block{Kind: KindParagraph, Text: text, Spans: spans}
}

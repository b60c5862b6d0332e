package pipeline

import (
	"errors"
	"regexp"
	"strings"
)

// ErrEmptyContent indicates that a manuscript produced no blocks.
var ErrEmptyContent = errors.New("no content to generate from")

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// One or more blank (or whitespace-only) lines between paragraphs
	blankLines = regexp.MustCompile(`\n(?:[ \t\f\v]*\n)+`)

	// Any whitespace run, including single newlines inside a paragraph
	whitespaceRun = regexp.MustCompile(`\s+`)

	// Asterisk separators: "*", "***", "* * *"; or the asterism
	sceneBreakPattern = regexp.MustCompile(`^(?:\*[ \t]*)+$|^⁂$`)
)

// IsSceneBreak reports whether a paragraph consists solely of a scene
// separator.
func IsSceneBreak(text string) bool {
	return sceneBreakPattern.MatchString(strings.TrimSpace(text))
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// FromText splits plain text into paragraph blocks on blank lines.
// No heading inference is done: chapter titles in plain text stay paragraphs.
// Returns ErrEmptyContent if no non-blank paragraph remains.
func FromText(content string) (*Document, error) {
	content = normalizeLineEndings(content)

	candidates := blankLines.Split(content, -1)
	doc := &Document{Blocks: make([]Block, 0, len(candidates))}

	for _, c := range candidates {
		text := strings.TrimSpace(c)
		if text == "" {
			continue
		}
		text = whitespaceRun.ReplaceAllString(text, " ")
		doc.Blocks = append(doc.Blocks, paragraphBlock(text, nil))
	}

	if len(doc.Blocks) == 0 {
		return nil, ErrEmptyContent
	}
	return doc, nil
}

package typeset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/literatipub/typeset/internal/docx"
	"github.com/literatipub/typeset/internal/pipeline"
)

// utf8BOM is stripped from text sources before parsing.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// defaultMarkdown converts Markdown sources for Normalize.
var defaultMarkdown = pipeline.NewGoldmarkConverter()

// Normalize converts manuscript bytes into ordered blocks.
// Returns ErrEmptyContent when nothing printable survives and
// ErrUnsupportedSource for an unknown kind.
func Normalize(content []byte, kind SourceKind) (*Document, error) {
	return normalize(context.Background(), content, kind, defaultMarkdown, docx.NewConverter())
}

// normalize dispatches on kind with injectable converters.
func normalize(ctx context.Context, content []byte, kind SourceKind, md pipeline.MarkdownConverter, dc *docx.Converter) (*Document, error) {
	if kind < SourceText || kind > SourceMarkdown {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSource, int(kind))
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, ErrEmptyContent
	}

	if kind == SourceDOCX {
		fragment, err := dc.ToHTML(content)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConversion, err)
		}
		return pipeline.FromHTML(fragment)
	}

	text := strings.ToValidUTF8(string(bytes.TrimPrefix(content, utf8BOM)), "\uFFFD")

	switch kind {
	case SourceHTML:
		return pipeline.FromHTML(text)
	case SourceMarkdown:
		doc, err := pipeline.FromMarkdown(ctx, md, text)
		if errors.Is(err, pipeline.ErrHTMLConversion) {
			return nil, fmt.Errorf("%w: %w", ErrConversion, err)
		}
		return doc, err
	default:
		return pipeline.FromText(text)
	}
}

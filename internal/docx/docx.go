package docx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Converter turns DOCX archives into HTML.
type Converter struct {
	maxEntrySize int64
}

// Option configures a Converter.
type Option func(*Converter)

// WithMaxEntrySize overrides the per-entry decompression limit.
// Panics if n <= 0.
func WithMaxEntrySize(n int64) Option {
	if n <= 0 {
		panic("docx: max entry size must be positive")
	}
	return func(c *Converter) {
		c.maxEntrySize = n
	}
}

// NewConverter creates a Converter.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{maxEntrySize: maxEntrySize}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ToHTML converts a DOCX archive with default limits.
func ToHTML(data []byte) (string, error) {
	return NewConverter().ToHTML(data)
}

// ToHTML converts the archive to a standalone HTML document.
func (c *Converter) ToHTML(data []byte) (string, error) {
	a, err := openArchive(data, c.maxEntrySize)
	if err != nil {
		return "", err
	}

	body, err := a.read(documentEntry)
	if err != nil {
		return "", err
	}

	styles := styleSheet{}
	if a.has(stylesEntry) {
		raw, err := a.read(stylesEntry)
		if err != nil {
			return "", err
		}
		if styles, err = parseStyles(raw); err != nil {
			return "", err
		}
	}

	var title string
	if a.has(coreEntry) {
		raw, err := a.read(coreEntry)
		if err != nil {
			return "", err
		}
		title = parseTitle(raw)
	}

	var buf strings.Builder
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	if title != "" {
		buf.WriteString("<title>" + html.EscapeString(title) + "</title>\n")
	}
	buf.WriteString("</head>\n<body>\n")
	if err := writeBody(&buf, body, styles); err != nil {
		return "", err
	}
	buf.WriteString("</body>\n</html>\n")
	return buf.String(), nil
}

// run is a formatted text run.
type run struct {
	text   strings.Builder
	bold   bool
	italic bool
}

// paragraph accumulates runs until </w:p>.
type paragraph struct {
	styleID string
	outline int
	runs    []*run
}

// skipped reports whether an element holds content outside the main text
// flow: text boxes, alternate-content fallbacks, tracked deletions, drawings,
// tables and note references.
func skipped(local string) bool {
	switch local {
	case "txbxContent", "Fallback", "del", "drawing", "pict", "tbl",
		"footnoteReference", "commentReference":
		return true
	}
	return false
}

// writeBody streams word/document.xml into HTML block elements.
func writeBody(buf *strings.Builder, data []byte, styles styleSheet) error {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		para  *paragraph
		cur   *run
		inPPr bool
		inRPr bool
		inT   bool
	)

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("%w: document: %v", ErrInvalidDocument, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if skipped(t.Name.Local) {
				if err := dec.Skip(); err != nil {
					return fmt.Errorf("%w: document: %v", ErrInvalidDocument, err)
				}
				continue
			}
			switch t.Name.Local {
			case "p":
				para = &paragraph{}
			case "pPr":
				inPPr = true
			case "pStyle":
				if para != nil && inPPr {
					para.styleID = attr(t, "val")
				}
			case "outlineLvl":
				if para != nil && inPPr {
					// Level 9 is "body text" in OOXML.
					if n, err := strconv.Atoi(attr(t, "val")); err == nil && n < 9 {
						para.outline = n + 1
					}
				}
			case "r":
				cur = &run{}
				if para != nil {
					para.runs = append(para.runs, cur)
				}
			case "rPr":
				inRPr = true
			case "b":
				if cur != nil && inRPr && !inPPr {
					cur.bold = toggleOn(t)
				}
			case "i":
				if cur != nil && inRPr && !inPPr {
					cur.italic = toggleOn(t)
				}
			case "t":
				inT = true
			case "br", "cr":
				if cur != nil {
					cur.text.WriteString("\n")
				}
			case "tab":
				if cur != nil && !inPPr {
					cur.text.WriteString(" ")
				}
			}

		case xml.CharData:
			if inT && cur != nil {
				cur.text.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if para != nil {
					writeParagraph(buf, para, styles)
				}
				para, cur = nil, nil
			case "pPr":
				inPPr = false
			case "rPr":
				inRPr = false
			case "r":
				cur = nil
			case "t":
				inT = false
			}
		}
	}
}

// toggleOn interprets an OOXML on/off property such as <w:b/> or
// <w:i w:val="0"/>.
func toggleOn(el xml.StartElement) bool {
	switch strings.ToLower(attr(el, "val")) {
	case "0", "false", "off", "none":
		return false
	}
	return true
}

func writeParagraph(buf *strings.Builder, p *paragraph, styles styleSheet) {
	openTag, closeTag := "<p>", "</p>"
	if level := styles.headingLevel(p.styleID, p.outline); level > 0 {
		openTag = fmt.Sprintf("<h%d>", level)
		closeTag = fmt.Sprintf("</h%d>", level)
	}

	buf.WriteString(openTag)
	for _, r := range p.runs {
		text := r.text.String()
		if text == "" {
			continue
		}
		if r.bold {
			buf.WriteString("<strong>")
		}
		if r.italic {
			buf.WriteString("<em>")
		}
		buf.WriteString(strings.ReplaceAll(html.EscapeString(text), "\n", "<br>"))
		if r.italic {
			buf.WriteString("</em>")
		}
		if r.bold {
			buf.WriteString("</strong>")
		}
	}
	buf.WriteString(closeTag)
	buf.WriteString("\n")
}

// parseTitle extracts dc:title from docProps/core.xml, or "".
func parseTitle(data []byte) string {
	var core struct {
		Title string `xml:"title"`
	}
	if err := xml.Unmarshal(data, &core); err != nil {
		return ""
	}
	return strings.TrimSpace(core.Title)
}

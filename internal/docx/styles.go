package docx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// styleInfo is what the converter needs from a paragraph style.
type styleInfo struct {
	name    string // lowercased display name, e.g. "heading 1"
	outline int    // outline level + 1, 0 when unset
}

// styleSheet maps style ids to their definitions.
type styleSheet map[string]styleInfo

// parseStyles reads word/styles.xml. Localized documents use translated
// style ids ("berschrift1") but keep the English name ("heading 1").
func parseStyles(data []byte) (styleSheet, error) {
	sheet := styleSheet{}
	dec := xml.NewDecoder(bytes.NewReader(data))

	var id string
	var cur styleInfo
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: styles: %v", ErrInvalidDocument, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "style":
				id = attr(t, "styleId")
				cur = styleInfo{}
			case "name":
				if id != "" {
					cur.name = strings.ToLower(attr(t, "val"))
				}
			case "outlineLvl":
				if id != "" {
					if n, err := strconv.Atoi(attr(t, "val")); err == nil {
						cur.outline = n + 1
					}
				}
			}
		case xml.EndElement:
			if t.Name.Local == "style" && id != "" {
				sheet[id] = cur
				id = ""
			}
		}
	}
	return sheet, nil
}

// headingLevel returns the heading level (1-3) for a paragraph style id and
// explicit outline level, or 0 for body text.
func (s styleSheet) headingLevel(styleID string, outline int) int {
	if outline > 0 {
		return clampLevel(outline)
	}

	info, known := s[styleID]
	if known && info.outline > 0 {
		return clampLevel(info.outline)
	}

	for _, name := range []string{strings.ToLower(styleID), info.name} {
		if level := levelFromName(name); level > 0 {
			return level
		}
	}
	return 0
}

// levelFromName recognizes "title", "heading1" and "heading 1" style names.
func levelFromName(name string) int {
	name = strings.ReplaceAll(name, " ", "")
	if name == "title" {
		return 1
	}
	rest, ok := strings.CutPrefix(name, "heading")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0
	}
	return clampLevel(n)
}

func clampLevel(n int) int {
	if n > 3 {
		return 3
	}
	return n
}

// attr returns the value of the attribute with the given local name.
func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

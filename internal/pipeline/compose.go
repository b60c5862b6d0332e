package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/literatipub/typeset/internal/layout"
)

// ErrTemplate indicates the manuscript template could not be parsed or
// executed.
var ErrTemplate = errors.New("manuscript template error")

// DefaultTitle is used when neither the caller nor the manuscript names
// the document.
const DefaultTitle = "Manuscript"

// manuscriptData is the template context.
type manuscriptData struct {
	Lang        string
	Title       string
	FontURL     string
	CSS         template.CSS
	FormatClass string
	Glyph       string
	Blocks      []Block
}

// Compositor turns a Document into a self-contained HTML5 page.
type Compositor struct {
	tmpl     *template.Template
	houseCSS string
	lang     string
}

// CompositorOption configures a Compositor.
type CompositorOption func(*Compositor)

// WithHouseStyle appends a stylesheet after the generated rules.
func WithHouseStyle(css string) CompositorOption {
	return func(c *Compositor) {
		c.houseCSS = css
	}
}

// WithLang sets the document language used for hyphenation.
func WithLang(lang string) CompositorOption {
	return func(c *Compositor) {
		if lang != "" {
			c.lang = lang
		}
	}
}

// NewCompositor parses the manuscript template.
func NewCompositor(tmplContent string, opts ...CompositorOption) (*Compositor, error) {
	tmpl, err := template.New("manuscript").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	c := &Compositor{tmpl: tmpl, lang: "en"}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Compose renders doc with the stylesheet derived from p.
// The output depends only on doc, p and the compositor configuration.
func (c *Compositor) Compose(doc *Document, p layout.Profile) (string, error) {
	if doc.Len() == 0 {
		return "", ErrEmptyContent
	}

	css := BuildStylesheet(p)
	if house := strings.TrimSpace(c.houseCSS); house != "" {
		css += "\n/* House style */\n" + house + "\n"
	}

	title := strings.TrimSpace(doc.Title)
	if title == "" {
		title = DefaultTitle
	}

	data := manuscriptData{
		Lang:        c.lang,
		Title:       title,
		FontURL:     p.Font.WebfontURL(),
		CSS:         template.CSS(sanitizeCSS(css)), // #nosec G203 -- generated from typed profile fields
		FormatClass: "format-" + p.Format.String(),
		Glyph:       p.SceneBreak.Glyph,
		Blocks:      doc.Blocks,
	}

	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	return buf.String(), nil
}

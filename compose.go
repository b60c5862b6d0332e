package typeset

import (
	"fmt"
	"strings"
	"sync"

	"github.com/literatipub/typeset/internal/assets"
	"github.com/literatipub/typeset/internal/layout"
	"github.com/literatipub/typeset/internal/pipeline"
)

// defaultCompositor is built once from the embedded manuscript template.
var defaultCompositor = sync.OnceValues(func() (*pipeline.Compositor, error) {
	tmpl, err := assets.Builtin().Load(assets.KindTemplate, assets.ManuscriptTemplate)
	if err != nil {
		return nil, err
	}
	return pipeline.NewCompositor(tmpl)
})

// ResolveProfile derives page and typography rules for a format and font.
// Unknown font keys fall back to DefaultFontKey. Any format other than
// FormatEbook resolves to the print profile.
func ResolveProfile(format Format, fontKey string) Profile {
	return layout.Resolve(format, fontKey)
}

// Compose renders doc into a self-contained HTML document using the
// built-in template. Identical inputs yield identical output.
func Compose(doc *Document, p Profile) (StyledDocument, error) {
	c, err := defaultCompositor()
	if err != nil {
		return StyledDocument{}, fmt.Errorf("%w: %v", ErrComposition, err)
	}
	return compose(c, doc, p)
}

// compose runs a configured compositor and maps its errors.
func compose(c *pipeline.Compositor, doc *Document, p Profile) (StyledDocument, error) {
	if doc.Len() == 0 {
		return StyledDocument{}, ErrEmptyContent
	}
	out, err := c.Compose(doc, p)
	if err != nil {
		return StyledDocument{}, fmt.Errorf("%w: %v", ErrComposition, err)
	}
	return StyledDocument{HTML: out, Title: documentTitle(doc)}, nil
}

// documentTitle returns the title the composed document carries.
func documentTitle(doc *Document) string {
	if title := strings.TrimSpace(doc.Title); title != "" {
		return title
	}
	return pipeline.DefaultTitle
}

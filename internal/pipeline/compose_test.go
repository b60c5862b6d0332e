package pipeline

import (
	"errors"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/literatipub/typeset/internal/assets"
	"github.com/literatipub/typeset/internal/layout"
)

func newTestCompositor(t *testing.T, opts ...CompositorOption) *Compositor {
	t.Helper()

	tmpl, err := assets.Builtin().Load(assets.KindTemplate, assets.ManuscriptTemplate)
	if err != nil {
		t.Fatalf("Load(template) unexpected error: %v", err)
	}
	c, err := NewCompositor(tmpl, opts...)
	if err != nil {
		t.Fatalf("NewCompositor() unexpected error: %v", err)
	}
	return c
}

func mustCompose(t *testing.T, c *Compositor, doc *Document, p layout.Profile) string {
	t.Helper()

	out, err := c.Compose(doc, p)
	if err != nil {
		t.Fatalf("Compose() unexpected error: %v", err)
	}
	return out
}

// A plain-text chapter title is a paragraph, so the following paragraph
// keeps its first-line indent.
func TestCompose_PlainTextChapter(t *testing.T) {
	t.Parallel()

	doc, err := FromText("Chapter One\n\nIt was a dark night.")
	if err != nil {
		t.Fatalf("FromText() unexpected error: %v", err)
	}
	out := mustCompose(t, newTestCompositor(t), doc, layout.Resolve(layout.FormatPrint, "garamond"))

	if !strings.Contains(out, "<p>Chapter One</p>\n<p>It was a dark night.</p>") {
		t.Errorf("Compose() body = %q", out)
	}
	if strings.Contains(out, "<h1>") {
		t.Error("Compose() produced a heading from plain text")
	}
	if !strings.Contains(out, "text-indent: 1.5em;") {
		t.Error("Compose() stylesheet missing paragraph indent")
	}
}

func TestCompose_Structure(t *testing.T) {
	t.Parallel()

	doc := &Document{
		Title: "The Book",
		Blocks: []Block{
			{Kind: KindHeading, Level: 1, Text: "One"},
			{Kind: KindParagraph, Text: "Opening."},
			{Kind: KindSceneBreak, Text: "***"},
			{Kind: KindParagraph, Text: "After."},
			{Kind: KindHeading, Level: 2, Text: "Section"},
			{Kind: KindHeading, Level: 3, Text: "Sub"},
		},
	}
	out := mustCompose(t, newTestCompositor(t), doc, layout.Resolve(layout.FormatPrint, ""))

	for _, want := range []string{
		"<!DOCTYPE html>",
		`<html lang="en">`,
		"<title>The Book</title>",
		`<body class="format-print">`,
		"<h1>One</h1>\n<p>Opening.</p>",
		"<div class=\"scene-break\" role=\"separator\">* * *</div>\n<p>After.</p>",
		"<h2>Section</h2>",
		"<h3>Sub</h3>",
		"https://fonts.googleapis.com/css2?family=Libre",
		`<link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>`,
		"</body>\n</html>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Compose() missing %q in:\n%s", want, out)
		}
	}
}

// cssRule matches one flat rule: selector list and declarations.
var cssRule = regexp.MustCompile(`([^{}]+)\{([^{}]*)\}`)

// Paragraph indent is suppressed after headings and scene breaks, and
// nowhere else.
func TestCompose_ZeroIndentOnlyAfterBreaks(t *testing.T) {
	t.Parallel()

	doc, err := FromText("Alpha.\n\n* * *\n\nBeta.\n\nGamma.")
	if err != nil {
		t.Fatalf("FromText() unexpected error: %v", err)
	}
	out := mustCompose(t, newTestCompositor(t), doc, layout.Resolve(layout.FormatPrint, "garamond"))

	start, end := strings.Index(out, "<style>"), strings.Index(out, "</style>")
	if start < 0 || end < start {
		t.Fatalf("Compose() has no style block:\n%s", out)
	}
	css := out[start+len("<style>") : end]

	var zeroed []string
	for _, m := range cssRule.FindAllStringSubmatch(css, -1) {
		if !strings.Contains(m[2], "text-indent: 0;") {
			continue
		}
		for _, sel := range strings.Split(m[1], ",") {
			sel = strings.TrimSpace(sel[strings.LastIndex(sel, "*/")+1:])
			if sel == "p" || strings.HasSuffix(sel, " p") {
				zeroed = append(zeroed, sel)
			}
		}
	}
	want := []string{"h1 + p", "h2 + p", "h3 + p", ".scene-break + p"}
	if !slices.Equal(zeroed, want) {
		t.Errorf("paragraph selectors with zero indent = %q, want %q", zeroed, want)
	}

	if strings.Contains(out, "<p style=") || strings.Contains(out, "<p class=") {
		t.Error("Compose() emitted per-paragraph indent styling")
	}
	if !strings.Contains(out, "<div class=\"scene-break\" role=\"separator\">* * *</div>\n<p>Beta.</p>\n<p>Gamma.</p>") {
		t.Errorf("Compose() scene break body = %q", out)
	}
}

func TestCompose_Idempotent(t *testing.T) {
	t.Parallel()

	doc, err := FromText("Alpha.\n\n* * *\n\nBeta.")
	if err != nil {
		t.Fatalf("FromText() unexpected error: %v", err)
	}
	c := newTestCompositor(t)
	p := layout.Resolve(layout.FormatEbook, "crimson")

	first := mustCompose(t, c, doc, p)
	second := mustCompose(t, c, doc, p)
	if first != second {
		t.Error("Compose() output differs between identical calls")
	}
}

func TestCompose_SingleParagraph(t *testing.T) {
	t.Parallel()

	doc, err := FromText("Only one line of prose.")
	if err != nil {
		t.Fatalf("FromText() unexpected error: %v", err)
	}
	out := mustCompose(t, newTestCompositor(t), doc, layout.Resolve(layout.FormatPrint, ""))

	if n := strings.Count(out, "<p>"); n != 1 {
		t.Errorf("Compose() paragraphs = %d, want 1", n)
	}
}

func TestCompose_EscapesText(t *testing.T) {
	t.Parallel()

	doc := &Document{
		Title:  "<b>Title</b>",
		Blocks: []Block{{Kind: KindParagraph, Text: "<script>alert(1)</script> & more"}},
	}
	out := mustCompose(t, newTestCompositor(t), doc, layout.Resolve(layout.FormatPrint, ""))

	if strings.Contains(out, "<script>") {
		t.Error("Compose() emitted raw script tag")
	}
	if !strings.Contains(out, "&lt;script&gt;alert(1)&lt;/script&gt; &amp; more") {
		t.Errorf("Compose() did not escape paragraph text:\n%s", out)
	}
	if !strings.Contains(out, "<title>&lt;b&gt;Title&lt;/b&gt;</title>") {
		t.Error("Compose() did not escape title")
	}
}

func TestCompose_Spans(t *testing.T) {
	t.Parallel()

	doc := &Document{Blocks: []Block{{
		Kind: KindParagraph,
		Text: "a b c",
		Spans: []Span{
			{Text: "a "},
			{Text: "b", Emphasis: true},
			{Text: " c", Strong: true},
		},
	}}}
	out := mustCompose(t, newTestCompositor(t), doc, layout.Resolve(layout.FormatPrint, ""))

	if !strings.Contains(out, "<p>a <em>b</em><strong> c</strong></p>") {
		t.Errorf("Compose() spans rendered incorrectly:\n%s", out)
	}
}

func TestCompose_DefaultTitle(t *testing.T) {
	t.Parallel()

	doc := &Document{Blocks: []Block{{Kind: KindParagraph, Text: "x"}}}
	out := mustCompose(t, newTestCompositor(t), doc, layout.Resolve(layout.FormatPrint, ""))

	if !strings.Contains(out, "<title>"+DefaultTitle+"</title>") {
		t.Errorf("Compose() missing default title")
	}
}

func TestCompose_HouseStyle(t *testing.T) {
	t.Parallel()

	c := newTestCompositor(t, WithHouseStyle("h1 { color: navy; }</style><script>"), WithLang("fr"))
	doc := &Document{Blocks: []Block{{Kind: KindParagraph, Text: "x"}}}
	out := mustCompose(t, c, doc, layout.Resolve(layout.FormatPrint, ""))

	generated := strings.Index(out, "/* Scene breaks */")
	house := strings.Index(out, "h1 { color: navy; }")
	if generated < 0 || house < 0 || house < generated {
		t.Errorf("house style not appended after generated rules (generated=%d house=%d)", generated, house)
	}
	if strings.Contains(out, "</style><script>") {
		t.Error("house style broke out of the style block")
	}
	if !strings.Contains(out, `<html lang="fr">`) {
		t.Error("WithLang not applied")
	}
}

func TestCompose_Empty(t *testing.T) {
	t.Parallel()

	c := newTestCompositor(t)
	p := layout.Resolve(layout.FormatPrint, "")

	for _, doc := range []*Document{nil, {}} {
		if _, err := c.Compose(doc, p); !errors.Is(err, ErrEmptyContent) {
			t.Errorf("Compose(%v) error = %v, want ErrEmptyContent", doc, err)
		}
	}
}

func TestNewCompositor_InvalidTemplate(t *testing.T) {
	t.Parallel()

	_, err := NewCompositor("{{.Broken")
	if !errors.Is(err, ErrTemplate) {
		t.Errorf("NewCompositor() error = %v, want ErrTemplate", err)
	}
}

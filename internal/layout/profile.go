package layout

// TextAlign is a CSS text-align keyword.
type TextAlign string

// Alignments used by the profiles.
const (
	AlignLeft    TextAlign = "left"
	AlignCenter  TextAlign = "center"
	AlignJustify TextAlign = "justify"
)

// headingSinkRatio is the fraction of the page height a print chapter
// heading drops before its text starts.
const headingSinkRatio = 0.30

// PageSize is the trimmed page.
type PageSize struct {
	Width  Length
	Height Length
}

// Margins are applied by the render engine, not by CSS.
type Margins struct {
	Top    Length
	Right  Length
	Bottom Length
	Left   Length
}

// BodyStyle controls running text.
type BodyStyle struct {
	Size       Length
	LineHeight float64
	Align      TextAlign
	Hyphenate  bool
}

// HeadingStyle controls chapter and section headings.
type HeadingStyle struct {
	BreakBefore bool    // start every chapter on a new page
	Sink        Length  // space above the heading text
	SizeEm      float64 // chapter heading size relative to body
	Align       TextAlign
}

// ParagraphStyle controls paragraph separation. Exactly one of Indent and
// SpaceAfter is non-zero in the built-in profiles.
type ParagraphStyle struct {
	Indent     Length
	SpaceAfter Length
}

// SceneBreakStyle controls the rendering of scene separators.
type SceneBreakStyle struct {
	Glyph         string
	LetterSpacing Length
	Space         Length // vertical space above and below
}

// FooterStyle controls the page-number footer.
type FooterStyle struct {
	Size Length
}

// Profile is the complete page and typography rule set for one request.
// Profiles are comparable with ==.
type Profile struct {
	Format     Format
	Font       FontFace
	Page       PageSize
	Margins    Margins
	Body       BodyStyle
	Heading    HeadingStyle
	Paragraph  ParagraphStyle
	SceneBreak SceneBreakStyle
	Footer     FooterStyle
	Orphans    int
	Widows     int
	DropCap    bool
}

// Resolve builds the profile for a format and font key.
// It never fails: unknown font keys use DefaultFontKey, and any format
// other than FormatEbook gets the print profile.
func Resolve(format Format, fontKey string) Profile {
	font := ResolveFont(fontKey)
	if format == FormatEbook {
		return ebookProfile(font)
	}
	return printProfile(font)
}

// printProfile is a 6x9 trade paperback interior.
func printProfile(font FontFace) Profile {
	page := PageSize{Width: In(6), Height: In(9)}
	return Profile{
		Format: FormatPrint,
		Font:   font,
		Page:   page,
		Margins: Margins{
			Top: In(0.75), Right: In(0.75), Bottom: In(0.75), Left: In(0.75),
		},
		Body: BodyStyle{
			Size:       Pt(10.5),
			LineHeight: 1.5,
			Align:      AlignJustify,
			Hyphenate:  true,
		},
		Heading: HeadingStyle{
			BreakBefore: true,
			Sink:        page.Height.Scale(headingSinkRatio),
			SizeEm:      1.6,
			Align:       AlignCenter,
		},
		Paragraph: ParagraphStyle{Indent: EmOf(1.5)},
		SceneBreak: SceneBreakStyle{
			Glyph:         "* * *",
			LetterSpacing: EmOf(0.5),
			Space:         EmOf(1),
		},
		Footer:  FooterStyle{Size: Pt(8)},
		Orphans: 2,
		Widows:  2,
		DropCap: true,
	}
}

// ebookProfile is an A5 page for screen reading.
func ebookProfile(font FontFace) Profile {
	return Profile{
		Format: FormatEbook,
		Font:   font,
		Page:   PageSize{Width: MM(148), Height: MM(210)},
		Margins: Margins{
			Top: MM(20), Right: MM(15), Bottom: MM(20), Left: MM(15),
		},
		Body: BodyStyle{
			Size:       Pt(11),
			LineHeight: 1.7,
			Align:      AlignLeft,
		},
		Heading: HeadingStyle{
			BreakBefore: true,
			Sink:        EmOf(2),
			SizeEm:      1.5,
			Align:       AlignLeft,
		},
		Paragraph: ParagraphStyle{SpaceAfter: EmOf(0.8)},
		SceneBreak: SceneBreakStyle{
			Glyph:         "* * *",
			LetterSpacing: EmOf(0.5),
			Space:         EmOf(1.2),
		},
		Footer:  FooterStyle{Size: Pt(8)},
		Orphans: 2,
		Widows:  2,
	}
}

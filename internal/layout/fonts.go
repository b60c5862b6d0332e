package layout

// DefaultFontKey is used when a requested font key is not in the catalog.
const DefaultFontKey = "baskerville"

// webfontBaseURL serves the CSS for every catalog font.
const webfontBaseURL = "https://fonts.googleapis.com/css2?family="

// PreviewStyle describes how a font sample is shown in font pickers.
type PreviewStyle struct {
	FontFamily string `json:"fontFamily"`
	FontSize   string `json:"fontSize"`
}

// FontFace is one entry of the font catalog.
type FontFace struct {
	Key          string       `json:"key"`
	Name         string       `json:"name"`
	Stack        string       `json:"stack"`
	WebfontQuery string       `json:"webfontQuery"`
	Preview      PreviewStyle `json:"preview"`
}

// WebfontURL returns the stylesheet URL the render engine fetches before
// printing.
func (f FontFace) WebfontURL() string {
	return webfontBaseURL + f.WebfontQuery + "&display=swap"
}

// fontOrder fixes the listing order of the catalog.
var fontOrder = []string{"garamond", "baskerville", "caslon", "merriweather", "lora", "crimson"}

// catalog is never mutated after initialization; accessors return copies.
var catalog = map[string]FontFace{
	"garamond": {
		Key:          "garamond",
		Name:         "EB Garamond",
		Stack:        `'EB Garamond', Garamond, 'Times New Roman', serif`,
		WebfontQuery: "EB+Garamond:ital,wght@0,400;0,600;1,400",
		Preview:      PreviewStyle{FontFamily: `'EB Garamond', serif`, FontSize: "1.1rem"},
	},
	"baskerville": {
		Key:          "baskerville",
		Name:         "Libre Baskerville",
		Stack:        `'Libre Baskerville', Baskerville, Georgia, serif`,
		WebfontQuery: "Libre+Baskerville:ital,wght@0,400;0,700;1,400",
		Preview:      PreviewStyle{FontFamily: `'Libre Baskerville', serif`, FontSize: "1rem"},
	},
	"caslon": {
		Key:          "caslon",
		Name:         "Libre Caslon Text",
		Stack:        `'Libre Caslon Text', 'Big Caslon', Georgia, serif`,
		WebfontQuery: "Libre+Caslon+Text:ital,wght@0,400;0,700;1,400",
		Preview:      PreviewStyle{FontFamily: `'Libre Caslon Text', serif`, FontSize: "1rem"},
	},
	"merriweather": {
		Key:          "merriweather",
		Name:         "Merriweather",
		Stack:        `Merriweather, Georgia, serif`,
		WebfontQuery: "Merriweather:ital,wght@0,400;0,700;1,400",
		Preview:      PreviewStyle{FontFamily: `Merriweather, serif`, FontSize: "0.95rem"},
	},
	"lora": {
		Key:          "lora",
		Name:         "Lora",
		Stack:        `Lora, Georgia, serif`,
		WebfontQuery: "Lora:ital,wght@0,400;0,600;1,400",
		Preview:      PreviewStyle{FontFamily: `Lora, serif`, FontSize: "1rem"},
	},
	"crimson": {
		Key:          "crimson",
		Name:         "Crimson Text",
		Stack:        `'Crimson Text', 'Times New Roman', serif`,
		WebfontQuery: "Crimson+Text:ital,wght@0,400;0,600;1,400",
		Preview:      PreviewStyle{FontFamily: `'Crimson Text', serif`, FontSize: "1.1rem"},
	},
}

// LookupFont returns the catalog entry for key and whether it exists.
func LookupFont(key string) (FontFace, bool) {
	f, ok := catalog[key]
	return f, ok
}

// ResolveFont returns the catalog entry for key, falling back to
// DefaultFontKey for unknown keys.
func ResolveFont(key string) FontFace {
	if f, ok := LookupFont(key); ok {
		return f
	}
	return catalog[DefaultFontKey]
}

// Fonts lists the catalog in display order.
func Fonts() []FontFace {
	fonts := make([]FontFace, 0, len(fontOrder))
	for _, key := range fontOrder {
		fonts = append(fonts, catalog[key])
	}
	return fonts
}

package typeset

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/literatipub/typeset/internal/layout"
	"github.com/literatipub/typeset/internal/pipeline"
)

// Re-exported domain types so callers need only this package.
type (
	Document = pipeline.Document
	Block    = pipeline.Block
	Span     = pipeline.Span
	Profile  = layout.Profile
	Format   = layout.Format
	FontFace = layout.FontFace
)

// Output formats.
const (
	FormatPrint = layout.FormatPrint
	FormatEbook = layout.FormatEbook
)

// Block kinds.
const (
	KindParagraph  = pipeline.KindParagraph
	KindHeading    = pipeline.KindHeading
	KindSceneBreak = pipeline.KindSceneBreak
)

// DefaultFontKey is the catalog key used for unknown fonts.
const DefaultFontKey = layout.DefaultFontKey

// ParseFormat converts "print" or "ebook" (any case) into a Format.
func ParseFormat(s string) (Format, error) {
	return layout.ParseFormat(s)
}

// Fonts returns the font catalog in display order.
func Fonts() []FontFace {
	return layout.Fonts()
}

// SourceKind identifies how manuscript bytes are encoded.
type SourceKind int

// Supported source kinds. The zero value is not valid.
const (
	SourceText SourceKind = iota + 1
	SourceHTML
	SourceDOCX
	SourceMarkdown
)

// String returns the canonical name.
func (k SourceKind) String() string {
	switch k {
	case SourceText:
		return "text"
	case SourceHTML:
		return "html"
	case SourceDOCX:
		return "docx"
	case SourceMarkdown:
		return "markdown"
	}
	return "unknown"
}

// ParseSourceKind accepts canonical names and common aliases.
func ParseSourceKind(s string) (SourceKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "txt", "plain":
		return SourceText, nil
	case "html", "htm":
		return SourceHTML, nil
	case "docx":
		return SourceDOCX, nil
	case "markdown", "md":
		return SourceMarkdown, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedSource, s)
}

// MarshalText implements encoding.TextMarshaler.
func (k SourceKind) MarshalText() ([]byte, error) {
	if k < SourceText || k > SourceMarkdown {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSource, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *SourceKind) UnmarshalText(text []byte) error {
	parsed, err := ParseSourceKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// sourceExtensions maps file extensions to source kinds.
var sourceExtensions = map[string]SourceKind{
	".txt":      SourceText,
	".text":     SourceText,
	".html":     SourceHTML,
	".htm":      SourceHTML,
	".docx":     SourceDOCX,
	".md":       SourceMarkdown,
	".markdown": SourceMarkdown,
}

// SourceKindFromPath infers the source kind from a file extension.
func SourceKindFromPath(path string) (SourceKind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if kind, ok := sourceExtensions[ext]; ok {
		return kind, nil
	}
	return 0, fmt.Errorf("%w: extension %q", ErrUnsupportedSource, ext)
}

// SupportedExtensions lists accepted manuscript file extensions.
func SupportedExtensions() []string {
	return []string{".txt", ".text", ".md", ".markdown", ".html", ".htm", ".docx"}
}

// StyledDocument is a composed, self-contained HTML5 document.
type StyledDocument struct {
	HTML  string
	Title string
}

// Input contains the data for a single typesetting request.
type Input struct {
	Content  []byte     // Required: manuscript bytes
	Source   SourceKind // Required: how Content is encoded
	Format   Format     // Optional: defaults to FormatPrint
	Font     string     // Optional: catalog key, unknown keys use DefaultFontKey
	Title    string     // Optional: overrides the title found in the manuscript
	HTMLOnly bool       // Optional: compose only, skip the browser

	// Observer, if set, sees this request's stages in addition to the
	// Typesetter-wide observer.
	Observer StageObserver
}

// Result contains the outputs of a typesetting request.
type Result struct {
	HTML    []byte  // Composed HTML document
	PDF     []byte  // PDF bytes (nil when HTMLOnly)
	Profile Profile // Profile used for layout
	Title   string  // Document title
	Blocks  int     // Number of normalized blocks
}

// Stage is a step of the typesetting pipeline.
type Stage int

// Pipeline stages in order. StageFailed is reachable from any intermediate
// stage.
const (
	StageRequested Stage = iota
	StageNormalizing
	StageComposing
	StageRendering
	StageCompleted
	StageFailed
)

// String returns the stage name used in logs and job events.
func (s Stage) String() string {
	switch s {
	case StageRequested:
		return "requested"
	case StageNormalizing:
		return "normalizing"
	case StageComposing:
		return "composing"
	case StageRendering:
		return "rendering"
	case StageCompleted:
		return "completed"
	case StageFailed:
		return "failed"
	}
	return "unknown"
}

// StageObserver is notified synchronously as a request changes stage.
type StageObserver func(Stage)

// Option configures a Typesetter.
type Option func(*Typesetter)

// typesetterConfig holds internal configuration for Typesetter.
type typesetterConfig struct {
	timeout   time.Duration
	assetPath string
	style     string
	lang      string
}

// DefaultTimeout is the render deadline when WithTimeout is not set.
const DefaultTimeout = 60 * time.Second

// WithTimeout sets the render deadline. An earlier context deadline wins.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("typeset: WithTimeout duration must be positive")
	}
	return func(t *Typesetter) {
		t.cfg.timeout = d
	}
}

// WithEngine sets the render engine. Defaults to a go-rod engine.
func WithEngine(e Engine) Option {
	return func(t *Typesetter) {
		t.engine = e
	}
}

// WithLogger sets the structured logger. Defaults to discarding logs.
func WithLogger(l *slog.Logger) Option {
	return func(t *Typesetter) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithStageObserver registers a callback for stage transitions.
func WithStageObserver(fn StageObserver) Option {
	return func(t *Typesetter) {
		t.observer = fn
	}
}

// WithAssetPath sets a directory whose templates/ and styles/ override the
// built-in assets.
func WithAssetPath(path string) Option {
	return func(t *Typesetter) {
		t.cfg.assetPath = path
	}
}

// WithStyle appends a house style after the generated rules.
// Accepts a style name ("classic") or a path to a CSS file.
func WithStyle(nameOrPath string) Option {
	return func(t *Typesetter) {
		t.cfg.style = nameOrPath
	}
}

// WithLang sets the document language used for hyphenation.
func WithLang(lang string) Option {
	return func(t *Typesetter) {
		t.cfg.lang = lang
	}
}

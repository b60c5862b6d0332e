package typeset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/literatipub/typeset/internal/assets"
	"github.com/literatipub/typeset/internal/docx"
	"github.com/literatipub/typeset/internal/fileutil"
	"github.com/literatipub/typeset/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownConverter = (*pipeline.GoldmarkConverter)(nil)
)

// Typesetter chains Normalize, ResolveProfile, Compose and Render.
// Create with NewTypesetter. A Typesetter holds no per-request state and is
// safe for concurrent use; each Typeset call launches its own engine.
type Typesetter struct {
	cfg        typesetterConfig
	engine     Engine
	logger     *slog.Logger
	observer   StageObserver
	assets     *assets.Overlay
	compositor *pipeline.Compositor
	markdown   pipeline.MarkdownConverter
	docx       *docx.Converter
}

// NewTypesetter creates a Typesetter with default configuration.
// Returns an error if the asset path, house style or template is invalid.
func NewTypesetter(opts ...Option) (*Typesetter, error) {
	t := &Typesetter{
		cfg:      typesetterConfig{timeout: DefaultTimeout},
		logger:   slog.New(slog.DiscardHandler),
		markdown: pipeline.NewGoldmarkConverter(),
		docx:     docx.NewConverter(),
	}

	for _, opt := range opts {
		opt(t)
	}

	overlay, err := assets.NewOverlay(t.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}
	t.assets = overlay
	if overlay.HasOverrides() {
		t.logger.Debug("press assets layered", "search", overlay.Origins())
	}

	houseCSS, err := t.resolveStyle()
	if err != nil {
		return nil, err
	}

	tmpl, err := t.assets.Load(assets.KindTemplate, assets.ManuscriptTemplate)
	if err != nil {
		return nil, fmt.Errorf("loading manuscript template: %w", err)
	}
	t.compositor, err = pipeline.NewCompositor(tmpl,
		pipeline.WithHouseStyle(houseCSS),
		pipeline.WithLang(t.cfg.lang),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrComposition, err)
	}

	// Create the engine if not injected (e.g., by tests)
	if t.engine == nil {
		t.engine = NewRodEngine(WithEngineLogger(t.logger))
	}

	return t, nil
}

// resolveStyle loads the house style from a file path or by name.
func (t *Typesetter) resolveStyle() (string, error) {
	input := t.cfg.style
	if input == "" {
		return "", nil
	}

	// File path? (contains / or \)
	if fileutil.IsFilePath(input) {
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return "", fmt.Errorf("loading style file %q: %w", input, err)
		}
		return string(content), nil
	}

	css, err := t.assets.Load(assets.KindStyle, input)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrStyleNotFound, input, err)
	}
	return css, nil
}

// Typeset runs the full pipeline and returns the composed HTML and the PDF.
// If input.HTMLOnly is true, the browser is never launched.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (t *Typesetter) Typeset(ctx context.Context, input Input) (result *Result, err error) {
	stage := StageRequested
	start := time.Now()
	t.enter(input, stage)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
		if err != nil {
			t.logger.Warn("typeset failed",
				"stage", stage.String(),
				"source", input.Source.String(),
				"error", err,
			)
			result = nil
			t.enter(input, StageFailed)
		}
	}()

	format, err := validateInput(input)
	if err != nil {
		return nil, err
	}

	stage = StageNormalizing
	t.enter(input, stage)
	doc, err := normalize(ctx, input.Content, input.Source, t.markdown, t.docx)
	if err != nil {
		return nil, err
	}
	if title := strings.TrimSpace(input.Title); title != "" {
		doc.Title = title
	}
	t.logger.Debug("manuscript normalized",
		"source", input.Source.String(),
		"blocks", doc.Len(),
		"headings", doc.Count(KindHeading),
		"scene_breaks", doc.Count(KindSceneBreak),
	)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stage = StageComposing
	t.enter(input, stage)
	profile := ResolveProfile(format, input.Font)
	styled, err := compose(t.compositor, doc, profile)
	if err != nil {
		return nil, err
	}

	result = &Result{
		HTML:    []byte(styled.HTML),
		Profile: profile,
		Title:   styled.Title,
		Blocks:  doc.Len(),
	}

	if !input.HTMLOnly {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stage = StageRendering
		t.enter(input, stage)
		result.PDF, err = render(ctx, t.engine, styled, profile, t.cfg.timeout)
		if err != nil {
			return nil, err
		}
	}

	stage = StageCompleted
	t.enter(input, stage)
	t.logger.Info("typeset completed",
		"format", profile.Format.String(),
		"font", profile.Font.Key,
		"blocks", result.Blocks,
		"pdf_bytes", len(result.PDF),
		"duration", time.Since(start),
	)
	return result, nil
}

// enter notifies the stage observers.
func (t *Typesetter) enter(input Input, s Stage) {
	if t.observer != nil {
		t.observer(s)
	}
	if input.Observer != nil {
		input.Observer(s)
	}
}

// validateInput checks the request before any work starts and returns the
// effective format.
//
// This is a TRUST BOUNDARY for direct library users who build Input manually.
// CLI and API users have their input validated earlier, but both paths
// converge here.
func validateInput(input Input) (Format, error) {
	if len(input.Content) == 0 {
		return 0, ErrEmptyContent
	}
	if input.Source < SourceText || input.Source > SourceMarkdown {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedSource, int(input.Source))
	}
	format := input.Format
	if format == 0 {
		format = FormatPrint
	}
	if !format.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownFormat, int(format))
	}
	return format, nil
}

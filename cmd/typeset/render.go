package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/literatipub/typeset"
	"github.com/literatipub/typeset/internal/assets"
	"github.com/literatipub/typeset/internal/config"
	"github.com/literatipub/typeset/internal/fileutil"
	"github.com/literatipub/typeset/internal/hints"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// renderParams are the effective settings after config < env < flags.
type renderParams struct {
	format    typeset.Format
	font      string
	title     string
	timeout   time.Duration
	workers   int
	style     string
	assetPath string
	lang      string
	output    string
	html      bool
	htmlOnly  bool
}

// renderResult holds the outcome of a single manuscript.
type renderResult struct {
	InputPath  string
	OutputPath string
	Err        error
	Duration   time.Duration
}

func newRenderCmd(a *app) *cobra.Command {
	f := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render <manuscript|directory>...",
		Short: "Typeset manuscripts into PDF interiors",
		Long: `Render typesets each manuscript into a PDF next to it, or under --output.

The source kind comes from the file extension: .txt, .md/.markdown,
.html/.htm or .docx. Directories are searched recursively.`,
		Example: `  # 6x9 paperback interior in EB Garamond
  typeset render novel.docx --font garamond

  # A5 ebook layout, every manuscript in drafts/ into out/
  typeset render drafts/ --format ebook -o out/

  # Inspect the composed HTML without launching Chrome
  typeset render chapter1.md --html-only`,
		Args: requireArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRender(cmd.Context(), cmd.Flags(), f, args)
		},
	}

	addRenderFlags(cmd.Flags(), f)
	return cmd
}

// resolveRenderParams layers changed flags over the configuration.
func resolveRenderParams(fs *flag.FlagSet, f *renderFlags, cfg *config.Config) (renderParams, error) {
	p := renderParams{
		format:    cfg.DefaultFormat(),
		font:      cfg.Defaults.Font,
		timeout:   cfg.RenderTimeout(),
		workers:   cfg.Render.Workers,
		style:     cfg.Assets.Style,
		assetPath: cfg.Assets.BasePath,
		title:     f.title,
		lang:      f.lang,
		output:    f.output,
		html:      f.html,
		htmlOnly:  f.htmlOnly,
	}
	if p.timeout == 0 {
		p.timeout = typeset.DefaultTimeout
	}

	if fs.Changed("format") {
		format, err := typeset.ParseFormat(f.format)
		if err != nil {
			return renderParams{}, fmt.Errorf("%w%s", err, hints.ForFormat())
		}
		p.format = format
	}
	if fs.Changed("font") {
		p.font = f.font
	}
	if fs.Changed("timeout") {
		d, err := time.ParseDuration(f.timeout)
		if err != nil || d <= 0 {
			return renderParams{}, fmt.Errorf("%w: --timeout must be a positive duration, got %q", ErrUsage, f.timeout)
		}
		p.timeout = d
	}
	if fs.Changed("workers") {
		if f.workers < 0 || f.workers > typeset.MaxPoolSize {
			return renderParams{}, fmt.Errorf("%w: --workers must be 0-%d, got %d", ErrUsage, typeset.MaxPoolSize, f.workers)
		}
		p.workers = f.workers
	}
	if fs.Changed("style") {
		p.style = f.style
	}
	if fs.Changed("asset-path") {
		p.assetPath = f.assetPath
	}
	if p.html && p.htmlOnly {
		return renderParams{}, fmt.Errorf("%w: --html and --html-only are mutually exclusive", ErrUsage)
	}
	return p, nil
}

// runRender renders every discovered manuscript and reports the results.
func (a *app) runRender(ctx context.Context, fs *flag.FlagSet, f *renderFlags, args []string) error {
	p, err := resolveRenderParams(fs, f, a.cfg)
	if err != nil {
		return err
	}

	files, err := discoverManuscripts(args, p.output)
	if err != nil {
		return withHints(err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no manuscripts found in %v%s", ErrNoInput, args,
			hints.ForUnsupportedSource(typeset.SupportedExtensions()))
	}

	if resolved := typeset.ResolveProfile(p.format, p.font).Font.Key; p.font != "" && resolved != p.font {
		a.logger.Warn("unknown font, using default", "font", p.font, "default", resolved)
	}

	ts, err := a.newTypesetter(p)
	if err != nil {
		return withHints(err)
	}

	pool := typeset.NewPool(typeset.ResolvePoolSize(p.workers))
	defer pool.Close()
	a.logger.Debug("rendering", "manuscripts", len(files), "workers", pool.Size(), "format", p.format, "timeout", p.timeout)

	results := renderBatch(ctx, ts, pool, files, p)
	return a.report(results)
}

// newTypesetter builds a Typesetter from the effective parameters.
func (a *app) newTypesetter(p renderParams) (*typeset.Typesetter, error) {
	opts := []typeset.Option{
		typeset.WithTimeout(p.timeout),
		typeset.WithLogger(a.logger),
	}
	if p.assetPath != "" {
		opts = append(opts, typeset.WithAssetPath(p.assetPath))
	}
	if p.style != "" {
		opts = append(opts, typeset.WithStyle(p.style))
	}
	if p.lang != "" {
		opts = append(opts, typeset.WithLang(p.lang))
	}
	opts = append(opts, typeset.WithEngine(a.engine()))

	ts, err := typeset.NewTypesetter(opts...)
	if errors.Is(err, typeset.ErrStyleNotFound) {
		return nil, fmt.Errorf("%w%s", err, styleHint(p.assetPath))
	}
	return ts, err
}

// styleHint lists the house styles visible with the given asset directory.
func styleHint(assetPath string) string {
	overlay, err := assets.NewOverlay(assetPath)
	if err != nil {
		return hints.ForStyleNotFound(assets.Styles())
	}
	return hints.ForStyleNotFound(overlay.Names(assets.KindStyle))
}

// engine returns the injected engine or a go-rod engine from config.
func (a *app) engine() typeset.Engine {
	if a.env.Engine != nil {
		return a.env.Engine
	}
	return typeset.NewRodEngine(
		typeset.WithBrowserBin(a.cfg.Render.BrowserBin),
		typeset.WithNoSandbox(a.cfg.Render.NoSandbox),
		typeset.WithEngineLogger(a.logger),
	)
}

// renderBatch processes files concurrently, bounded by pool.
func renderBatch(ctx context.Context, ts *typeset.Typesetter, pool *typeset.Pool, files []manuscriptFile, p renderParams) []renderResult {
	results := make([]renderResult, len(files))
	var wg sync.WaitGroup

	for i, file := range files {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := pool.Acquire(ctx); err != nil {
				results[i] = renderResult{InputPath: file.InputPath, Err: err}
				return
			}
			defer pool.Release()

			results[i] = renderFile(ctx, ts, file, p)
		}()
	}

	wg.Wait()
	return results
}

// renderFile typesets a single manuscript and writes its outputs.
func renderFile(ctx context.Context, ts *typeset.Typesetter, f manuscriptFile, p renderParams) renderResult {
	start := time.Now()
	result := renderResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}
	finish := func(err error) renderResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return finish(fmt.Errorf("%w: %v", ErrReadManuscript, err))
	}

	out, err := ts.Typeset(ctx, typeset.Input{
		Content:  content,
		Source:   f.Source,
		Format:   p.format,
		Font:     p.font,
		Title:    p.title,
		HTMLOnly: p.htmlOnly,
	})
	if err != nil {
		return finish(withHints(err))
	}

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		return finish(fmt.Errorf("%w: creating output directory: %v%s", ErrWriteOutput, err, hints.ForOutputDirectory()))
	}

	if p.html || p.htmlOnly {
		path := htmlPath(f.OutputPath)
		if err := fileutil.WriteFileAtomic(path, out.HTML, filePermissions); err != nil {
			return finish(fmt.Errorf("%w: %v", ErrWriteOutput, err))
		}
		if p.htmlOnly {
			result.OutputPath = path
			return finish(nil)
		}
	}

	if err := fileutil.WriteFileAtomic(f.OutputPath, out.PDF, filePermissions); err != nil {
		return finish(fmt.Errorf("%w: %v", ErrWriteOutput, err))
	}
	return finish(nil)
}

// report prints results and returns the first failure, if any.
func (a *app) report(results []renderResult) error {
	var failed int
	var firstErr error

	for _, r := range results {
		if r.Err != nil {
			failed++
			if firstErr == nil {
				firstErr = r.Err
			}
			fmt.Fprintf(a.env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		if a.flags.quiet {
			continue
		}
		if a.flags.verbose {
			fmt.Fprintf(a.env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(a.env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !a.flags.quiet && len(results) > 1 {
		fmt.Fprintf(a.env.Stdout, "\n%d succeeded, %d failed\n", len(results)-failed, failed)
	}

	if failed == 0 {
		return nil
	}
	if len(results) == 1 {
		return firstErr
	}
	return fmt.Errorf("%d of %d manuscripts failed: %w", failed, len(results), firstErr)
}

// withHints appends an actionable hint for known failures.
func withHints(err error) error {
	var hint string
	switch {
	case errors.Is(err, typeset.ErrBrowserConnect):
		hint = hints.ForBrowserConnect()
	case errors.Is(err, typeset.ErrRenderTimeout):
		hint = hints.ForTimeout()
	case errors.Is(err, typeset.ErrEmptyContent):
		hint = hints.ForEmptyManuscript()
	case errors.Is(err, typeset.ErrUnsupportedSource):
		hint = hints.ForUnsupportedSource(typeset.SupportedExtensions())
	}
	if hint == "" {
		return err
	}
	return fmt.Errorf("%w%s", err, hint)
}

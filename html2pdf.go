package typeset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/net/html"

	"github.com/literatipub/typeset/internal/fileutil"
	"github.com/literatipub/typeset/internal/process"
)

// EngineHandle is an opaque browser instance issued by Engine.Launch.
// Only the engine that issued a handle can interpret it.
type EngineHandle any

// Engine abstracts the headless browser so the pipeline can be tested
// without Chrome.
type Engine interface {
	// Launch starts a fresh browser instance.
	Launch(ctx context.Context) (EngineHandle, error)
	// Paginate loads doc in the browser and prints it with the profile's
	// page geometry.
	Paginate(ctx context.Context, h EngineHandle, doc StyledDocument, p Profile) ([]byte, error)
	// Release terminates the instance. Called exactly once per handle.
	Release(h EngineHandle) error
}

// pageSession abstracts one browser tab to enable testing the wait order
// without a browser.
type pageSession interface {
	Navigate(url string) error
	WaitLoad() error
	WaitNetworkIdle() error
	WaitFonts() error
	PrintPDF(opts *proto.PagePrintToPDF) ([]byte, error)
}

// Compile-time interface checks
var (
	_ Engine      = (*RodEngine)(nil)
	_ pageSession = (*rodSession)(nil)
)

// defaultNetworkIdle is how long the page must issue no requests before it
// counts as idle.
const defaultNetworkIdle = 500 * time.Millisecond

// fontsReadyScript resolves once every webfont used by the page is loaded.
const fontsReadyScript = `() => document.fonts.ready.then(() => true)`

// RodEngine implements Engine using go-rod.
// Rod automatically downloads Chromium on first run if no binary is set.
type RodEngine struct {
	browserBin  string
	noSandbox   bool
	networkIdle time.Duration
	logger      *slog.Logger
}

// RodOption configures a RodEngine.
type RodOption func(*RodEngine)

// WithBrowserBin uses a pre-installed Chrome instead of the managed download.
func WithBrowserBin(path string) RodOption {
	return func(e *RodEngine) {
		e.browserBin = path
	}
}

// WithNoSandbox disables the Chrome sandbox (required in most containers).
func WithNoSandbox(disable bool) RodOption {
	return func(e *RodEngine) {
		e.noSandbox = disable
	}
}

// WithNetworkIdle sets the quiet period that counts as network idle.
// Panics if d <= 0.
func WithNetworkIdle(d time.Duration) RodOption {
	if d <= 0 {
		panic("typeset: WithNetworkIdle duration must be positive")
	}
	return func(e *RodEngine) {
		e.networkIdle = d
	}
}

// WithEngineLogger sets the logger for browser lifecycle events.
func WithEngineLogger(l *slog.Logger) RodOption {
	return func(e *RodEngine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewRodEngine creates a RodEngine.
func NewRodEngine(opts ...RodOption) *RodEngine {
	e := &RodEngine{
		networkIdle: defaultNetworkIdle,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// rodHandle is the EngineHandle issued by RodEngine.
type rodHandle struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// Launch starts a dedicated Chrome process and connects to it.
func (e *RodEngine) Launch(ctx context.Context) (EngineHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := launcher.New().Context(ctx)
	if e.browserBin != "" {
		l = l.Bin(e.browserBin)
	}
	if e.noSandbox {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		e.kill(l)
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	e.logger.Debug("browser launched", "pid", l.PID())
	return &rodHandle{launcher: l, browser: browser}, nil
}

// Release closes the browser and kills its process group.
func (e *RodEngine) Release(h EngineHandle) error {
	rh, ok := h.(*rodHandle)
	if !ok || rh == nil {
		return ErrInvalidHandle
	}

	var closeErr error
	if rh.browser != nil {
		closeErr = rh.browser.Close()
	}
	e.kill(rh.launcher)
	e.logger.Debug("browser released", "pid", rh.launcher.PID())

	if closeErr != nil {
		return fmt.Errorf("closing browser: %w", closeErr)
	}
	return nil
}

// kill terminates Chrome and every helper process it spawned.
func (e *RodEngine) kill(l *launcher.Launcher) {
	pid := l.PID()
	l.Kill()
	process.KillProcessGroup(pid)
	l.Cleanup()
}

// Paginate writes doc to a temp file, opens it in a blank tab and prints it.
func (e *RodEngine) Paginate(ctx context.Context, h EngineHandle, doc StyledDocument, p Profile) ([]byte, error) {
	rh, ok := h.(*rodHandle)
	if !ok || rh == nil {
		return nil, ErrInvalidHandle
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(doc.HTML, "html")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	defer cleanup()

	page, err := rh.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, deadlineOr(ctx, ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	session := &rodSession{page: page.Context(ctx), idle: e.networkIdle}
	return paginate(ctx, session, "file://"+tmpPath, p)
}

// paginate drives a tab through load, network idle and font readiness
// before printing. Printing never starts before fonts are ready.
func paginate(ctx context.Context, s pageSession, url string, p Profile) ([]byte, error) {
	if err := s.Navigate(url); err != nil {
		return nil, deadlineOr(ctx, ErrPageLoad, err)
	}
	if err := s.WaitLoad(); err != nil {
		return nil, deadlineOr(ctx, ErrPageLoad, err)
	}
	if err := s.WaitNetworkIdle(); err != nil {
		return nil, deadlineOr(ctx, ErrPageLoad, err)
	}
	if err := s.WaitFonts(); err != nil {
		return nil, deadlineOr(ctx, ErrPageLoad, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, contextError(err)
	}

	pdf, err := s.PrintPDF(buildPDFOptions(p))
	if err != nil {
		return nil, deadlineOr(ctx, ErrPDFGeneration, err)
	}
	return pdf, nil
}

// buildPDFOptions derives print parameters from the profile alone.
func buildPDFOptions(p Profile) *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:          floatPtr(p.Page.Width.Inches()),
		PaperHeight:         floatPtr(p.Page.Height.Inches()),
		MarginTop:           floatPtr(p.Margins.Top.Inches()),
		MarginRight:         floatPtr(p.Margins.Right.Inches()),
		MarginBottom:        floatPtr(p.Margins.Bottom.Inches()),
		MarginLeft:          floatPtr(p.Margins.Left.Inches()),
		PrintBackground:     true,
		DisplayHeaderFooter: true,
		HeaderTemplate:      "<span></span>", // Empty header
		FooterTemplate:      buildFooterTemplate(p),
	}
}

// buildFooterTemplate generates Chrome's native footer: a centered page
// number in the body font. Header/footer templates cannot load webfonts, so
// the stack's local fallbacks are what actually render.
func buildFooterTemplate(p Profile) string {
	return fmt.Sprintf(
		`<div style="width: 100%%; text-align: center; font-family: %s; font-size: %s; color: #333;"><span class="pageNumber"></span></div>`,
		html.EscapeString(p.Font.Stack), p.Footer.Size,
	)
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

// rodSession implements pageSession over a rod page bound to the render
// context.
type rodSession struct {
	page     *rod.Page
	idle     time.Duration
	waitIdle func()
}

// Navigate starts request tracking before navigation so the idle wait sees
// every webfont request.
func (s *rodSession) Navigate(url string) error {
	s.waitIdle = s.page.WaitRequestIdle(s.idle, nil, nil, nil)
	return s.page.Navigate(url)
}

func (s *rodSession) WaitLoad() error {
	return s.page.WaitLoad()
}

func (s *rodSession) WaitNetworkIdle() error {
	if s.waitIdle != nil {
		s.waitIdle()
	}
	return s.page.GetContext().Err()
}

func (s *rodSession) WaitFonts() error {
	_, err := s.page.Eval(fontsReadyScript)
	return err
}

func (s *rodSession) PrintPDF(opts *proto.PagePrintToPDF) ([]byte, error) {
	reader, err := s.page.PDF(opts)
	if err != nil {
		return nil, err
	}
	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading PDF stream: %w", err)
	}
	return pdf, nil
}

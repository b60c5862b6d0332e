package typeset

import (
	"errors"

	"github.com/literatipub/typeset/internal/layout"
	"github.com/literatipub/typeset/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	// Input errors, reported before anything is rendered.
	ErrEmptyContent      = pipeline.ErrEmptyContent
	ErrUnsupportedSource = errors.New("unsupported source kind")
	ErrUnknownFormat     = layout.ErrUnknownFormat

	// Conversion errors.
	ErrConversion  = errors.New("source conversion failed")
	ErrComposition = errors.New("HTML composition failed")

	// Render errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrRenderTimeout  = errors.New("render deadline exceeded")
	ErrInvalidHandle  = errors.New("engine handle not issued by this engine")

	// Asset loading errors.
	ErrInvalidAssetPath = errors.New("invalid asset path")
	ErrStyleNotFound    = errors.New("style not found")

	// Pool errors.
	ErrPoolClosed = errors.New("render pool closed")
)

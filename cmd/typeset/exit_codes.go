package main

import (
	"errors"
	"os"

	"github.com/literatipub/typeset"
	"github.com/literatipub/typeset/internal/config"
)

// Exit codes for the typeset CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or manuscript
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, typeset.ErrBrowserConnect) ||
		errors.Is(err, typeset.ErrPageCreate) ||
		errors.Is(err, typeset.ErrPageLoad) ||
		errors.Is(err, typeset.ErrPDFGeneration) ||
		errors.Is(err, typeset.ErrRenderTimeout) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadManuscript) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, typeset.ErrEmptyContent) ||
		errors.Is(err, typeset.ErrUnsupportedSource) ||
		errors.Is(err, typeset.ErrUnknownFormat) ||
		errors.Is(err, typeset.ErrConversion) ||
		errors.Is(err, typeset.ErrStyleNotFound) ||
		errors.Is(err, typeset.ErrInvalidAssetPath) {
		return ExitUsage
	}

	return ExitGeneral
}

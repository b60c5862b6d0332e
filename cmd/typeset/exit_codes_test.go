package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/literatipub/typeset"
	"github.com/literatipub/typeset/internal/config"
)

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"browser connect", typeset.ErrBrowserConnect, ExitBrowser},
		{"wrapped pdf generation", fmt.Errorf("chapter.md: %w", typeset.ErrPDFGeneration), ExitBrowser},
		{"render timeout", typeset.ErrRenderTimeout, ExitBrowser},
		{"not exist", os.ErrNotExist, ExitIO},
		{"read manuscript", fmt.Errorf("%w: %w", ErrReadManuscript, os.ErrPermission), ExitIO},
		{"write output", ErrWriteOutput, ExitIO},
		{"no input", ErrNoInput, ExitIO},
		{"usage", ErrUsage, ExitUsage},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config value", config.ErrInvalidValue, ExitUsage},
		{"empty manuscript", typeset.ErrEmptyContent, ExitUsage},
		{"unknown format", typeset.ErrUnknownFormat, ExitUsage},
		{"unsupported source", typeset.ErrUnsupportedSource, ExitUsage},
		{"bad docx", fmt.Errorf("%w: %w", typeset.ErrConversion, errors.New("zip: not a valid zip file")), ExitUsage},
		{"missing style", typeset.ErrStyleNotFound, ExitUsage},
		{"canceled", context.Canceled, ExitGeneral},
		{"unknown", errors.New("unexpected"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/literatipub/typeset"
	"github.com/literatipub/typeset/internal/config"
)

func TestRender_PlainTextChapter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "chapter.txt")
	writeFile(t, input, "Chapter One\n\nIt was a dark night.")

	tio := newTestIO(t, nil)
	if err := tio.execute(context.Background(), "render", input, "--font", "garamond", "--html"); err != nil {
		t.Fatalf("render unexpected error: %v\nstderr: %s", err, tio.stderr)
	}

	pdf, err := os.ReadFile(filepath.Join(dir, "chapter.pdf"))
	if err != nil {
		t.Fatalf("reading PDF: %v", err)
	}
	if !bytes.Equal(pdf, fakePDF) {
		t.Errorf("PDF = %q", pdf)
	}

	html, err := os.ReadFile(filepath.Join(dir, "chapter.html"))
	if err != nil {
		t.Fatalf("reading HTML: %v", err)
	}
	for _, want := range []string{"<p>Chapter One</p>", "<p>It was a dark night.</p>", "EB Garamond"} {
		if !strings.Contains(string(html), want) {
			t.Errorf("HTML missing %q", want)
		}
	}

	if launches, releases := tio.engine.counts(); launches != 1 || releases != 1 {
		t.Errorf("engine launches=%d releases=%d, want 1 and 1", launches, releases)
	}
	if !strings.Contains(tio.stdout.String(), "Created "+filepath.Join(dir, "chapter.pdf")) {
		t.Errorf("stdout = %q", tio.stdout)
	}
}

func TestRender_HTMLOnlySkipsBrowser(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "story.md")
	writeFile(t, input, "# One\n\nOpening.\n\n* * *\n\nAfter.")

	tio := newTestIO(t, nil)
	if err := tio.execute(context.Background(), "render", input, "--html-only", "--format", "ebook"); err != nil {
		t.Fatalf("render unexpected error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "story.pdf")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("PDF written in --html-only mode (stat err = %v)", err)
	}
	html, err := os.ReadFile(filepath.Join(dir, "story.html"))
	if err != nil {
		t.Fatalf("reading HTML: %v", err)
	}
	if !strings.Contains(string(html), `class="format-ebook"`) || !strings.Contains(string(html), "scene-break") {
		t.Errorf("HTML not composed for ebook:\n%s", html)
	}
	if launches, _ := tio.engine.counts(); launches != 0 {
		t.Errorf("engine launched %d times in --html-only mode", launches)
	}
}

func TestRender_DirectoryBatch(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	writeFile(t, filepath.Join(src, "a.txt"), "Alpha.")
	writeFile(t, filepath.Join(src, "part", "b.md"), "Beta.")
	writeFile(t, filepath.Join(src, "empty.txt"), "   ")

	tio := newTestIO(t, nil)
	err := tio.execute(context.Background(), "render", src, "-o", out, "-w", "2")

	if !errors.Is(err, typeset.ErrEmptyContent) {
		t.Fatalf("render error = %v, want the empty manuscript failure", err)
	}
	if !strings.Contains(err.Error(), "1 of 3 manuscripts failed") {
		t.Errorf("error = %q", err)
	}
	for _, rel := range []string{"a.pdf", filepath.Join("part", "b.pdf")} {
		if _, err := os.Stat(filepath.Join(out, rel)); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}
	if !strings.Contains(tio.stderr.String(), "FAILED "+filepath.Join(src, "empty.txt")) {
		t.Errorf("stderr = %q", tio.stderr)
	}
	if !strings.Contains(tio.stdout.String(), "2 succeeded, 1 failed") {
		t.Errorf("stdout = %q", tio.stdout)
	}
}

func TestRender_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	writeFile(t, good, "Fine prose.")
	writeFile(t, filepath.Join(dir, "novel.pages"), "binary")

	tests := []struct {
		name      string
		args      []string
		launchErr error
		wantErr   error
		wantCode  int
		wantHint  string
	}{
		{
			name:     "no arguments",
			args:     []string{"render"},
			wantErr:  ErrUsage,
			wantCode: ExitUsage,
		},
		{
			name:     "unknown flag",
			args:     []string{"render", good, "--cover"},
			wantErr:  ErrUsage,
			wantCode: ExitUsage,
		},
		{
			name:     "unknown format",
			args:     []string{"render", good, "--format", "hardcover"},
			wantErr:  typeset.ErrUnknownFormat,
			wantCode: ExitUsage,
			wantHint: "--format print or --format ebook",
		},
		{
			name:     "bad timeout",
			args:     []string{"render", good, "--timeout", "soon"},
			wantErr:  ErrUsage,
			wantCode: ExitUsage,
		},
		{
			name:     "too many workers",
			args:     []string{"render", good, "--workers", "99"},
			wantErr:  ErrUsage,
			wantCode: ExitUsage,
		},
		{
			name:     "html and html-only",
			args:     []string{"render", good, "--html", "--html-only"},
			wantErr:  ErrUsage,
			wantCode: ExitUsage,
		},
		{
			name:     "missing manuscript",
			args:     []string{"render", filepath.Join(dir, "missing.txt")},
			wantErr:  os.ErrNotExist,
			wantCode: ExitIO,
		},
		{
			name:     "unsupported manuscript",
			args:     []string{"render", filepath.Join(dir, "novel.pages")},
			wantErr:  typeset.ErrUnsupportedSource,
			wantCode: ExitUsage,
			wantHint: "supported files: ",
		},
		{
			name:     "missing style",
			args:     []string{"render", good, "--style", "baroque"},
			wantErr:  typeset.ErrStyleNotFound,
			wantCode: ExitUsage,
			wantHint: "available: ",
		},
		{
			name:      "browser unavailable",
			args:      []string{"render", good},
			launchErr: fmt.Errorf("%w: chrome not found", typeset.ErrBrowserConnect),
			wantErr:   typeset.ErrBrowserConnect,
			wantCode:  ExitBrowser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tio := newTestIO(t, nil)
			tio.engine.launchErr = tt.launchErr
			err := tio.execute(context.Background(), tt.args...)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if code := exitCodeFor(err); code != tt.wantCode {
				t.Errorf("exit code = %d, want %d", code, tt.wantCode)
			}
			if tt.wantHint != "" && !strings.Contains(err.Error(), tt.wantHint) {
				t.Errorf("error %q missing hint %q", err, tt.wantHint)
			}
			if tt.launchErr != nil {
				if _, releases := tio.engine.counts(); releases != 0 {
					t.Errorf("released %d handles after failed launch", releases)
				}
			}
		})
	}
}

func TestRender_UnknownFontWarns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "a.txt")
	writeFile(t, input, "Text.")

	tio := newTestIO(t, nil)
	if err := tio.execute(context.Background(), "render", input, "--font", "comic-sans", "--html-only"); err != nil {
		t.Fatalf("render unexpected error: %v", err)
	}
	if !strings.Contains(tio.stderr.String(), "unknown font") {
		t.Errorf("stderr = %q, want unknown font warning", tio.stderr)
	}
	html, _ := os.ReadFile(filepath.Join(dir, "a.html"))
	if !strings.Contains(string(html), "Libre Baskerville") {
		t.Error("unknown font did not fall back to the default")
	}
}

func TestResolveRenderParams_Precedence(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	if err := config.ApplyEnv(cfg, func(key string) string {
		return map[string]string{
			config.EnvDefaultFormat: "ebook",
			config.EnvDefaultFont:   "lora",
			config.EnvRenderTimeout: "45s",
		}[key]
	}); err != nil {
		t.Fatalf("ApplyEnv() unexpected error: %v", err)
	}

	tests := []struct {
		name        string
		args        []string
		wantFormat  typeset.Format
		wantFont    string
		wantTimeout time.Duration
	}{
		{"environment wins over config", nil, typeset.FormatEbook, "lora", 45 * time.Second},
		{"flags win over environment", []string{"--format", "print", "--font", "caslon", "-t", "2m"}, typeset.FormatPrint, "caslon", 2 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := newRenderCmd(&app{})
			if err := cmd.Flags().Parse(tt.args); err != nil {
				t.Fatalf("Parse() unexpected error: %v", err)
			}
			f := &renderFlags{}
			f.format, _ = cmd.Flags().GetString("format")
			f.font, _ = cmd.Flags().GetString("font")
			f.timeout, _ = cmd.Flags().GetString("timeout")

			p, err := resolveRenderParams(cmd.Flags(), f, cfg)
			if err != nil {
				t.Fatalf("resolveRenderParams() unexpected error: %v", err)
			}
			if p.format != tt.wantFormat || p.font != tt.wantFont || p.timeout != tt.wantTimeout {
				t.Errorf("params = format %v font %q timeout %v", p.format, p.font, p.timeout)
			}
		})
	}
}

func TestRender_CanceledContext(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "a.txt")
	writeFile(t, input, "Text.")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tio := newTestIO(t, nil)
	err := tio.execute(ctx, "render", input)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "a.pdf")); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("PDF written after cancellation")
	}
}

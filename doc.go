// Package typeset turns manuscripts into print-ready PDF interiors using
// headless Chrome.
//
// # Quick Start
//
// Create a typesetter, typeset a manuscript, and keep the PDF:
//
//	ts, err := typeset.NewTypesetter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := ts.Typeset(ctx, typeset.Input{
//	    Content: []byte("Chapter One\n\nIt was a dark night."),
//	    Source:  typeset.SourceText,
//	    Format:  typeset.FormatPrint,
//	    Font:    "garamond",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("interior.pdf", result.PDF, 0644)
//
// The result carries the PDF bytes and the composed HTML (result.HTML).
// Set Input.HTMLOnly to skip the browser entirely.
//
// # Pipeline
//
// A request moves through four stages, each usable on its own:
//
//  1. Normalize: plain text, HTML, Markdown or DOCX into typed blocks
//     (paragraph, heading, scene break)
//  2. ResolveProfile: format and font key into page and typography rules
//  3. Compose: blocks and profile into one self-contained HTML document
//  4. Render: HTML into PDF through an Engine (go-rod in production)
//
// Every Render launches its own browser and releases it on every path. Use
// a Pool to bound how many browsers run at once.
//
// # Formats
//
// FormatPrint is a 6x9in trade paperback interior: justified 10.5pt text,
// indented paragraphs, chapters on a new page with a sunk heading and a
// drop cap. FormatEbook is an A5 page with left-aligned 11pt text and
// spaced paragraphs.
//
// # Browser Requirements
//
// PDF generation requires Chrome/Chromium. The go-rod library downloads a
// managed Chromium on first run (~/.cache/rod/browser/) unless a binary is
// configured with WithBrowserBin. Containers usually need WithNoSandbox.
package typeset

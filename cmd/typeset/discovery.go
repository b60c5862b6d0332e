package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/literatipub/typeset"
)

// manuscriptFile is a single manuscript to render and where its PDF goes.
type manuscriptFile struct {
	InputPath  string
	OutputPath string
	Source     typeset.SourceKind
}

// discoverManuscripts expands args into manuscripts. Files must have a
// supported extension; directories are walked and unsupported files skipped.
func discoverManuscripts(args []string, output string) ([]manuscriptFile, error) {
	if output != "" && strings.HasSuffix(output, ".pdf") && (len(args) > 1 || isDir(args[0])) {
		return nil, fmt.Errorf("%w: --output must be a directory when rendering several manuscripts", ErrUsage)
	}

	var files []manuscriptFile
	for _, arg := range args {
		found, err := discoverPath(arg, output)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

func discoverPath(inputPath, outputDir string) ([]manuscriptFile, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadManuscript, err)
	}

	if !info.IsDir() {
		kind, err := typeset.SourceKindFromPath(inputPath)
		if err != nil {
			return nil, err
		}
		return []manuscriptFile{{
			InputPath:  inputPath,
			OutputPath: resolveOutputPath(inputPath, outputDir, ""),
			Source:     kind,
		}}, nil
	}

	var files []manuscriptFile
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}
		kind, err := typeset.SourceKindFromPath(path)
		if err != nil {
			return nil
		}
		files = append(files, manuscriptFile{
			InputPath:  path,
			OutputPath: resolveOutputPath(path, outputDir, inputPath),
			Source:     kind,
		})
		return nil
	})
	return files, err
}

// resolveOutputPath determines the PDF output path for a manuscript.
func resolveOutputPath(inputPath, outputDir, baseInputDir string) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), ext)

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base+".pdf")
	}

	if strings.HasSuffix(outputDir, ".pdf") {
		return outputDir
	}

	if baseInputDir != "" {
		relPath, err := filepath.Rel(baseInputDir, inputPath)
		if err == nil {
			relDir := filepath.Dir(relPath)
			return filepath.Join(outputDir, relDir, base+".pdf")
		}
	}

	return filepath.Join(outputDir, base+".pdf")
}

// htmlPath returns where the composed HTML for a PDF path is written.
func htmlPath(pdfPath string) string {
	return strings.TrimSuffix(pdfPath, ".pdf") + ".html"
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

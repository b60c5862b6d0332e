// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/literatipub/typeset/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("TYPESET_RENDER_NO_SANDBOX") != "true" {
		hints = append(hints, "set TYPESET_RENDER_NO_SANDBOX=true for Docker/CI")
	}

	if os.Getenv("TYPESET_RENDER_BROWSER_BIN") == "" {
		hints = append(hints, "set TYPESET_RENDER_BROWSER_BIN to use an installed Chrome")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing the render deadline.
func ForTimeout() string {
	return format("long manuscripts need more time; use --timeout or render.timeout")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/literati-typeset/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/literati-typeset") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForStyleNotFound returns hints for house style not found errors.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForEmptyManuscript returns a hint for manuscripts with no text.
func ForEmptyManuscript() string {
	return format("the manuscript has no text; check the file is not empty or image-only")
}

// ForUnsupportedSource returns a hint listing the accepted manuscript types.
func ForUnsupportedSource(extensions []string) string {
	if len(extensions) == 0 {
		return ""
	}
	return format("supported files: " + strings.Join(extensions, ", "))
}

// ForFormat returns a hint listing the output formats.
func ForFormat() string {
	return format("use --format print or --format ebook")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// renderFlags holds flags for the render command.
type renderFlags struct {
	output    string
	format    string
	font      string
	title     string
	timeout   string
	workers   int
	style     string
	assetPath string
	lang      string
	html      bool
	htmlOnly  bool
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	addr    string
	workers int
	storage string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addLayoutFlags adds format and typography flags to a FlagSet.
func addLayoutFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVarP(&f.format, "format", "f", "", "output format: print, ebook")
	fs.StringVar(&f.font, "font", "", "font key (see 'typeset fonts')")
	fs.StringVar(&f.title, "title", "", "document title (\"\" = from manuscript)")
	fs.StringVar(&f.lang, "lang", "", "document language for hyphenation (default: en)")
}

// addAssetFlags adds asset-related flags to a FlagSet.
func addAssetFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVar(&f.style, "style", "", "house style name or CSS file path")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
}

// addOutputFlags adds output mode flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.BoolVar(&f.html, "html", false, "write composed HTML alongside PDF")
	fs.BoolVar(&f.htmlOnly, "html-only", false, "write composed HTML only, skip PDF")
}

// addRenderFlags adds every render command flag to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel browsers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-manuscript render timeout (e.g., 30s, 2m)")
	addLayoutFlags(fs, f)
	addAssetFlags(fs, f)
	addOutputFlags(fs, f)
}

// addServeFlags adds serve command flags to a FlagSet.
func addServeFlags(fs *flag.FlagSet, f *serveFlags) {
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default from config, \":8080\")")
	fs.IntVarP(&f.workers, "workers", "w", 0, "concurrent renders (0 = auto)")
	fs.StringVar(&f.storage, "storage", "", "artifact directory")
}

// usageError marks flag and argument errors so they exit with ExitUsage.
func usageError(_ *cobra.Command, err error) error {
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// requireArgs accepts at least n positional arguments.
func requireArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return fmt.Errorf("%w: %s requires at least %d argument(s)", ErrUsage, cmd.Name(), n)
		}
		return nil
	}
}

// noArgs rejects positional arguments.
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: %s takes no arguments, got %q", ErrUsage, cmd.Name(), args)
	}
	return nil
}

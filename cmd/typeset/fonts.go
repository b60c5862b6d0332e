package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/literatipub/typeset"
)

func newFontsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fonts",
		Short: "List the font catalog",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.listFonts()
		},
	}
}

// listFonts prints the catalog, marking the configured default.
func (a *app) listFonts() error {
	defaultKey := typeset.ResolveProfile(typeset.FormatPrint, a.cfg.Defaults.Font).Font.Key

	w := tabwriter.NewWriter(a.env.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tNAME\tSTACK")
	for _, f := range typeset.Fonts() {
		key := f.Key
		if key == defaultKey {
			key += " *"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", key, f.Name, f.Stack)
	}
	return w.Flush()
}

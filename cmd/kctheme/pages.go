package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-kctheme/pkg/kccontext"
)

func newPagesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pages",
		Short: "List the pages with a dedicated variant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := a.mocks()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PAGE\tMOCK")
			for _, page := range kccontext.KnownPages() {
				marker := "-"
				if store.Has(page) {
					marker = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\n", page, marker)
			}
			return w.Flush()
		},
	}
}

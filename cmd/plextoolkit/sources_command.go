package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"plextoolkit/internal/collections"
	"plextoolkit/internal/scrape"
)

func newSourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "sources",
		Short:       "List known franchises, studios, and importable web lists",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			rows := make([][]string, 0)
			for _, name := range collections.FranchiseNames() {
				rows = append(rows, []string{"franchise", name})
			}
			for _, name := range collections.StudioNames() {
				rows = append(rows, []string{"studio", name})
			}
			for _, name := range scrape.SourceNames() {
				rows = append(rows, []string{"list", name})
			}

			fmt.Fprintln(out, renderTable(
				[]string{"Kind", "Name"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}

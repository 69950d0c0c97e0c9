package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"plextoolkit/internal/collections"
)

func newCollectionCommand(ctx *commandContext) *cobra.Command {
	collectionCmd := &cobra.Command{
		Use:   "collection",
		Short: "Build and update Plex collections",
	}

	collectionCmd.AddCommand(newCollectionBuildCommand(ctx))
	collectionCmd.AddCommand(newCollectionFranchiseCommand(ctx))
	collectionCmd.AddCommand(newCollectionStudioCommand(ctx))
	collectionCmd.AddCommand(newCollectionImportCommand(ctx))

	return collectionCmd
}

func newCollectionBuildCommand(ctx *commandContext) *cobra.Command {
	var library string
	var titlesFile string

	cmd := &cobra.Command{
		Use:   "build <collection> [title ...]",
		Short: "Build a collection from explicit titles",
		Long: `Build a collection from titles given as arguments or read from a file,
one "Title (Year)" per line. Existing members are kept.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			titles := args[1:]
			if titlesFile != "" {
				fromFile, err := readTitlesFile(titlesFile)
				if err != nil {
					return err
				}
				titles = append(titles, fromFile...)
			}
			if len(titles) == 0 {
				return fmt.Errorf("no titles given; pass them as arguments or with --file")
			}
			return runBuild(cmd, ctx, library, args[0], collections.ParseManual(titles))
		},
	}

	cmd.Flags().StringVarP(&library, "library", "l", "", "Library section (defaults to the configured library)")
	cmd.Flags().StringVarP(&titlesFile, "file", "f", "", "File with one title per line (use - for stdin)")
	return cmd
}

func newCollectionFranchiseCommand(ctx *commandContext) *cobra.Command {
	var library string
	var collectionName string

	cmd := &cobra.Command{
		Use:   "franchise <name>",
		Short: "Build a collection for a known franchise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			target := collectionName
			if target == "" {
				target = name
			}
			return runBuild(cmd, ctx, library, target, collections.Franchise(name))
		},
	}

	cmd.Flags().StringVarP(&library, "library", "l", "", "Library section (defaults to the configured library)")
	cmd.Flags().StringVar(&collectionName, "name", "", "Collection name (defaults to the franchise name)")
	return cmd
}

func newCollectionStudioCommand(ctx *commandContext) *cobra.Command {
	var library string
	var collectionName string

	cmd := &cobra.Command{
		Use:   "studio <name>",
		Short: "Build a collection for a studio or label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			target := collectionName
			if target == "" {
				target = name
			}
			return runBuild(cmd, ctx, library, target, collections.Studio(name))
		},
	}

	cmd.Flags().StringVarP(&library, "library", "l", "", "Library section (defaults to the configured library)")
	cmd.Flags().StringVar(&collectionName, "name", "", "Collection name (defaults to the studio name)")
	return cmd
}

func newCollectionImportCommand(ctx *commandContext) *cobra.Command {
	var library string
	var collectionName string

	cmd := &cobra.Command{
		Use:   "import <list>",
		Short: "Build a collection from a published web list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			target := collectionName
			if target == "" {
				target = name
			}
			return runBuild(cmd, ctx, library, target, collections.Scraped(name))
		},
	}

	cmd.Flags().StringVarP(&library, "library", "l", "", "Library section (defaults to the configured library)")
	cmd.Flags().StringVar(&collectionName, "name", "", "Collection name (defaults to the list name)")
	return cmd
}

func runBuild(cmd *cobra.Command, ctx *commandContext, libraryFlag, collectionName string, source collections.Source) error {
	logger, err := ctx.logger()
	if err != nil {
		return err
	}
	library, err := ctx.libraryClient()
	if err != nil {
		return err
	}
	resolver, err := ctx.sourceResolver(logger)
	if err != nil {
		return err
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	builder := collections.NewBuilder(library, resolver, cfg.Matching.Threshold, logger)
	report, err := builder.Build(cmd.Context(), collections.Spec{
		Section:    ctx.section(libraryFlag),
		Collection: collectionName,
		Source:     source,
	})
	if report != nil {
		printBuildReport(cmd, report)
	}
	return err
}

func printBuildReport(cmd *cobra.Command, report *collections.BuildReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headline(out, fmt.Sprintf("Collection %q in %s", report.Collection, report.Section)))

	rows := make([][]string, 0, len(report.Entries))
	for _, entry := range report.Entries {
		rows = append(rows, []string{entry.Query.String(), string(entry.Status), entry.Matched, entry.Detail})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Title", "Status", "Matched", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
	))

	fmt.Fprintf(out, "Added %d, already present %d, unmatched %d, ambiguous %d; collection has %d members\n",
		report.Count(collections.StatusAdded),
		report.Count(collections.StatusAlreadyPresent),
		report.Count(collections.StatusUnmatched),
		report.Count(collections.StatusAmbiguous),
		report.MemberCount)
	if !report.Applied {
		fmt.Fprintln(out, "No server changes were made")
	}
}

func readTitlesFile(path string) ([]string, error) {
	var reader io.Reader
	if path == "-" {
		reader = os.Stdin
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open titles file: %w", err)
		}
		defer file.Close()
		reader = file
	}

	var titles []string
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		titles = append(titles, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read titles file: %w", err)
	}
	return titles, nil
}

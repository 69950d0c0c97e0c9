package main

import (
	"fmt"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"plextoolkit/internal/artwork"
	"plextoolkit/internal/logging"
	"plextoolkit/internal/searchcache"
)

func newArtworkCommand(ctx *commandContext) *cobra.Command {
	artworkCmd := &cobra.Command{
		Use:   "artwork",
		Short: "Inspect and repair library artwork",
	}

	artworkCmd.AddCommand(newArtworkFixCommand(ctx))
	return artworkCmd
}

func newArtworkFixCommand(ctx *commandContext) *cobra.Command {
	var library string
	var collection string
	var title string

	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Repair missing posters and backgrounds",
		Long: `Scan a library section and set posters and backgrounds from metadata
search results. Artwork locked on the server is never changed. Only one
fix run may mutate a server at a time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			runLock := flock.New(cfg.RunLockPath())
			locked, err := runLock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another artwork run holds %s", cfg.RunLockPath())
			}
			defer func() { _ = runLock.Unlock() }()

			libraryClient, err := ctx.libraryClient()
			if err != nil {
				return err
			}
			metadata, err := ctx.metadataClient()
			if err != nil {
				return err
			}
			if metadata == nil {
				return fmt.Errorf("artwork fix needs a TMDB API key; set tmdb.api_key or export TMDB_API_KEY")
			}

			cache, err := searchcache.OpenFromConfig(cfg)
			if err != nil {
				logger.Warn("search cache unavailable, continuing without it", logging.Error(err))
				cache = nil
			}
			defer func() { _ = cache.Close() }()

			fixer := artwork.NewFixer(libraryClient, metadata, cache, cfg.Matching.Threshold, logger)
			report, err := fixer.Run(cmd.Context(), artwork.Scope{
				Section:    ctx.section(library),
				Collection: collection,
				Title:      title,
			})
			if report != nil {
				printFixReport(cmd, report)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&library, "library", "l", "", "Library section (defaults to the configured library)")
	cmd.Flags().StringVar(&collection, "collection", "", "Restrict the run to a collection's members")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Restrict the run to one title")
	return cmd
}

func printFixReport(cmd *cobra.Command, report *artwork.FixReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headline(out, fmt.Sprintf("Artwork scan of %s", report.Section)))

	rows := make([][]string, 0, len(report.Results))
	for _, result := range report.Results {
		rows = append(rows, []string{
			result.Title,
			string(result.Kind),
			string(result.Status),
			yesNo(result.PosterSet),
			yesNo(result.BackgroundSet),
			result.Detail,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Title", "Kind", "Status", "Poster", "Background", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
	))

	fmt.Fprintf(out, "Applied %d, locked %d, unmatched %d, failed %d\n",
		report.Count(artwork.StatusApplied),
		report.Count(artwork.StatusSkippedLocked),
		report.Count(artwork.StatusSkippedNoMatch),
		report.Count(artwork.StatusFailed))
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

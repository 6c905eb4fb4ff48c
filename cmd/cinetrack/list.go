package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/amaumene/cinetrack/internal/config"
	"github.com/amaumene/cinetrack/internal/controllers"
	"github.com/amaumene/cinetrack/internal/library"
	"github.com/amaumene/cinetrack/internal/models"
	"github.com/amaumene/cinetrack/internal/parser"
	"github.com/amaumene/cinetrack/internal/source"
	"github.com/amaumene/cinetrack/internal/utils"
	"github.com/spf13/cobra"
)

func newListCommand() *cobra.Command {
	var (
		jsonOutput     bool
		stats          bool
		query          string
		year           string
		commentaryOnly bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the reconciled library with its stored enrichment",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			logger := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
			logger.SetOutput(io.Discard)

			db, err := models.NewDatabase(cfg.DatabaseFile)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer db.Close()

			raw, err := source.Load(cfg.SourceFile)
			if err != nil {
				return err
			}

			// Read-only: nothing is subscribed to the library, so nothing is written back
			lib := library.New()
			p := parser.New(parser.WithDefaultYear(cfg.DefaultYear))
			authoritative, _ := controllers.NewSyncController(db, cfg.StorageKey, p, lib, nil, logger).Build(raw)
			lib.Load(authoritative)

			searchCtrl := controllers.NewSearchController(lib, logger)

			if stats {
				return printStats(cmd, searchCtrl, jsonOutput)
			}

			records := searchCtrl.Search(controllers.Filter{
				Query:          query,
				Year:           year,
				CommentaryOnly: commentaryOnly,
			})
			if jsonOutput {
				return writeJSON(cmd, records)
			}
			return printRecords(cmd, records)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print as JSON")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print per-year counts instead of records")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Match title or notes")
	cmd.Flags().StringVar(&year, "year", "", "Only records viewed in this year")
	cmd.Flags().BoolVar(&commentaryOnly, "commentary", false, "Only records with a commentary track")

	return cmd
}

func printRecords(cmd *cobra.Command, records []models.Record) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.YearViewed, r.Title, r.Notes, commentaryLabel(r), r.ReleaseFormat})
	}
	if err := writeTable(cmd, []string{"Year", "Title", "Notes", "Commentary", "Format"}, rows); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%d records\n", len(records))
	return err
}

func printStats(cmd *cobra.Command, searchCtrl *controllers.SearchController, jsonOutput bool) error {
	byYear := searchCtrl.StatsByYear()
	summary := searchCtrl.Summary()

	if jsonOutput {
		return writeJSON(cmd, map[string]any{
			"byYear":  byYear,
			"summary": summary,
		})
	}

	rows := make([][]string, 0, len(byYear))
	for _, s := range byYear {
		rows = append(rows, []string{s.Year, strconv.Itoa(s.Count)})
	}
	if err := writeTable(cmd, []string{"Year", "Films"}, rows, 1); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%d records, %d checked, %d with commentary\n",
		summary.Total, summary.Checked, summary.WithCommentary)
	return err
}

func commentaryLabel(r models.Record) string {
	switch {
	case !r.Checked():
		return "?"
	case r.WithCommentary():
		return "yes"
	default:
		return "no"
	}
}

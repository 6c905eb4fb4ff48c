package main

import (
	"fmt"

	"github.com/amaumene/cinetrack/internal/parser"
	"github.com/amaumene/cinetrack/internal/source"
	"github.com/spf13/cobra"
)

func newParseCommand() *cobra.Command {
	var jsonOutput bool
	var defaultYear string

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a viewing log and print its records",
		Long:  "Parse a viewing log and print its records. Without a file the built-in log is parsed.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}

			raw, err := source.Load(path)
			if err != nil {
				return err
			}

			records := parser.New(parser.WithDefaultYear(defaultYear)).Parse(raw)
			if jsonOutput {
				return writeJSON(cmd, records)
			}

			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rows = append(rows, []string{r.YearViewed, string(r.Category), r.Title, r.Notes})
			}
			if err := writeTable(cmd, []string{"Year", "Category", "Title", "Notes"}, rows); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d records\n", len(records))
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print records as JSON")
	cmd.Flags().StringVar(&defaultYear, "default-year", parser.DefaultYear, "Year for items before the first year header")

	return cmd
}

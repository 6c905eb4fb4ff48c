package main

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// writeJSON encodes v as indented JSON to the command's stdout
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeTable renders rows under headers. Columns listed in rightAligned
// (zero-based) are aligned right.
func writeTable(cmd *cobra.Command, headers []string, rows [][]string, rightAligned ...int) error {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(rightAligned))
	for _, col := range rightAligned {
		configs = append(configs, table.ColumnConfig{
			Number:      col + 1,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	_, err := fmt.Fprintln(cmd.OutOrStdout(), tw.Render())
	return err
}

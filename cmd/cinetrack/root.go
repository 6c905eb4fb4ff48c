package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cinetrack",
		Short:         "Film viewing log with commentary track lookups",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newParseCommand())
	rootCmd.AddCommand(newListCommand())

	return rootCmd
}

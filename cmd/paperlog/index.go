package main

import (
	"github.com/spf13/cobra"
)

func init() {
	IndexCommand.AddCommand(&IndexRebuildCommand)
	RootCmd.AddCommand(&IndexCommand)
}

var IndexCommand = cobra.Command{
	Use:   "index",
	Short: "Manage the full text index",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var IndexRebuildCommand = cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the index from the store",
	Args:  cobra.NoArgs,
	RunE: withService(func(cmd *cobra.Command, args []string) error {
		n, err := paperService.Reindex(cmd.Context())
		if err != nil {
			return err
		}

		logger.Printf("indexed %d papers", n)
		return nil
	}),
}

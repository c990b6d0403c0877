package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "List or drop kept drafts",
	RunE: func(cmd *cobra.Command, args []string) error {
		drafts := draftStore()
		if drafts == nil {
			return errors.New("redis is not configured")
		}
		ctx := cmd.Context()

		if key, _ := cmd.Flags().GetString("drop"); key != "" {
			return drafts.Delete(ctx, key)
		}
		keys, err := drafts.List(ctx)
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(draftsCmd)
	draftsCmd.Flags().String("drop", "", "Delete the draft kept under this key")
}

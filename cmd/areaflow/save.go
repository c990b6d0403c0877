package main

import (
	"fmt"

	"github.com/meikuraledutech/area"
	"github.com/meikuraledutech/area/client"
	"github.com/meikuraledutech/area/editor"
	"github.com/spf13/cobra"
)

var saveCmd = &cobra.Command{
	Use:   "save <area.json>",
	Short: "Save an area through the API",
	Long: `Opens the area in an editor session and saves it through the API. When redis is
configured and the save fails on the network, the session is kept as a draft.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var rec area.AreaRecord
		if err := readJSON(args[0], &rec); err != nil {
			return err
		}

		opts := []editor.Option{editor.WithLogger(logger)}
		if drafts := draftStore(); drafts != nil {
			key, _ := cmd.Flags().GetString("draft")
			if key == "" {
				key = rec.ID
			}
			if key == "" {
				key = "new"
			}
			opts = append(opts, editor.WithDrafts(drafts, key))
		}

		s := editor.New(client.New(cfg.APIBaseURL), opts...)
		s.Open(&rec)

		outcome, err := s.Save(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s: %w", outcome, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), s.AreaID())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(saveCmd)
	saveCmd.Flags().String("draft", "", "Draft key used when the save fails (defaults to the area id)")
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/meikuraledutech/area"
	"github.com/meikuraledutech/area/client"
	"github.com/meikuraledutech/area/editor"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render [area.json]",
	Short: "Render an area as SVG",
	Long: `Lays the area out on the editor canvas and writes the scene as SVG to stdout.
The area comes from a JSON file, from the API (--id) or from a kept draft (--draft).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, _ := cmd.Flags().GetString("id")
		draft, _ := cmd.Flags().GetString("draft")

		opts := []editor.Option{editor.WithLogger(logger)}
		if draft != "" {
			drafts := draftStore()
			if drafts == nil {
				return errors.New("redis is not configured")
			}
			opts = append(opts, editor.WithDrafts(drafts, draft))
		}
		s := editor.New(client.New(cfg.APIBaseURL), opts...)

		switch {
		case draft != "":
			if err := s.RestoreDraft(ctx); err != nil {
				return fmt.Errorf("draft %s: %w", draft, err)
			}
		case id != "":
			if err := s.Load(ctx, id); err != nil {
				return err
			}
		case len(args) == 1:
			var rec area.AreaRecord
			if err := readJSON(args[0], &rec); err != nil {
				return err
			}
			s.Open(&rec)
		default:
			return errors.New("nothing to render: pass a file, --id or --draft")
		}

		return s.Scene().WriteSVG(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().String("id", "", "Fetch the area from the API")
	renderCmd.Flags().String("draft", "", "Render the draft kept under this key")
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

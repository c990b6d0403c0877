package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/meikuraledutech/area"
	"github.com/meikuraledutech/area/mapper"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <request.json>",
	Short: "Validate a save payload",
	Long:  `Runs the checks the API applies to a save payload: name, actions, service ids and cycles.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req area.SaveRequest
		if err := readJSON(args[0], &req); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if err := checkRequest(&req); err != nil {
			bad.Fprint(out, "invalid")
			if code := area.ValidationCode(err); code != "" {
				fmt.Fprintf(out, " [%s]", code)
			}
			fmt.Fprintln(out)
			return err
		}
		good.Fprint(out, "ok")
		fmt.Fprintf(out, ": %d actions, %d reactions, %d connections\n",
			len(req.Actions), len(req.Reactions), len(req.Connections))
		return nil
	},
}

var (
	good = color.New(color.FgHiGreen, color.Bold)
	bad  = color.New(color.FgHiRed, color.Bold)
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

func checkRequest(req *area.SaveRequest) error {
	if err := mapper.Validate(req); err != nil {
		return err
	}
	actionIDs := make([]string, len(req.Actions))
	for i := range actionIDs {
		actionIDs[i] = area.ServiceID(area.KindAction, i)
	}
	reactionIDs := make([]string, len(req.Reactions))
	for i := range reactionIDs {
		reactionIDs[i] = area.ServiceID(area.KindReaction, i)
	}
	conns, err := area.ResolveConnections(req, actionIDs, reactionIDs)
	if err != nil {
		return err
	}
	for _, c := range conns {
		if c.LinkType != "" && !c.LinkType.Valid() {
			return area.Invalid(area.CodeInvalidLinkType, fmt.Errorf("%s -> %s: %q", c.SourceID, c.TargetID, c.LinkType))
		}
	}
	return area.ValidateAcyclic(conns)
}

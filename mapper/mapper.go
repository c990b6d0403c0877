// Package mapper converts between the editor's working set and the flat
// payload of the area service.
package mapper

import (
	"strings"

	"github.com/meikuraledutech/area"
	"github.com/meikuraledutech/area/workset"
)

// ToSaveRequest flattens a working set and its links into a save payload.
// Actions and reactions keep their list order, which the synthetic service
// ids of the connections rely on.
func ToSaveRequest(name, description string, ws *workset.Set, links []area.LinkConfig) *area.SaveRequest {
	actions := ws.Actions()
	reactions := ws.Reactions()

	req := &area.SaveRequest{
		Name:        strings.TrimSpace(name),
		Description: description,
		Actions:     make([]area.ActionRecord, 0, len(actions)),
		Reactions:   make([]area.ReactionRecord, 0, len(reactions)),
		Connections: []area.SavedConnection{},
		LayoutMode:  area.LayoutLinear,
	}
	for _, a := range actions {
		req.Actions = append(req.Actions, a.Record.Clone())
	}
	for _, r := range reactions {
		req.Reactions = append(req.Reactions, r.Record.Clone())
	}

	resolves := func(kind area.Kind, i int) bool {
		return i >= 0 && i < ws.Len(kind)
	}
	for _, l := range links {
		if !resolves(l.SourceType, l.SourceIndex) || !resolves(l.TargetType, l.TargetIndex) {
			continue
		}
		c := area.SavedConnection{
			SourceServiceID: area.ServiceID(l.SourceType, l.SourceIndex),
			TargetServiceID: area.ServiceID(l.TargetType, l.TargetIndex),
			LinkType:        l.LinkType,
			Order:           l.Order,
			Mapping:         area.CloneMap(l.Mapping),
		}
		if l.LinkType == area.LinkConditional {
			c.Condition = area.CloneMap(l.Condition)
		}
		req.Connections = append(req.Connections, c)
	}

	if len(links) == 0 && len(actions) > 0 && len(reactions) > 0 {
		req.Connections = DefaultChain(len(reactions))
	}
	return req
}

// DefaultChain is the implicit wiring used when the user drew no links:
// action_0 feeds reaction_0 and every reaction feeds the next one.
func DefaultChain(reactions int) []area.SavedConnection {
	if reactions == 0 {
		return nil
	}
	conns := []area.SavedConnection{{
		SourceServiceID: area.ServiceID(area.KindAction, 0),
		TargetServiceID: area.ServiceID(area.KindReaction, 0),
		LinkType:        area.LinkChain,
		Mapping:         map[string]any{},
	}}
	for i := 1; i < reactions; i++ {
		conns = append(conns, area.SavedConnection{
			SourceServiceID: area.ServiceID(area.KindReaction, i-1),
			TargetServiceID: area.ServiceID(area.KindReaction, i),
			LinkType:        area.LinkChain,
			Order:           i,
			Mapping:         map[string]any{},
		})
	}
	return conns
}

// Validate checks the payload-level rules: a named area with at least one action.
func Validate(req *area.SaveRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return area.Invalid(area.CodeMissingName, nil)
	}
	if len(req.Actions) == 0 {
		return area.Invalid(area.CodeNoActions, nil)
	}
	return nil
}

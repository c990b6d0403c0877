package mapper

import (
	"github.com/meikuraledutech/area"
	"github.com/meikuraledutech/area/workset"
)

// Loaded is a stored area converted back into editor shape.
type Loaded struct {
	Actions   []workset.ActionEntry
	Reactions []workset.ReactionEntry
	Links     []area.LinkConfig
	// Dropped counts stored connections whose endpoints matched no record.
	Dropped int
}

// FromArea rebuilds the working set and links of a stored area.
//
// Connection endpoints are matched by record id when the area carries ids,
// and by display name otherwise; the first record with that name wins.
// Connections that match nothing are dropped.
func FromArea(rec *area.AreaRecord, catalog area.Catalog) *Loaded {
	out := &Loaded{}
	for _, a := range rec.Actions {
		out.Actions = append(out.Actions, workset.ActionEntry{
			Key:        a.ID,
			Record:     a.Clone(),
			Definition: definition(catalog, a.ActionDefinitionID),
		})
	}
	for _, r := range rec.Reactions {
		out.Reactions = append(out.Reactions, workset.ReactionEntry{
			Key:        r.ID,
			Record:     r.Clone(),
			Definition: definition(catalog, r.ActionDefinitionID),
		})
	}

	idx := newIndex(rec)
	seen := make(map[pair]int)
	for _, c := range rec.Connections {
		srcKind, src, ok := idx.resolve(c.SourceID, c.SourceName, c.SourceType, area.KindAction)
		if !ok {
			out.Dropped++
			continue
		}
		dstKind, dst, ok := idx.resolve(c.TargetID, c.TargetName, c.TargetType, area.KindReaction)
		if !ok {
			out.Dropped++
			continue
		}
		cfg := area.LinkConfig{
			SourceIndex: src,
			TargetIndex: dst,
			SourceType:  srcKind,
			TargetType:  dstKind,
			LinkType:    c.LinkType,
			Order:       c.Order,
			Mapping:     area.CloneMap(c.Mapping),
			Condition:   area.CloneMap(c.Condition),
		}
		if cfg.LinkType == "" {
			cfg.LinkType = area.LinkChain
		}
		if cfg.Mapping == nil {
			cfg.Mapping = map[string]any{}
		}
		if cfg.LinkType != area.LinkConditional {
			cfg.Condition = nil
		}

		key := pair{src, dst, srcKind, dstKind}
		if i, dup := seen[key]; dup {
			out.Links[i] = cfg
			continue
		}
		seen[key] = len(out.Links)
		out.Links = append(out.Links, cfg)
	}
	return out
}

func definition(catalog area.Catalog, id string) area.DefinitionRef {
	def := area.DefinitionRef{ID: id}
	if catalog != nil {
		if l, ok := catalog.Lookup("", id); ok {
			def.Name = l.Name
		}
	}
	return def
}

type pair struct {
	src, dst         int
	srcKind, dstKind area.Kind
}

type index struct {
	byID   map[string]position
	byName map[area.Kind]map[string]int
}

type position struct {
	kind area.Kind
	i    int
}

func newIndex(rec *area.AreaRecord) *index {
	idx := &index{
		byID: make(map[string]position),
		byName: map[area.Kind]map[string]int{
			area.KindAction:   {},
			area.KindReaction: {},
		},
	}
	for i, a := range rec.Actions {
		if a.ID != "" {
			idx.byID[a.ID] = position{area.KindAction, i}
		}
		if _, ok := idx.byName[area.KindAction][a.Name]; !ok {
			idx.byName[area.KindAction][a.Name] = i
		}
	}
	for i, r := range rec.Reactions {
		if r.ID != "" {
			idx.byID[r.ID] = position{area.KindReaction, i}
		}
		if _, ok := idx.byName[area.KindReaction][r.Name]; !ok {
			idx.byName[area.KindReaction][r.Name] = i
		}
	}
	return idx
}

// resolve finds an endpoint. kind may be empty on old areas, in which case
// the list named by fallback is searched first.
func (x *index) resolve(id, name string, kind, fallback area.Kind) (area.Kind, int, bool) {
	if id != "" {
		if p, ok := x.byID[id]; ok && (kind == "" || kind == p.kind) {
			return p.kind, p.i, true
		}
	}
	if name == "" {
		return "", 0, false
	}
	kinds := []area.Kind{kind}
	if kind == "" {
		kinds = []area.Kind{fallback, other(fallback)}
	}
	for _, k := range kinds {
		if i, ok := x.byName[k][name]; ok {
			return k, i, true
		}
	}
	return "", 0, false
}

func other(k area.Kind) area.Kind {
	if k == area.KindAction {
		return area.KindReaction
	}
	return area.KindAction
}

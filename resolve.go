package area

import "fmt"

// ResolveConnections turns the synthetic service ids of a save request into
// stored connections. actionIDs and reactionIDs are the record ids assigned to
// req.Actions and req.Reactions, index for index.
func ResolveConnections(req *SaveRequest, actionIDs, reactionIDs []string) ([]AreaConnection, error) {
	type endpoint struct {
		id   string
		name string
		kind Kind
	}
	resolve := func(token string) (endpoint, error) {
		kind, i, err := ParseServiceID(token)
		if err != nil {
			return endpoint{}, err
		}
		switch kind {
		case KindAction:
			if i < len(req.Actions) && i < len(actionIDs) {
				return endpoint{id: actionIDs[i], name: req.Actions[i].Name, kind: kind}, nil
			}
		case KindReaction:
			if i < len(req.Reactions) && i < len(reactionIDs) {
				return endpoint{id: reactionIDs[i], name: req.Reactions[i].Name, kind: kind}, nil
			}
		}
		return endpoint{}, fmt.Errorf("%w: %q out of range", ErrUnknownServiceID, token)
	}

	out := make([]AreaConnection, 0, len(req.Connections))
	for _, c := range req.Connections {
		src, err := resolve(c.SourceServiceID)
		if err != nil {
			return nil, err
		}
		dst, err := resolve(c.TargetServiceID)
		if err != nil {
			return nil, err
		}
		out = append(out, AreaConnection{
			SourceID:   src.id,
			TargetID:   dst.id,
			SourceName: src.name,
			TargetName: dst.name,
			SourceType: src.kind,
			TargetType: dst.kind,
			LinkType:   c.LinkType,
			Order:      c.Order,
			Mapping:    CloneMap(c.Mapping),
			Condition:  CloneMap(c.Condition),
		})
	}
	return out, nil
}

// ValidateAcyclic checks that the connections don't form a cycle using DFS.
func ValidateAcyclic(conns []AreaConnection) error {
	adj := make(map[string][]string)
	for _, c := range conns {
		adj[c.SourceID] = append(adj[c.SourceID], c.TargetID)
	}

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)

	state := make(map[string]int)
	for _, c := range conns {
		state[c.SourceID] = unvisited
		state[c.TargetID] = unvisited
	}

	var dfs func(id string) bool
	dfs = func(id string) bool {
		state[id] = visiting
		for _, next := range adj[id] {
			switch state[next] {
			case visiting:
				return true
			case unvisited:
				if dfs(next) {
					return true
				}
			}
		}
		state[id] = visited
		return false
	}

	for id := range state {
		if state[id] == unvisited && dfs(id) {
			return ErrCycleDetected
		}
	}
	return nil
}

// Package workset holds the in-progress graph of the editor: the ordered
// lists of configured actions and reactions.
package workset

import (
	"github.com/google/uuid"
	"github.com/meikuraledutech/area"
)

// ActionEntry is one configured action. Key is stable for the life of the entry.
type ActionEntry struct {
	Key        string             `json:"key"`
	Record     area.ActionRecord  `json:"record"`
	Service    area.ServiceRef    `json:"service"`
	Definition area.DefinitionRef `json:"definition"`
}

// ReactionEntry is one configured reaction.
type ReactionEntry struct {
	Key        string              `json:"key"`
	Record     area.ReactionRecord `json:"record"`
	Service    area.ServiceRef     `json:"service"`
	Definition area.DefinitionRef  `json:"definition"`
}

// Snapshot is a serializable copy of a working set and its links.
type Snapshot struct {
	AreaID      string            `json:"areaId,omitempty"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Actions     []ActionEntry     `json:"actions"`
	Reactions   []ReactionEntry   `json:"reactions"`
	Links       []area.LinkConfig `json:"links"`
}

// Set is the working set. Removing an entry does not cascade to links;
// callers own that.
type Set struct {
	actions   []ActionEntry
	reactions []ReactionEntry
	saving    bool
}

// New creates an empty working set.
func New() *Set {
	return &Set{}
}

// Actions returns a copy of the configured actions.
func (s *Set) Actions() []ActionEntry {
	out := make([]ActionEntry, len(s.actions))
	copy(out, s.actions)
	return out
}

// Reactions returns a copy of the configured reactions.
func (s *Set) Reactions() []ReactionEntry {
	out := make([]ReactionEntry, len(s.reactions))
	copy(out, s.reactions)
	return out
}

// Len returns the number of entries of the given kind.
// Unknown kinds have no entries.
func (s *Set) Len(kind area.Kind) int {
	switch kind {
	case area.KindAction:
		return len(s.actions)
	case area.KindReaction:
		return len(s.reactions)
	}
	return 0
}

// AddAction appends an action and returns its index.
func (s *Set) AddAction(rec area.ActionRecord, svc area.ServiceRef, def area.DefinitionRef) int {
	s.actions = append(s.actions, ActionEntry{Key: uuid.NewString(), Record: rec.Clone(), Service: svc, Definition: def})
	return len(s.actions) - 1
}

// AddReaction appends a reaction and returns its index.
func (s *Set) AddReaction(rec area.ReactionRecord, svc area.ServiceRef, def area.DefinitionRef) int {
	s.reactions = append(s.reactions, ReactionEntry{Key: uuid.NewString(), Record: rec.Clone(), Service: svc, Definition: def})
	return len(s.reactions) - 1
}

// UpdateAction replaces the action at index in place. Out of range is a no-op.
func (s *Set) UpdateAction(index int, rec area.ActionRecord, svc area.ServiceRef, def area.DefinitionRef) {
	if index < 0 || index >= len(s.actions) {
		return
	}
	e := &s.actions[index]
	e.Record, e.Service, e.Definition = rec.Clone(), svc, def
}

// UpdateReaction replaces the reaction at index in place. Out of range is a no-op.
func (s *Set) UpdateReaction(index int, rec area.ReactionRecord, svc area.ServiceRef, def area.DefinitionRef) {
	if index < 0 || index >= len(s.reactions) {
		return
	}
	e := &s.reactions[index]
	e.Record, e.Service, e.Definition = rec.Clone(), svc, def
}

// RemoveAction splices the action at index out.
func (s *Set) RemoveAction(index int) {
	if index < 0 || index >= len(s.actions) {
		return
	}
	s.actions = append(s.actions[:index], s.actions[index+1:]...)
}

// RemoveReaction splices the reaction at index out.
func (s *Set) RemoveReaction(index int) {
	if index < 0 || index >= len(s.reactions) {
		return
	}
	s.reactions = append(s.reactions[:index], s.reactions[index+1:]...)
}

// IndexOf returns the current index of the entry with the given key.
func (s *Set) IndexOf(key string) (area.Kind, int, bool) {
	for i := range s.actions {
		if s.actions[i].Key == key {
			return area.KindAction, i, true
		}
	}
	for i := range s.reactions {
		if s.reactions[i].Key == key {
			return area.KindReaction, i, true
		}
	}
	return "", 0, false
}

// KeyAt returns the key of the entry at (kind, index).
func (s *Set) KeyAt(kind area.Kind, index int) (string, bool) {
	switch kind {
	case area.KindAction:
		if index >= 0 && index < len(s.actions) {
			return s.actions[index].Key, true
		}
	case area.KindReaction:
		if index >= 0 && index < len(s.reactions) {
			return s.reactions[index].Key, true
		}
	}
	return "", false
}

// ClearAll empties both lists.
func (s *Set) ClearAll() {
	s.actions = nil
	s.reactions = nil
}

// InitializeWithData replaces both lists wholesale. Keys are unique across
// both lists: an entry without a key, or with one already taken, gets a fresh one.
func (s *Set) InitializeWithData(actions []ActionEntry, reactions []ReactionEntry) {
	taken := make(map[string]bool, len(actions)+len(reactions))
	key := func(k string) string {
		if k == "" || taken[k] {
			k = uuid.NewString()
		}
		taken[k] = true
		return k
	}

	s.actions = make([]ActionEntry, 0, len(actions))
	for _, e := range actions {
		e.Key = key(e.Key)
		e.Record = e.Record.Clone()
		s.actions = append(s.actions, e)
	}
	s.reactions = make([]ReactionEntry, 0, len(reactions))
	for _, e := range reactions {
		e.Key = key(e.Key)
		e.Record = e.Record.Clone()
		s.reactions = append(s.reactions, e)
	}
}

// IsSaving reports whether a save is pending.
func (s *Set) IsSaving() bool { return s.saving }

// SetSaving flags a pending save so the UI can refuse a second one.
func (s *Set) SetSaving(v bool) { s.saving = v }

package link

import "github.com/meikuraledutech/area"

// Store holds the link configs of the graph being edited.
// At most one config exists per (source, target) pair.
type Store struct {
	links []area.LinkConfig
}

// NewStore creates an empty link store.
func NewStore() *Store {
	return &Store{}
}

// Links returns a copy of the configs in insertion order.
func (s *Store) Links() []area.LinkConfig {
	out := make([]area.LinkConfig, len(s.links))
	copy(out, s.links)
	return out
}

// Len returns the number of configs.
func (s *Store) Len() int { return len(s.links) }

// GetLinkBetween returns the config joining the given pair.
func (s *Store) GetLinkBetween(sourceIndex, targetIndex int, sourceType, targetType area.Kind) (area.LinkConfig, bool) {
	if i := s.indexOf(sourceIndex, targetIndex, sourceType, targetType); i >= 0 {
		return s.links[i], true
	}
	return area.LinkConfig{}, false
}

// AddLink stores cfg. An existing config for the same pair is replaced in place.
// It reports whether a new entry was inserted.
func (s *Store) AddLink(cfg area.LinkConfig) bool {
	if i := s.indexOf(cfg.SourceIndex, cfg.TargetIndex, cfg.SourceType, cfg.TargetType); i >= 0 {
		s.links[i] = cfg
		return false
	}
	s.links = append(s.links, cfg)
	return true
}

// UpdateLink replaces the config at position i. Out of range is a no-op.
func (s *Store) UpdateLink(i int, cfg area.LinkConfig) bool {
	if i < 0 || i >= len(s.links) {
		return false
	}
	s.links[i] = cfg
	return true
}

// RemoveLink drops every config matching pred and returns how many went.
func (s *Store) RemoveLink(pred func(area.LinkConfig) bool) int {
	kept := s.links[:0]
	n := 0
	for _, l := range s.links {
		if pred(l) {
			n++
			continue
		}
		kept = append(kept, l)
	}
	s.links = kept
	return n
}

// RemoveLinkByIndex drops the config at position i. Out of range is a no-op.
func (s *Store) RemoveLinkByIndex(i int) {
	if i < 0 || i >= len(s.links) {
		return
	}
	s.links = append(s.links[:i], s.links[i+1:]...)
}

// ClearLinks empties the store.
func (s *Store) ClearLinks() {
	s.links = nil
}

// InitializeLinks replaces the store content.
func (s *Store) InitializeLinks(list []area.LinkConfig) {
	s.links = nil
	for _, l := range list {
		s.AddLink(l)
	}
}

// Save validates a draft and inserts or updates its config. Nothing changes
// when validation fails.
func (s *Store) Save(d Draft) (cfg area.LinkConfig, inserted bool, err error) {
	cfg, err = d.Build()
	if err != nil {
		return area.LinkConfig{}, false, err
	}
	return cfg, s.AddLink(cfg), nil
}

// DetachNode drops the configs touching the entry (kind, index) and shifts
// the indices above it down by one, matching a removal from the working set.
func (s *Store) DetachNode(kind area.Kind, index int) int {
	n := s.RemoveLink(func(l area.LinkConfig) bool { return l.Touches(kind, index) })
	for i := range s.links {
		l := &s.links[i]
		if l.SourceType == kind && l.SourceIndex > index {
			l.SourceIndex--
		}
		if l.TargetType == kind && l.TargetIndex > index {
			l.TargetIndex--
		}
	}
	return n
}

func (s *Store) indexOf(sourceIndex, targetIndex int, sourceType, targetType area.Kind) int {
	for i, l := range s.links {
		if l.Between(sourceIndex, targetIndex, sourceType, targetType) {
			return i
		}
	}
	return -1
}

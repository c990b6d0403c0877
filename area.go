package area

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind tells whether a card or record is an action or a reaction.
type Kind string

const (
	KindAction   Kind = "action"
	KindReaction Kind = "reaction"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindAction || k == KindReaction
}

// Point is a position on the canvas, in canvas units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Direction is the side of a card a connection handle sits on.
type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// ActionRecord is the backend shape of a configured action.
type ActionRecord struct {
	ID                 string         `json:"id,omitempty"`
	ActionDefinitionID string         `json:"actionDefinitionId"`
	Name               string         `json:"name"`
	Description        string         `json:"description,omitempty"`
	Parameters         map[string]any `json:"parameters"`
	ActivationConfig   map[string]any `json:"activationConfig,omitempty"`
}

// Clone returns a deep copy of the record.
func (r ActionRecord) Clone() ActionRecord {
	r.Parameters = CloneMap(r.Parameters)
	r.ActivationConfig = CloneMap(r.ActivationConfig)
	return r
}

// ReactionRecord is the backend shape of a configured reaction.
type ReactionRecord struct {
	ID                 string         `json:"id,omitempty"`
	ActionDefinitionID string         `json:"actionDefinitionId"`
	Name               string         `json:"name"`
	Description        string         `json:"description,omitempty"`
	Parameters         map[string]any `json:"parameters"`
	Order              int            `json:"order"`
	ContinueOnError    bool           `json:"continue_on_error"`
	Mapping            map[string]any `json:"mapping,omitempty"`
	Condition          map[string]any `json:"condition,omitempty"`
}

// Clone returns a deep copy of the record.
func (r ReactionRecord) Clone() ReactionRecord {
	r.Parameters = CloneMap(r.Parameters)
	r.Mapping = CloneMap(r.Mapping)
	r.Condition = CloneMap(r.Condition)
	return r
}

// ServiceRef points at the catalog service an action or reaction belongs to.
type ServiceRef struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name,omitempty"`
}

// DefinitionRef points at the catalog definition of an action or reaction.
type DefinitionRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Card is a positioned visual node wrapping exactly one action or reaction.
// Kind decides which of Action / Reaction is set and never changes.
type Card struct {
	ID       string          `json:"id"`
	Kind     Kind            `json:"type"`
	Position Point           `json:"position"`
	Action   *ActionRecord   `json:"action,omitempty"`
	Reaction *ReactionRecord `json:"reaction,omitempty"`
}

// Name returns the display name of the wrapped record.
func (c Card) Name() string {
	switch {
	case c.Kind == KindAction && c.Action != nil:
		return c.Action.Name
	case c.Kind == KindReaction && c.Reaction != nil:
		return c.Reaction.Name
	}
	return ""
}

// DefinitionID returns the action definition of the wrapped record.
func (c Card) DefinitionID() string {
	switch {
	case c.Kind == KindAction && c.Action != nil:
		return c.Action.ActionDefinitionID
	case c.Kind == KindReaction && c.Reaction != nil:
		return c.Reaction.ActionDefinitionID
	}
	return ""
}

// Connection is a committed edge between two cards, directed From → To.
type Connection struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Touches reports whether the connection has id as one of its endpoints.
func (c Connection) Touches(id string) bool {
	return c.From == id || c.To == id
}

// Same reports whether c and o join the same pair of cards, in either direction.
func (c Connection) Same(o Connection) bool {
	return (c.From == o.From && c.To == o.To) || (c.From == o.To && c.To == o.From)
}

// ActiveConnection is the edge being drawn while a connection gesture runs.
// It is never persisted.
type ActiveConnection struct {
	From          string    `json:"from"`
	FromDirection Direction `json:"fromDirection"`
	Start         Point     `json:"start"`
	Point         Point     `json:"point"`
}

// LinkType is the execution semantics of an edge.
type LinkType string

const (
	LinkChain       LinkType = "chain"
	LinkConditional LinkType = "conditional"
	LinkParallel    LinkType = "parallel"
	LinkSequential  LinkType = "sequential"
)

// LinkTypes lists every link type in display order.
var LinkTypes = []LinkType{LinkChain, LinkConditional, LinkParallel, LinkSequential}

// Valid reports whether t is one of the four link types.
func (t LinkType) Valid() bool {
	switch t {
	case LinkChain, LinkConditional, LinkParallel, LinkSequential:
		return true
	}
	return false
}

// LinkConfig is the semantic configuration of one edge.
// SourceIndex and TargetIndex are positions in the current action/reaction lists.
type LinkConfig struct {
	SourceIndex int            `json:"sourceIndex"`
	TargetIndex int            `json:"targetIndex"`
	SourceType  Kind           `json:"sourceType"`
	TargetType  Kind           `json:"targetType"`
	LinkType    LinkType       `json:"linkType"`
	Order       int            `json:"order"`
	Mapping     map[string]any `json:"mapping"`
	Condition   map[string]any `json:"condition,omitempty"`
}

// Between reports whether the config joins the given (source, target) pair.
func (c LinkConfig) Between(sourceIndex, targetIndex int, sourceType, targetType Kind) bool {
	return c.SourceIndex == sourceIndex && c.TargetIndex == targetIndex &&
		c.SourceType == sourceType && c.TargetType == targetType
}

// Touches reports whether either endpoint of the config is (kind, index).
func (c LinkConfig) Touches(kind Kind, index int) bool {
	return (c.SourceType == kind && c.SourceIndex == index) ||
		(c.TargetType == kind && c.TargetIndex == index)
}

// LayoutLinear is the only layout mode the editor saves.
const LayoutLinear = "linear"

// SaveRequest is the flat payload sent to the area service.
type SaveRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Actions     []ActionRecord    `json:"actions"`
	Reactions   []ReactionRecord  `json:"reactions"`
	Connections []SavedConnection `json:"connections"`
	LayoutMode  string            `json:"layoutMode"`
}

// SavedConnection references its endpoints with synthetic service ids
// such as "action_0" or "reaction_2".
type SavedConnection struct {
	SourceServiceID string         `json:"sourceServiceId"`
	TargetServiceID string         `json:"targetServiceId"`
	LinkType        LinkType       `json:"linkType"`
	Order           int            `json:"order"`
	Mapping         map[string]any `json:"mapping,omitempty"`
	Condition       map[string]any `json:"condition,omitempty"`
}

// AreaRecord is a stored area as returned by the area service.
type AreaRecord struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Actions     []ActionRecord   `json:"actions"`
	Reactions   []ReactionRecord `json:"reactions"`
	Connections []AreaConnection `json:"connections"`
	LayoutMode  string           `json:"layoutMode"`
}

// AreaSummary is the listing shape of a stored area.
type AreaSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AreaConnection is a stored link. Endpoints carry both the record ids and
// the display names; older areas only have the names.
type AreaConnection struct {
	ID         string         `json:"id,omitempty"`
	SourceID   string         `json:"sourceId,omitempty"`
	TargetID   string         `json:"targetId,omitempty"`
	SourceName string         `json:"sourceName"`
	TargetName string         `json:"targetName"`
	SourceType Kind           `json:"sourceType,omitempty"`
	TargetType Kind           `json:"targetType,omitempty"`
	LinkType   LinkType       `json:"linkType"`
	Order      int            `json:"order"`
	Mapping    map[string]any `json:"mapping,omitempty"`
	Condition  map[string]any `json:"condition,omitempty"`
}

// ServiceID returns the synthetic payload token for the entry at index.
func ServiceID(kind Kind, index int) string {
	return string(kind) + "_" + strconv.Itoa(index)
}

// ParseServiceID splits a token produced by ServiceID.
func ParseServiceID(token string) (Kind, int, error) {
	i := strings.LastIndexByte(token, '_')
	if i <= 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrUnknownServiceID, token)
	}
	kind := Kind(token[:i])
	n, err := strconv.Atoi(token[i+1:])
	if !kind.Valid() || err != nil || n < 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrUnknownServiceID, token)
	}
	return kind, n, nil
}

// CloneMap deep-copies a JSON-shaped map. Nested maps and slices are copied too.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	default:
		return v
	}
}

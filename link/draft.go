// Package link configures the semantics of edges: link type, execution
// order, JSON condition and JSON field mapping.
package link

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/meikuraledutech/area"
)

// Unset marks an endpoint that was not picked yet.
const Unset = -1

// Draft is the editable form of one link, as typed by the user.
type Draft struct {
	SourceIndex   int
	TargetIndex   int
	SourceType    area.Kind
	TargetType    area.Kind
	LinkType      area.LinkType
	OrderText     string
	MappingText   string
	ConditionText string
}

// NewDraft returns an empty draft pairing an action source with a reaction target.
func NewDraft() Draft {
	return Draft{
		SourceIndex: Unset,
		TargetIndex: Unset,
		SourceType:  area.KindAction,
		TargetType:  area.KindReaction,
		LinkType:    area.LinkChain,
		OrderText:   "0",
		MappingText: "{}",
	}
}

// DraftFrom pre-populates a draft from an existing config.
func DraftFrom(cfg area.LinkConfig) Draft {
	d := Draft{
		SourceIndex: cfg.SourceIndex,
		TargetIndex: cfg.TargetIndex,
		SourceType:  cfg.SourceType,
		TargetType:  cfg.TargetType,
		LinkType:    cfg.LinkType,
		OrderText:   strconv.Itoa(cfg.Order),
		MappingText: encode(cfg.Mapping),
	}
	if cfg.Condition != nil {
		d.ConditionText = encode(cfg.Condition)
	}
	return d
}

// SelectSource picks the source endpoint.
func (d *Draft) SelectSource(index int, kind area.Kind) {
	d.SourceIndex, d.SourceType = index, kind
}

// SelectTarget picks the target endpoint.
func (d *Draft) SelectTarget(index int, kind area.Kind) {
	d.TargetIndex, d.TargetType = index, kind
}

// SetLinkType changes the link type. The condition text is kept for display
// but only submitted for conditional links.
func (d *Draft) SetLinkType(t area.LinkType) {
	d.LinkType = t
}

// Build validates the draft and produces a config.
func (d Draft) Build() (area.LinkConfig, error) {
	if d.SourceIndex < 0 || d.TargetIndex < 0 || !d.SourceType.Valid() || !d.TargetType.Valid() {
		return area.LinkConfig{}, area.Invalid(area.CodeMissingEndpoints, nil)
	}
	linkType := d.LinkType
	if linkType == "" {
		linkType = area.LinkChain
	}
	if !linkType.Valid() {
		return area.LinkConfig{}, area.Invalid(area.CodeInvalidLinkType, errors.New("unknown link type "+string(linkType)))
	}

	var condition map[string]any
	if linkType == area.LinkConditional {
		c, err := decodeObject(d.ConditionText, false)
		if err != nil {
			return area.LinkConfig{}, area.Invalid(area.CodeInvalidConditionJSON, err)
		}
		condition = c
	}

	mapping, err := decodeObject(d.MappingText, true)
	if err != nil {
		return area.LinkConfig{}, area.Invalid(area.CodeInvalidMappingJSON, err)
	}

	order := leadingInt(d.OrderText)

	return area.LinkConfig{
		SourceIndex: d.SourceIndex,
		TargetIndex: d.TargetIndex,
		SourceType:  d.SourceType,
		TargetType:  d.TargetType,
		LinkType:    linkType,
		Order:       order,
		Mapping:     mapping,
		Condition:   condition,
	}, nil
}

// leadingInt parses the integer prefix of text, so "3.5" is 3 and "12abc"
// is 12. Text without one is 0.
func leadingInt(text string) int {
	text = strings.TrimSpace(text)
	end := 0
	if end < len(text) && (text[end] == '-' || text[end] == '+') {
		end++
	}
	digits := end
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(text[:end])
	if err != nil {
		return 0
	}
	return n
}

var errNotObject = errors.New("expected a JSON object")

// decodeObject parses text as a JSON object. Blank text is an empty object
// when allowEmpty is set.
func decodeObject(text string, allowEmpty bool) (map[string]any, error) {
	if strings.TrimSpace(text) == "" {
		if allowEmpty {
			return map[string]any{}, nil
		}
		return nil, errors.New("empty JSON")
	}
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return obj, nil
}

func encode(m map[string]any) string {
	if m == nil {
		return "{}"
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

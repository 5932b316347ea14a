package model

import (
	"encoding/json"

	classroomerrors "github.com/edu-tools/classroom-repos/pkg/errors"
)

// SelectionKind discriminates a GroupSelectionMode.
type SelectionKind string

const (
	SelectionAll     SelectionKind = "all"
	SelectionPattern SelectionKind = "pattern"
)

// GroupSelectionMode narrows a group set to the groups participating in
// an assignment: either all of them (minus exclusions) or those whose
// name matches a glob pattern (minus exclusions).
type GroupSelectionMode struct {
	Kind              SelectionKind
	Pattern           string
	ExcludedGroupIDs  []GroupID
}

// selectionWire is the exact wire shape from spec §6.
type selectionWire struct {
	Kind             SelectionKind `json:"kind"`
	Pattern          string        `json:"pattern,omitempty"`
	ExcludedGroupIDs []GroupID     `json:"excluded_group_ids"`
}

// MarshalJSON projects GroupSelectionMode to its tagged-variant wire form.
func (s GroupSelectionMode) MarshalJSON() ([]byte, error) {
	excluded := s.ExcludedGroupIDs
	if excluded == nil {
		excluded = []GroupID{}
	}
	wire := selectionWire{
		Kind:             s.Kind,
		ExcludedGroupIDs: excluded,
	}
	if s.Kind == SelectionPattern {
		wire.Pattern = s.Pattern
	}
	return json.Marshal(wire)
}

// UnmarshalJSON parses the tagged-variant wire form back into a
// GroupSelectionMode.
func (s *GroupSelectionMode) UnmarshalJSON(data []byte) error {
	var wire selectionWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	switch wire.Kind {
	case SelectionAll, SelectionPattern:
	default:
		return classroomerrors.NewValidation("unknown group selection kind: " + string(wire.Kind))
	}
	s.Kind = wire.Kind
	s.Pattern = wire.Pattern
	s.ExcludedGroupIDs = wire.ExcludedGroupIDs
	return nil
}

// NewAllSelection builds a Kind=all selection.
func NewAllSelection(excluded []GroupID) GroupSelectionMode {
	return GroupSelectionMode{Kind: SelectionAll, ExcludedGroupIDs: excluded}
}

// NewPatternSelection builds a Kind=pattern selection.
func NewPatternSelection(pattern string, excluded []GroupID) GroupSelectionMode {
	return GroupSelectionMode{Kind: SelectionPattern, Pattern: pattern, ExcludedGroupIDs: excluded}
}

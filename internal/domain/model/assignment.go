package model

// AssignmentType determines whether every active student must be
// covered by a group under this assignment.
type AssignmentType string

const (
	AssignmentClassWide AssignmentType = "class_wide"
	AssignmentOptional  AssignmentType = "optional"
)

// Assignment is a unit of work distributed to groups from a group set.
type Assignment struct {
	ID             AssignmentID       `json:"id"`
	Name           string             `json:"name"`
	Description    *string            `json:"description,omitempty"`
	AssignmentType AssignmentType     `json:"assignment_type"`
	GroupSetID     GroupSetID         `json:"group_set_id"`
	GroupSelection GroupSelectionMode `json:"group_selection"`
}

// Clone returns a deep copy of the assignment.
func (a Assignment) Clone() Assignment {
	out := a
	if a.Description != nil {
		v := *a.Description
		out.Description = &v
	}
	out.GroupSelection.ExcludedGroupIDs = append([]GroupID(nil), a.GroupSelection.ExcludedGroupIDs...)
	return out
}

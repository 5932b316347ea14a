package model

// Roster is the aggregate root: every student, staff member, group,
// group set, and assignment for a single course/profile.
type Roster struct {
	Students    []Member     `json:"students"`
	Staff       []Member     `json:"staff"`
	Groups      []Group      `json:"groups"`
	GroupSets   []GroupSet   `json:"group_sets"`
	Assignments []Assignment `json:"assignments"`
	Source      *string      `json:"source,omitempty"`
}

// Clone returns a deep copy of the roster. Every mutating operation in
// this module takes a Roster by value and returns a new one; Go has no
// move semantics and slices/maps alias by default, so callers that want
// to keep their own copy of the pre-mutation roster must Clone it first.
func (r Roster) Clone() Roster {
	out := Roster{
		Students:    make([]Member, len(r.Students)),
		Staff:       make([]Member, len(r.Staff)),
		Groups:      make([]Group, len(r.Groups)),
		GroupSets:   make([]GroupSet, len(r.GroupSets)),
		Assignments: make([]Assignment, len(r.Assignments)),
	}
	for i, m := range r.Students {
		out.Students[i] = m.Clone()
	}
	for i, m := range r.Staff {
		out.Staff[i] = m.Clone()
	}
	for i, g := range r.Groups {
		out.Groups[i] = g.Clone()
	}
	for i, gs := range r.GroupSets {
		out.GroupSets[i] = gs.Clone()
	}
	for i, a := range r.Assignments {
		out.Assignments[i] = a.Clone()
	}
	if r.Source != nil {
		v := *r.Source
		out.Source = &v
	}
	return out
}

// AllMembers returns students followed by staff. The returned slice is
// a fresh copy; callers may not mutate the roster through it.
func (r Roster) AllMembers() []Member {
	out := make([]Member, 0, len(r.Students)+len(r.Staff))
	out = append(out, r.Students...)
	out = append(out, r.Staff...)
	return out
}

// FindMember returns the member (student or staff) with the given ID, or
// ok=false if no member has that ID.
func (r Roster) FindMember(id MemberID) (Member, bool) {
	for _, m := range r.Students {
		if m.ID == id {
			return m, true
		}
	}
	for _, m := range r.Staff {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

// FindGroup returns the group with the given ID, or ok=false.
func (r Roster) FindGroup(id GroupID) (Group, bool) {
	for _, g := range r.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}

// FindGroupSet returns the group set with the given ID, or ok=false.
func (r Roster) FindGroupSet(id GroupSetID) (GroupSet, bool) {
	for _, gs := range r.GroupSets {
		if gs.ID == id {
			return gs, true
		}
	}
	return GroupSet{}, false
}

// FindAssignment returns the assignment with the given ID, or ok=false.
func (r Roster) FindAssignment(id AssignmentID) (Assignment, bool) {
	for _, a := range r.Assignments {
		if a.ID == id {
			return a, true
		}
	}
	return Assignment{}, false
}

// ActiveMemberIDs returns the subset of a group's member IDs that
// resolve to a member currently on the roster with Status=Active.
func (r Roster) ActiveMemberIDs(g Group) []MemberID {
	out := make([]MemberID, 0, len(g.MemberIDs))
	for _, id := range g.MemberIDs {
		if m, ok := r.FindMember(id); ok && m.Status == StatusActive {
			out = append(out, id)
		}
	}
	return out
}

// ActiveStudents returns the students currently Active.
func (r Roster) ActiveStudents() []Member {
	out := make([]Member, 0, len(r.Students))
	for _, m := range r.Students {
		if m.Status == StatusActive {
			out = append(out, m)
		}
	}
	return out
}

// ActiveStaff returns the staff currently Active.
func (r Roster) ActiveStaff() []Member {
	out := make([]Member, 0, len(r.Staff))
	for _, m := range r.Staff {
		if m.Status == StatusActive {
			out = append(out, m)
		}
	}
	return out
}

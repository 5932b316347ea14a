package roster

import (
	"github.com/edu-tools/classroom-repos/internal/domain/model"
	"github.com/edu-tools/classroom-repos/internal/naming"
)

const staffGroupName = "Staff"

// SystemSetEnsureResult reports what EnsureSystemGroupSets changed.
type SystemSetEnsureResult struct {
	GroupSets       []model.GroupSet
	GroupsUpserted  []model.Group
	DeletedGroupIDs []model.GroupID
}

// EnsureSystemGroupSets creates or repairs the two system-maintained group
// sets (individual_students, staff) and removes stale member references
// from every non-system group. Safe to call repeatedly; a second call
// against an already-reconciled roster returns no upserts or deletions.
func EnsureSystemGroupSets(r *model.Roster) SystemSetEnsureResult {
	result := SystemSetEnsureResult{}

	indivSet, indivUpserted, indivDeleted := ensureIndividualStudentsSet(r)
	result.GroupSets = append(result.GroupSets, indivSet)
	result.GroupsUpserted = append(result.GroupsUpserted, indivUpserted...)
	result.DeletedGroupIDs = append(result.DeletedGroupIDs, indivDeleted...)

	staffSet, staffUpserted := ensureStaffSet(r)
	result.GroupSets = append(result.GroupSets, staffSet)
	result.GroupsUpserted = append(result.GroupsUpserted, staffUpserted...)

	result.GroupsUpserted = append(result.GroupsUpserted, cleanupStaleMemberships(r)...)

	return result
}

func isSystemSet(gs model.GroupSet, systemType model.SystemType) bool {
	return gs.Connection != nil && gs.Connection.IsSystem(systemType)
}

func findGroupIndex(r *model.Roster, id model.GroupID) int {
	for i, g := range r.Groups {
		if g.ID == id {
			return i
		}
	}
	return -1
}

func findGroupSetIndex(r *model.Roster, systemType model.SystemType) int {
	for i, gs := range r.GroupSets {
		if isSystemSet(gs, systemType) {
			return i
		}
	}
	return -1
}

func ensureIndividualStudentsSet(r *model.Roster) (model.GroupSet, []model.Group, []model.GroupID) {
	var upserted []model.Group
	var deleted []model.GroupID

	setIdx := findGroupSetIndex(r, model.SystemTypeIndividualStudents)
	if setIdx < 0 {
		r.GroupSets = append(r.GroupSets, model.GroupSet{
			ID:         newGroupSetID(),
			Name:       "Individual Students",
			Connection: model.NewSystemConnection(model.SystemTypeIndividualStudents),
		})
		setIdx = len(r.GroupSets) - 1
	}

	setGroupIDs := make(map[model.GroupID]bool, len(r.GroupSets[setIdx].GroupIDs))
	for _, id := range r.GroupSets[setIdx].GroupIDs {
		setGroupIDs[id] = true
	}

	existingByMember := make(map[model.MemberID]int)
	existingNames := make(map[string]bool)
	for idx, g := range r.Groups {
		if !setGroupIDs[g.ID] {
			continue
		}
		existingNames[g.Name] = true
		if g.Origin == model.OriginSystem && len(g.MemberIDs) == 1 {
			existingByMember[g.MemberIDs[0]] = idx
		}
	}

	neededGroupIDs := make(map[model.GroupID]bool)

	for _, student := range r.Students {
		if student.Status != model.StatusActive {
			continue
		}
		if idx, ok := existingByMember[student.ID]; ok {
			group := &r.Groups[idx]
			delete(existingNames, group.Name)
			expected := naming.GenerateUniqueGroupName([]model.Member{student}, existingNames)
			if group.Name != expected {
				group.Name = expected
				upserted = append(upserted, group.Clone())
			}
			existingNames[group.Name] = true
			neededGroupIDs[group.ID] = true
			continue
		}

		name := naming.GenerateUniqueGroupName([]model.Member{student}, existingNames)
		existingNames[name] = true
		newGroup := model.Group{
			ID:        newGroupID(),
			Name:      name,
			MemberIDs: []model.MemberID{student.ID},
			Origin:    model.OriginSystem,
		}
		neededGroupIDs[newGroup.ID] = true
		upserted = append(upserted, newGroup.Clone())
		r.Groups = append(r.Groups, newGroup)
	}

	oldGroupIDs := append([]model.GroupID(nil), r.GroupSets[setIdx].GroupIDs...)
	for _, groupID := range oldGroupIDs {
		if neededGroupIDs[groupID] {
			continue
		}
		idx := findGroupIndex(r, groupID)
		if idx < 0 {
			continue
		}
		removed := r.Groups[idx]
		r.Groups = append(r.Groups[:idx], r.Groups[idx+1:]...)
		deleted = append(deleted, removed.ID)
		for i := range r.GroupSets {
			r.GroupSets[i].GroupIDs = model.RemoveGroupID(r.GroupSets[i].GroupIDs, removed.ID)
		}
	}

	finalIDs := make([]model.GroupID, 0, len(neededGroupIDs))
	for id := range neededGroupIDs {
		finalIDs = append(finalIDs, id)
	}
	r.GroupSets[setIdx].GroupIDs = finalIDs

	return r.GroupSets[setIdx].Clone(), upserted, deleted
}

func ensureStaffSet(r *model.Roster) (model.GroupSet, []model.Group) {
	var upserted []model.Group

	setIdx := findGroupSetIndex(r, model.SystemTypeStaff)
	if setIdx < 0 {
		r.GroupSets = append(r.GroupSets, model.GroupSet{
			ID:         newGroupSetID(),
			Name:       "Staff",
			Connection: model.NewSystemConnection(model.SystemTypeStaff),
		})
		setIdx = len(r.GroupSets) - 1
	}

	var activeStaffIDs []model.MemberID
	for _, s := range r.Staff {
		if s.Status == model.StatusActive {
			activeStaffIDs = append(activeStaffIDs, s.ID)
		}
	}

	setGroupIDs := make(map[model.GroupID]bool, len(r.GroupSets[setIdx].GroupIDs))
	for _, id := range r.GroupSets[setIdx].GroupIDs {
		setGroupIDs[id] = true
	}

	staffGroupIdx := -1
	for idx, g := range r.Groups {
		if g.Origin == model.OriginSystem && g.Name == staffGroupName && setGroupIDs[g.ID] {
			staffGroupIdx = idx
			break
		}
	}

	if staffGroupIdx >= 0 {
		group := &r.Groups[staffGroupIdx]
		if !memberIDsEqual(group.MemberIDs, activeStaffIDs) {
			group.MemberIDs = activeStaffIDs
			upserted = append(upserted, group.Clone())
		}
	} else {
		newGroup := model.Group{
			ID:        newGroupID(),
			Name:      staffGroupName,
			MemberIDs: activeStaffIDs,
			Origin:    model.OriginSystem,
		}
		r.GroupSets[setIdx].GroupIDs = append(r.GroupSets[setIdx].GroupIDs, newGroup.ID)
		upserted = append(upserted, newGroup.Clone())
		r.Groups = append(r.Groups, newGroup)
	}

	return r.GroupSets[setIdx].Clone(), upserted
}

func memberIDsEqual(a, b []model.MemberID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func cleanupStaleMemberships(r *model.Roster) []model.Group {
	var modified []model.Group

	valid := make(map[model.MemberID]bool)
	for _, m := range r.Students {
		if m.Status == model.StatusActive {
			valid[m.ID] = true
		}
	}
	for _, m := range r.Staff {
		if m.Status == model.StatusActive {
			valid[m.ID] = true
		}
	}

	for i := range r.Groups {
		group := &r.Groups[i]
		if group.Origin == model.OriginSystem {
			continue
		}
		before := len(group.MemberIDs)
		kept := group.MemberIDs[:0:0]
		for _, id := range group.MemberIDs {
			if valid[id] {
				kept = append(kept, id)
			}
		}
		group.MemberIDs = kept
		if len(group.MemberIDs) != before {
			modified = append(modified, group.Clone())
		}
	}

	return modified
}

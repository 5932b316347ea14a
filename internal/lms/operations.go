package lms

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
	"github.com/edu-tools/classroom-repos/internal/domain/port"
	"github.com/edu-tools/classroom-repos/internal/glob"
	classroomerrors "github.com/edu-tools/classroom-repos/pkg/errors"
	"github.com/edu-tools/classroom-repos/pkg/idcodec"
)

// OperationContext bundles what the three LMS operations need to reach
// a course: the client to call and which course within it to target.
type OperationContext struct {
	Connection port.LmsClient
	CourseID   string
}

// VerifyConnectionResult reports whether the configured connection can
// reach its LMS and list courses.
type VerifyConnectionResult struct {
	Success bool
	LmsType port.LmsKind
	Message string
}

// VerifyConnection constructs no new state; it simply exercises
// get_courses against the already-built client and reports the outcome.
func VerifyConnection(ctx context.Context, client port.LmsClient, lmsType port.LmsKind) VerifyConnectionResult {
	if _, err := client.GetCourses(ctx); err != nil {
		return VerifyConnectionResult{Success: false, LmsType: lmsType, Message: err.Error()}
	}
	return VerifyConnectionResult{Success: true, LmsType: lmsType, Message: "connection verified"}
}

// ImportStudentsSummary counts the outcome of reconciling incoming LMS
// users against an existing roster.
type ImportStudentsSummary struct {
	Added        int
	Updated      int
	Unchanged    int
	MissingEmail int
}

// ImportStudentsResult is the outcome of ImportStudents.
type ImportStudentsResult struct {
	Summary ImportStudentsSummary
	Roster  model.Roster
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ImportStudents fetches users from the LMS and reconciles them into
// roster's student list. Conflict detection is all-or-nothing: if any
// incoming user's normalized email already belongs to a roster member
// whose lms_user_id is set and differs from the incoming user's id, the
// whole operation fails without modifying roster.
func ImportStudents(ctx context.Context, client port.LmsClient, courseID string, roster model.Roster, progress port.ProgressFunc) (ImportStudentsResult, error) {
	users, err := client.GetUsers(ctx, courseID, progress)
	if err != nil {
		return ImportStudentsResult{}, err
	}

	byLmsID := make(map[string]int)
	byEmail := make(map[string]int)
	for i, m := range roster.Students {
		if m.LmsUserID != nil {
			byLmsID[*m.LmsUserID] = i
		}
		byEmail[normalizeEmail(m.Email)] = i
	}

	var conflicts []string
	for _, u := range users {
		email := normalizeEmail(u.Email)
		if email == "" {
			continue
		}
		if idx, ok := byEmail[email]; ok {
			m := roster.Students[idx]
			if m.LmsUserID != nil && *m.LmsUserID != u.ID {
				conflicts = append(conflicts, fmt.Sprintf("%s already linked to lms_user_id %s, incoming id %s", email, *m.LmsUserID, u.ID))
			}
		}
	}
	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		return ImportStudentsResult{}, classroomerrors.NewValidation(
			"lms import conflicts: " + strings.Join(conflicts, "; "))
	}

	out := roster.Clone()
	var summary ImportStudentsSummary

	for _, u := range users {
		if u.IsStaff {
			continue
		}
		email := normalizeEmail(u.Email)
		if email == "" {
			summary.MissingEmail++
		}

		idx := -1
		if i, ok := byLmsID[u.ID]; ok {
			idx = i
		} else if email != "" {
			if i, ok := byEmail[email]; ok {
				idx = i
			}
		}

		if idx < 0 {
			lmsID := u.ID
			var studentNumber *string
			if u.StudentNumber != "" {
				sn := u.StudentNumber
				studentNumber = &sn
			}
			out.Students = append(out.Students, model.Member{
				ID:             newMemberID(),
				Name:           u.Name,
				Email:          u.Email,
				StudentNumber:  studentNumber,
				Status:         model.StatusActive,
				EnrollmentType: model.EnrollmentStudent,
				LmsUserID:      &lmsID,
				Source:         "lms",
			})
			summary.Added++
			continue
		}

		m := &out.Students[idx]
		changed := false
		if m.Name != u.Name {
			m.Name = u.Name
			changed = true
		}
		if m.Email != u.Email {
			m.Email = u.Email
			changed = true
		}
		if u.StudentNumber != "" && (m.StudentNumber == nil || *m.StudentNumber != u.StudentNumber) {
			sn := u.StudentNumber
			m.StudentNumber = &sn
			changed = true
		}
		if m.LmsUserID == nil || *m.LmsUserID != u.ID {
			lmsID := u.ID
			m.LmsUserID = &lmsID
			changed = true
		}
		if changed {
			summary.Updated++
		} else {
			summary.Unchanged++
		}
	}

	return ImportStudentsResult{Summary: summary, Roster: out}, nil
}

// GroupImportFilter selects which LMS groups import_groups keeps.
type GroupImportFilter struct {
	Kind     string // "all", "selected", "pattern"
	Selected []string
	Pattern  string
}

// GroupImportConfig parameterizes ImportGroups.
type GroupImportConfig struct {
	CategoryID string
	Filter     GroupImportFilter
}

// ImportGroupsSummary reports what ImportGroups did.
type ImportGroupsSummary struct {
	GroupsImported  int
	MembersResolved int
}

// ImportGroupsResult is the outcome of ImportGroups: the assignment's
// linked group set with its groups replaced, plus a summary.
type ImportGroupsResult struct {
	Summary  ImportGroupsSummary
	GroupSet model.GroupSet
	Groups   []model.Group
}

func newMemberID() model.MemberID { return model.MemberID(idcodec.Encode(uuid.New())) }
func newGroupID() model.GroupID   { return model.GroupID(idcodec.Encode(uuid.New())) }

func normalizeGroupName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// ImportGroups fetches groups for config.CategoryID, filters them,
// resolves each member's LMS id to a roster student, and returns the
// replacement group list for the group set that assignmentID's
// GroupSetID points to. The assignment's GroupSetID field itself (and
// the group set's groups / connection) are the caller's responsibility
// to persist — this function computes the new content without mutating
// roster, so a failed resolution never corrupts group membership.
func ImportGroups(ctx context.Context, client port.LmsClient, courseID string, roster model.Roster, assignment model.Assignment, cfg GroupImportConfig) (ImportGroupsResult, error) {
	category, err := findCategory(ctx, client, courseID, cfg.CategoryID)
	if err != nil {
		return ImportGroupsResult{}, err
	}

	lmsGroups, err := client.GetGroupsForCategory(ctx, courseID, category.ID)
	if err != nil {
		return ImportGroupsResult{}, err
	}

	resolvedGroups := make([]port.LmsGroup, 0, len(lmsGroups))
	for _, g := range lmsGroups {
		members, err := client.GetGroupMembers(ctx, g, nil)
		if err != nil {
			return ImportGroupsResult{}, err
		}
		g.MemberIDs = members
		resolvedGroups = append(resolvedGroups, g)
	}

	filtered, err := applyGroupFilter(resolvedGroups, cfg.Filter)
	if err != nil {
		return ImportGroupsResult{}, err
	}

	if dup := duplicateGroupNames(filtered); len(dup) > 0 {
		return ImportGroupsResult{}, classroomerrors.NewValidation(
			"duplicate group names in lms import: " + strings.Join(dup, ", "))
	}

	lmsIDToStudent := make(map[string]model.MemberID)
	for _, m := range roster.Students {
		if m.LmsUserID != nil {
			lmsIDToStudent[*m.LmsUserID] = m.ID
		}
	}

	var unresolved []string
	for _, g := range filtered {
		for _, mid := range g.MemberIDs {
			if _, ok := lmsIDToStudent[mid]; !ok {
				unresolved = append(unresolved, mid)
			}
		}
	}
	if len(unresolved) > 0 {
		sort.Strings(unresolved)
		return ImportGroupsResult{}, classroomerrors.NewValidation(
			"unresolved lms member ids: " + strings.Join(unresolved, ", "))
	}

	groups := make([]model.Group, 0, len(filtered))
	for _, g := range filtered {
		memberIDs := make([]model.MemberID, 0, len(g.MemberIDs))
		for _, mid := range g.MemberIDs {
			memberIDs = append(memberIDs, lmsIDToStudent[mid])
		}
		lmsGroupID := g.ID
		groups = append(groups, model.Group{
			ID:         newGroupID(),
			Name:       g.Name,
			MemberIDs:  memberIDs,
			Origin:     model.OriginLms,
			LmsGroupID: &lmsGroupID,
		})
	}

	groupIDs := make([]model.GroupID, 0, len(groups))
	for _, g := range groups {
		groupIDs = append(groupIDs, g.ID)
	}

	groupSet, ok := roster.FindGroupSet(assignment.GroupSetID)
	if !ok {
		groupSet = model.GroupSet{ID: model.GroupSetID(newID()), Name: assignment.Name}
	}
	groupSet.GroupIDs = groupIDs
	groupSet.Connection = model.NewLmsConnection(courseID, category.ID)

	membersResolved := 0
	for _, g := range groups {
		membersResolved += len(g.MemberIDs)
	}

	return ImportGroupsResult{
		Summary:  ImportGroupsSummary{GroupsImported: len(groups), MembersResolved: membersResolved},
		GroupSet: groupSet,
		Groups:   groups,
	}, nil
}

func findCategory(ctx context.Context, client port.LmsClient, courseID, categoryID string) (port.LmsGroupCategory, error) {
	categories, err := client.GetGroupCategories(ctx, courseID)
	if err != nil {
		return port.LmsGroupCategory{}, err
	}
	for _, c := range categories {
		if c.ID == categoryID {
			return c, nil
		}
	}
	return port.LmsGroupCategory{}, classroomerrors.NewNotFound("group category not found: " + categoryID)
}

func applyGroupFilter(groups []port.LmsGroup, filter GroupImportFilter) ([]port.LmsGroup, error) {
	switch filter.Kind {
	case "all", "":
		return groups, nil
	case "selected":
		selected := make(map[string]bool, len(filter.Selected))
		for _, id := range filter.Selected {
			selected[id] = true
		}
		var out []port.LmsGroup
		for _, g := range groups {
			if selected[g.ID] {
				out = append(out, g)
			}
		}
		return out, nil
	case "pattern":
		g, err := glob.Compile(filter.Pattern)
		if err != nil {
			return nil, classroomerrors.NewValidation("invalid group import pattern", err)
		}
		var out []port.LmsGroup
		for _, lg := range groups {
			if g.Match(lg.Name) {
				out = append(out, lg)
			}
		}
		return out, nil
	default:
		return nil, classroomerrors.NewValidation("unknown group import filter kind: " + filter.Kind)
	}
}

func duplicateGroupNames(groups []port.LmsGroup) []string {
	seen := make(map[string]bool)
	var dup []string
	for _, g := range groups {
		norm := normalizeGroupName(g.Name)
		if seen[norm] {
			dup = append(dup, g.Name)
			continue
		}
		seen[norm] = true
	}
	return dup
}

func newID() string { return idcodec.Encode(uuid.New()) }

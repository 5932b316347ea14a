package csvimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	classroomerrors "github.com/edu-tools/classroom-repos/pkg/errors"
)

// GroupEditMode distinguishes whether a group-edit CSV round-trips
// existing group IDs or names brand-new groups from scratch.
type GroupEditMode string

const (
	ModeRoundTrip GroupEditMode = "round_trip"
	ModeFirstTime GroupEditMode = "first_time"
)

// GroupEditResolution is the roster member a student_id/student_email
// reference resolved to, as reported by a StudentResolver, so
// ParseGroupEditCSV can be used against any roster without importing the
// roster package.
type GroupEditResolution struct {
	ID    string
	Email string
}

// StudentResolver resolves student_id and student_email references
// against the target roster. ResolveByID reports ok=false for an unknown
// ID. ResolveByEmail reports ok=false for an unknown email and
// ambiguous=true if more than one roster member shares that normalized
// email.
type StudentResolver interface {
	ResolveByID(id string) (GroupEditResolution, bool)
	ResolveByEmail(email string) (resolution GroupEditResolution, ambiguous bool, ok bool)
}

// GroupEditGroup is one resolved group from a group-edit CSV, in
// first-appearance order.
type GroupEditGroup struct {
	GroupID   string
	Name      string
	StudentIDs []string
}

// GroupEditResult is the outcome of parsing and resolving a group-edit
// CSV against a roster.
type GroupEditResult struct {
	Mode   GroupEditMode
	Groups []GroupEditGroup
}

type groupEditRow struct {
	rowNumber    int
	groupID      string
	groupName    string
	studentID    string
	studentEmail string
}

func normalizeGroupName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// ParseGroupEditCSV parses the group-edit CSV dialect (spec §4.7) and
// resolves each row's student reference against resolver. Required:
// group_name, and either student_id or student_email. Optional: group_id.
// Per-row errors accumulate and are reported together. The checks for a
// student in two groups and for conflicting normalized group names in
// FirstTime mode run row by row against the rows seen so far, and their
// errors accumulate with the per-row ones; the check for duplicate
// normalized group names after assembly runs only once every row has
// resolved without error.
func ParseGroupEditCSV(r io.Reader, resolver StudentResolver) (GroupEditResult, error) {
	reader := csv.NewReader(r)
	_, normalized, err := readHeaders(reader)
	if err != nil {
		return GroupEditResult{}, err
	}

	groupNameIdx := headerIndex(normalized, "group_name")
	if groupNameIdx < 0 {
		return GroupEditResult{}, classroomerrors.NewValidation("missing required header: group_name")
	}
	groupIDIdx := headerIndex(normalized, "group_id")
	studentIDIdx := headerIndex(normalized, "student_id")
	studentEmailIdx := headerIndex(normalized, "student_email")
	if studentIDIdx < 0 && studentEmailIdx < 0 {
		return GroupEditResult{}, classroomerrors.NewValidation("missing required header: student_id or student_email")
	}

	var rows []groupEditRow
	rowIndex := 0
	for {
		raw, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return GroupEditResult{}, classroomerrors.NewValidation("failed to read CSV row", err)
		}
		rowNumber := rowIndex + 2
		rowIndex++
		if rowIsBlank(raw) {
			continue
		}
		rows = append(rows, groupEditRow{
			rowNumber:    rowNumber,
			groupID:      cell(raw, groupIDIdx),
			groupName:    cell(raw, groupNameIdx),
			studentID:    cell(raw, studentIDIdx),
			studentEmail: cell(raw, studentEmailIdx),
		})
	}

	mode := ModeFirstTime
	for _, row := range rows {
		if row.groupID != "" {
			mode = ModeRoundTrip
			break
		}
	}

	var errs []string
	groupOrder := []string{}
	groupNames := make(map[string]string)
	groupMembers := make(map[string][]string)
	normalizedGroupNames := make(map[string]string)
	seenStudents := make(map[string]string)

	for _, row := range rows {
		var resolution GroupEditResolution
		var resolvedOK bool

		if row.studentID != "" {
			resolution, resolvedOK = resolver.ResolveByID(row.studentID)
			if !resolvedOK {
				errs = append(errs, fmt.Sprintf("row %d: unknown student_id %q", row.rowNumber, row.studentID))
				continue
			}
			if row.studentEmail != "" && normalizeEmail(row.studentEmail) != normalizeEmail(resolution.Email) {
				errs = append(errs, fmt.Sprintf("row %d: student_email %q does not match student_id", row.rowNumber, row.studentEmail))
				continue
			}
		} else if row.studentEmail != "" {
			resolved, ambiguous, ok := resolver.ResolveByEmail(row.studentEmail)
			if ambiguous {
				errs = append(errs, fmt.Sprintf("row %d: student_email %q matches multiple students", row.rowNumber, row.studentEmail))
				continue
			}
			if !ok {
				errs = append(errs, fmt.Sprintf("row %d: unknown student_email %q", row.rowNumber, row.studentEmail))
				continue
			}
			resolution = resolved
		} else {
			errs = append(errs, fmt.Sprintf("row %d: missing student_id or student_email", row.rowNumber))
			continue
		}

		groupKey := row.groupName
		if mode == ModeRoundTrip {
			if row.groupID == "" {
				errs = append(errs, fmt.Sprintf("row %d: missing group_id for round-trip import", row.rowNumber))
				continue
			}
			groupKey = row.groupID
		}

		if existingGroup, dup := seenStudents[resolution.ID]; dup && existingGroup != groupKey {
			errs = append(errs, fmt.Sprintf("row %d: student appears in multiple groups (%q and %q)", row.rowNumber, existingGroup, groupKey))
			continue
		}
		seenStudents[resolution.ID] = groupKey

		if mode == ModeFirstTime {
			norm := normalizeGroupName(row.groupName)
			if existing, ok := normalizedGroupNames[norm]; ok && existing != row.groupName {
				errs = append(errs, fmt.Sprintf("row %d: group_name %q conflicts with %q", row.rowNumber, row.groupName, existing))
				continue
			}
			normalizedGroupNames[norm] = row.groupName
		}

		if existingName, ok := groupNames[groupKey]; ok {
			if existingName != row.groupName {
				errs = append(errs, fmt.Sprintf("row %d: group %q has conflicting names (%q vs %q)", row.rowNumber, groupKey, existingName, row.groupName))
				continue
			}
		} else {
			groupNames[groupKey] = row.groupName
			groupOrder = append(groupOrder, groupKey)
		}

		groupMembers[groupKey] = append(groupMembers[groupKey], resolution.ID)
	}

	if len(errs) > 0 {
		return GroupEditResult{}, classroomerrors.NewValidation(strings.Join(errs, "; "))
	}

	finalNormalized := make(map[string]string)
	for _, key := range groupOrder {
		norm := normalizeGroupName(groupNames[key])
		if existing, ok := finalNormalized[norm]; ok {
			return GroupEditResult{}, classroomerrors.NewValidation(fmt.Sprintf(
				"duplicate group name %q conflicts with %q", groupNames[key], existing))
		}
		finalNormalized[norm] = groupNames[key]
	}

	groups := make([]GroupEditGroup, 0, len(groupOrder))
	for _, key := range groupOrder {
		gid := ""
		if mode == ModeRoundTrip {
			gid = key
		}
		groups = append(groups, GroupEditGroup{
			GroupID:    gid,
			Name:       groupNames[key],
			StudentIDs: groupMembers[key],
		})
	}

	return GroupEditResult{Mode: mode, Groups: groups}, nil
}

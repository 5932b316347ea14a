package csvimport

import (
	"encoding/csv"
	"fmt"
	"io"

	classroomerrors "github.com/edu-tools/classroom-repos/pkg/errors"
)

// GroupSetRow is one parsed group-set CSV group, in first-appearance order.
type GroupSetRow struct {
	GroupID      string
	Name         string
	MemberEmails []string
}

// ParseGroupSetCSV parses the group-set CSV dialect (spec §4.7). Required
// column: group_name. Optional: group_id, name, email. A group_id must map
// to at most one group_name across all rows; a (group_name, email) pair
// must appear at most once; groups are returned in first-appearance order;
// when both group_id and group_name are seen for the same group, the ID
// is preserved.
func ParseGroupSetCSV(r io.Reader) ([]GroupSetRow, error) {
	reader := csv.NewReader(r)
	_, normalized, err := readHeaders(reader)
	if err != nil {
		return nil, err
	}

	groupNameIdx := headerIndex(normalized, "group_name")
	if groupNameIdx < 0 {
		return nil, classroomerrors.NewValidation("missing required header: group_name")
	}
	groupIDIdx := headerIndex(normalized, "group_id")
	emailIdx := headerIndex(normalized, "email")

	var order []string
	ids := make(map[string]string)
	idToName := make(map[string]string)
	members := make(map[string][]string)
	seenMembership := make(map[string]bool)
	seenGroup := make(map[string]bool)

	rowIndex := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, classroomerrors.NewValidation("failed to read CSV row", err)
		}
		rowNumber := rowIndex + 2
		rowIndex++

		if rowIsBlank(row) {
			continue
		}

		groupName := cell(row, groupNameIdx)
		if groupName == "" {
			return nil, classroomerrors.NewValidation(fmt.Sprintf("row %d: missing group_name", rowNumber))
		}
		groupID := cell(row, groupIDIdx)
		email := normalizeEmail(cell(row, emailIdx))

		if groupID != "" {
			if existing, ok := idToName[groupID]; ok && existing != groupName {
				return nil, classroomerrors.NewValidation(fmt.Sprintf(
					"row %d: group_id %q maps to both %q and %q", rowNumber, groupID, existing, groupName))
			}
			idToName[groupID] = groupName
			ids[groupName] = groupID
		}

		if !seenGroup[groupName] {
			seenGroup[groupName] = true
			order = append(order, groupName)
		}

		if email != "" {
			membershipKey := groupName + "\x00" + email
			if seenMembership[membershipKey] {
				return nil, classroomerrors.NewValidation(fmt.Sprintf(
					"row %d: duplicate membership for %q in group %q", rowNumber, email, groupName))
			}
			seenMembership[membershipKey] = true
			members[groupName] = append(members[groupName], email)
		}
	}

	out := make([]GroupSetRow, 0, len(order))
	for _, name := range order {
		out = append(out, GroupSetRow{
			GroupID:      ids[name],
			Name:         name,
			MemberEmails: members[name],
		})
	}
	return out, nil
}

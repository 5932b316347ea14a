// Package csvimport implements the three CSV dialects the core accepts:
// students, group-set, and group-edit. All dialects are comma-separated,
// trimmed, require a header row, accept flexible row length, and match
// headers case-insensitively.
package csvimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	classroomerrors "github.com/edu-tools/classroom-repos/pkg/errors"
)

// StudentDraft is a parsed row of the students CSV, not yet assigned an
// ID or merged into a roster.
type StudentDraft struct {
	Name          string
	Email         string
	StudentNumber *string
	GitUsername   *string
	CustomFields  map[string]string
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func readHeaders(r *csv.Reader) ([]string, []string, error) {
	r.FieldsPerRecord = -1
	raw, err := r.Read()
	if err != nil {
		return nil, nil, classroomerrors.NewValidation("failed to read CSV headers", err)
	}
	original := make([]string, len(raw))
	normalized := make([]string, len(raw))
	for i, h := range raw {
		original[i] = strings.TrimSpace(h)
		normalized[i] = normalizeHeader(h)
	}
	return original, normalized, nil
}

func rowIsBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func headerIndex(normalized []string, name string) int {
	for i, h := range normalized {
		if h == name {
			return i
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ParseStudentsCSV parses the students CSV dialect (spec §4.7). Required
// columns: name, email. Optional: student_number, git_username. Any other
// column becomes a custom field keyed by its original header text. A later
// row with the same normalized email replaces an earlier one. Rows missing
// name or email are collected and reported together as one error, after
// the full file is scanned.
func ParseStudentsCSV(r io.Reader) ([]StudentDraft, error) {
	reader := csv.NewReader(r)
	original, normalized, err := readHeaders(reader)
	if err != nil {
		return nil, err
	}

	nameIdx := headerIndex(normalized, "name")
	emailIdx := headerIndex(normalized, "email")
	if nameIdx < 0 || emailIdx < 0 {
		var missing []string
		if nameIdx < 0 {
			missing = append(missing, "name")
		}
		if emailIdx < 0 {
			missing = append(missing, "email")
		}
		return nil, classroomerrors.NewValidation("missing required headers: " + strings.Join(missing, ", "))
	}
	studentNumberIdx := headerIndex(normalized, "student_number")
	gitUsernameIdx := headerIndex(normalized, "git_username")

	emailToIndex := make(map[string]int)
	var drafts []StudentDraft
	var missingRows []int

	rowIndex := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, classroomerrors.NewValidation("failed to read CSV row", err)
		}
		if rowIsBlank(row) {
			rowIndex++
			continue
		}

		name := cell(row, nameIdx)
		email := cell(row, emailIdx)
		rowNumber := rowIndex + 2

		if name == "" || email == "" {
			missingRows = append(missingRows, rowNumber)
			rowIndex++
			continue
		}

		draft := StudentDraft{
			Name:         name,
			Email:        normalizeEmail(email),
			CustomFields: make(map[string]string),
		}
		if v := cell(row, studentNumberIdx); v != "" {
			draft.StudentNumber = &v
		}
		if v := cell(row, gitUsernameIdx); v != "" {
			draft.GitUsername = &v
		}
		for i := range normalized {
			if i == nameIdx || i == emailIdx || i == studentNumberIdx || i == gitUsernameIdx {
				continue
			}
			if v := cell(row, i); v != "" {
				draft.CustomFields[original[i]] = v
			}
		}

		if existing, ok := emailToIndex[draft.Email]; ok {
			drafts[existing] = draft
		} else {
			emailToIndex[draft.Email] = len(drafts)
			drafts = append(drafts, draft)
		}
		rowIndex++
	}

	if len(missingRows) > 0 {
		strs := make([]string, len(missingRows))
		for i, n := range missingRows {
			strs[i] = strconv.Itoa(n)
		}
		return nil, classroomerrors.NewValidation(fmt.Sprintf("missing required fields in rows: %s", strings.Join(strs, ", ")))
	}

	return drafts, nil
}

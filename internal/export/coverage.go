package export

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
	"github.com/edu-tools/classroom-repos/internal/roster"
)

// AssignmentCoverage reports how many distinct active students are
// covered by an assignment's resolved groups, and which active students
// are not.
type AssignmentCoverage struct {
	AssignmentID   model.AssignmentID
	AssignmentName string
	CoveredCount   int
	AbsentStudents []string
}

// CoverageReport summarizes student coverage across every assignment in
// a roster.
type CoverageReport struct {
	Assignments             []AssignmentCoverage
	MultiAssignmentStudents []string
	UncoveredStudents       []string
	// EmptyGroupNames lists, per assignment, the names of resolved
	// groups with zero active members — useful alongside AbsentStudents
	// for spotting groups that need re-forming.
	EmptyGroupNames map[model.AssignmentID][]string
}

// BuildCoverageReport computes per-assignment student coverage plus the
// cross-assignment summaries (multi-assignment and uncovered students).
func BuildCoverageReport(r model.Roster) (CoverageReport, error) {
	report := CoverageReport{EmptyGroupNames: make(map[model.AssignmentID][]string)}

	students := r.ActiveStudents()
	appearances := make(map[model.MemberID]int, len(students))

	for _, a := range r.Assignments {
		groups, err := roster.Resolve(r, a)
		if err != nil {
			return CoverageReport{}, err
		}

		covered := make(map[model.MemberID]bool)
		for _, g := range groups {
			active := r.ActiveMemberIDs(g)
			if len(active) == 0 {
				report.EmptyGroupNames[a.ID] = append(report.EmptyGroupNames[a.ID], g.Name)
				continue
			}
			for _, id := range active {
				covered[id] = true
			}
		}

		var absent []string
		coveredCount := 0
		for _, s := range students {
			if covered[s.ID] {
				appearances[s.ID]++
				coveredCount++
			} else {
				absent = append(absent, s.Name)
			}
		}
		sort.Strings(absent)

		report.Assignments = append(report.Assignments, AssignmentCoverage{
			AssignmentID:   a.ID,
			AssignmentName: a.Name,
			CoveredCount:   coveredCount,
			AbsentStudents: absent,
		})
	}

	for _, s := range students {
		switch appearances[s.ID] {
		case 0:
			report.UncoveredStudents = append(report.UncoveredStudents, s.Name)
		case 1:
			// covered by exactly one assignment, not notable
		default:
			report.MultiAssignmentStudents = append(report.MultiAssignmentStudents, s.Name)
		}
	}
	sort.Strings(report.UncoveredStudents)
	sort.Strings(report.MultiAssignmentStudents)

	return report, nil
}

// WriteCoverageCSV writes the report as RFC 4180 CSV: one row per
// assignment with its covered count and absent-student list.
func WriteCoverageCSV(w io.Writer, report CoverageReport) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"assignment_id", "assignment_name", "covered_count", "absent_students"}); err != nil {
		return err
	}
	for _, a := range report.Assignments {
		row := []string{string(a.AssignmentID), a.AssignmentName, strconv.Itoa(a.CoveredCount), joinNames(a.AbsentStudents)}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return writer.Error()
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += "; "
		}
		out += n
	}
	return out
}

// WriteCoverageXLSX writes the report to a single sheet named
// "coverage".
func WriteCoverageXLSX(w io.Writer, report CoverageReport) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "coverage"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"assignment_id", "assignment_name", "covered_count", "absent_students"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for i, a := range report.Assignments {
		row := i + 2
		values := []any{string(a.AssignmentID), a.AssignmentName, a.CoveredCount, joinNames(a.AbsentStudents)}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

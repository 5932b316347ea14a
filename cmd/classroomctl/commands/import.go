package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/edu-tools/classroom-repos/internal/csvimport"
	"github.com/edu-tools/classroom-repos/internal/domain/model"
	"github.com/edu-tools/classroom-repos/internal/lms"
	"github.com/edu-tools/classroom-repos/pkg/idcodec"
	"github.com/edu-tools/classroom-repos/pkg/redact"
)

var (
	importSource     string
	importKind       string
	importFile       string
	importCategoryID string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import students or groups from a CSV file or the configured LMS",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		profile, r, err := loadProfileAndRoster()
		if err != nil {
			return err
		}

		switch importSource {
		case "csv":
			r, err = runCSVImport(r)
		case "lms":
			r, err = runLMSImport(ctx, profile, r)
		default:
			return fmt.Errorf("unknown --source %q (want csv or lms)", importSource)
		}
		if err != nil {
			return err
		}

		return saveProfileAndRoster(profile, r)
	},
}

func runCSVImport(r model.Roster) (model.Roster, error) {
	if importFile == "" {
		return r, fmt.Errorf("--file is required for --source csv")
	}
	f, err := os.Open(importFile)
	if err != nil {
		return r, err
	}
	defer f.Close()

	switch importKind {
	case "students":
		drafts, err := csvimport.ParseStudentsCSV(f)
		if err != nil {
			return r, err
		}
		out := r.Clone()
		added, updated := mergeStudentDrafts(&out, drafts)
		printf("students: added=%d updated=%d\n", added, updated)
		return out, nil
	default:
		return r, fmt.Errorf("--kind %q is not supported for --source csv (want students)", importKind)
	}
}

// mergeStudentDrafts upserts each draft into roster.Students by
// case-insensitive email, returning the number added vs. updated.
func mergeStudentDrafts(r *model.Roster, drafts []csvimport.StudentDraft) (added, updated int) {
	byEmail := make(map[string]int, len(r.Students))
	for i, m := range r.Students {
		byEmail[strings.ToLower(m.Email)] = i
	}

	for _, d := range drafts {
		key := strings.ToLower(d.Email)
		if idx, ok := byEmail[key]; ok {
			m := r.Students[idx]
			m.Name = d.Name
			m.StudentNumber = d.StudentNumber
			m.GitUsername = d.GitUsername
			if d.CustomFields != nil {
				m.CustomFields = d.CustomFields
			}
			r.Students[idx] = m
			updated++
			slog.Debug("updated student from csv", "email", redact.Email(d.Email))
			continue
		}
		r.Students = append(r.Students, model.Member{
			ID:             model.MemberID(idcodec.Encode(uuid.New())),
			Name:           d.Name,
			Email:          d.Email,
			StudentNumber:  d.StudentNumber,
			GitUsername:    d.GitUsername,
			Status:         model.StatusActive,
			EnrollmentType: model.EnrollmentStudent,
			Source:         "csv",
			CustomFields:   d.CustomFields,
		})
		byEmail[key] = len(r.Students) - 1
		added++
		slog.Debug("added student from csv", "email", redact.Email(d.Email))
	}
	return added, updated
}

func runLMSImport(ctx context.Context, profile model.Profile, r model.Roster) (model.Roster, error) {
	client, ctx, err := buildLmsClient(ctx, profile)
	if err != nil {
		return r, err
	}
	courseID := profile.LmsConnection.CourseID
	if courseID == "" {
		return r, fmt.Errorf("profile has no configured course id")
	}

	switch importKind {
	case "students":
		result, err := lms.ImportStudents(ctx, client, courseID, r, nil)
		if err != nil {
			return r, err
		}
		printf("students: added=%d updated=%d unchanged=%d missing_email=%d\n",
			result.Summary.Added, result.Summary.Updated, result.Summary.Unchanged, result.Summary.MissingEmail)
		return result.Roster, nil

	case "groups":
		return r, fmt.Errorf("--kind groups requires an --assignment-id; use 'classroomctl import-groups <assignment-id> --category-id <id>' instead")

	default:
		return r, fmt.Errorf("--kind %q is not supported for --source lms (want students or groups)", importKind)
	}
}

var importGroupsCmd = &cobra.Command{
	Use:   "import-groups <assignment-id> --category-id <id>",
	Short: "Import LMS groups for a category into an assignment's group set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		profile, r, err := loadProfileAndRoster()
		if err != nil {
			return err
		}
		if importCategoryID == "" {
			return fmt.Errorf("--category-id is required")
		}
		assignment, ok := r.FindAssignment(model.AssignmentID(args[0]))
		if !ok {
			return fmt.Errorf("assignment %s not found", args[0])
		}

		client, ctx, err := buildLmsClient(ctx, profile)
		if err != nil {
			return err
		}
		result, err := lms.ImportGroups(ctx, client, profile.LmsConnection.CourseID, r, assignment, lms.GroupImportConfig{
			CategoryID: importCategoryID,
			Filter:     lms.GroupImportFilter{Kind: "all"},
		})
		if err != nil {
			return err
		}

		out := r.Clone()
		replaceGroupSetContents(&out, result.GroupSet, result.Groups)
		printf("groups: imported=%d members_resolved=%d\n", result.Summary.GroupsImported, result.Summary.MembersResolved)
		return saveProfileAndRoster(profile, out)
	},
}

// replaceGroupSetContents drops r's existing groups belonging to gs.ID
// and installs groups in their place, then overwrites the matching
// group set entry with gs.
func replaceGroupSetContents(r *model.Roster, gs model.GroupSet, groups []model.Group) {
	old, ok := r.FindGroupSet(gs.ID)
	if ok {
		stale := make(map[model.GroupID]bool, len(old.GroupIDs))
		for _, id := range old.GroupIDs {
			stale[id] = true
		}
		kept := r.Groups[:0]
		for _, g := range r.Groups {
			if !stale[g.ID] {
				kept = append(kept, g)
			}
		}
		r.Groups = kept
	}
	r.Groups = append(r.Groups, groups...)

	for i, existing := range r.GroupSets {
		if existing.ID == gs.ID {
			r.GroupSets[i] = gs
			return
		}
	}
	r.GroupSets = append(r.GroupSets, gs)
}

func init() {
	importCmd.Flags().StringVar(&importSource, "source", "csv", "csv or lms")
	importCmd.Flags().StringVar(&importKind, "kind", "students", "students or groups")
	importCmd.Flags().StringVar(&importFile, "file", "", "CSV file path (required for --source csv)")
	importCmd.Flags().StringVar(&importCategoryID, "category-id", "", "LMS group category id (read by import-groups; --source lms --kind groups is rejected here)")
	importGroupsCmd.Flags().StringVar(&importCategoryID, "category-id", "", "LMS group category id")
	rootCmd.AddCommand(importCmd, importGroupsCmd)
}

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
	"github.com/edu-tools/classroom-repos/internal/export"
	"github.com/edu-tools/classroom-repos/internal/roster"
)

var (
	exportFormat     string
	exportOut        string
	exportAssignment string
	exportGroupSet   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export team rosters, a group set, or a coverage report",
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, r, err := loadProfileAndRoster()
		if err != nil {
			return err
		}

		if exportFormat == "coverage-xlsx" && exportOut == "" {
			return fmt.Errorf("--out is required for --format coverage-xlsx")
		}

		out := os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		switch exportFormat {
		case "teams":
			if exportAssignment == "" {
				return fmt.Errorf("--assignment is required for --format teams")
			}
			assignment, ok := r.FindAssignment(model.AssignmentID(exportAssignment))
			if !ok {
				return fmt.Errorf("assignment %s not found", exportAssignment)
			}
			groups, err := roster.Resolve(r, assignment)
			if err != nil {
				return err
			}
			return export.WriteTeamsYAML(out, r, assignment, groups, profile.GitIdentityMode)

		case "groupset":
			if exportGroupSet == "" {
				return fmt.Errorf("--group-set is required for --format groupset")
			}
			gs, ok := r.FindGroupSet(model.GroupSetID(exportGroupSet))
			if !ok {
				return fmt.Errorf("group set %s not found", exportGroupSet)
			}
			return export.WriteGroupSetCSV(out, r, gs)

		case "coverage-csv", "coverage-xlsx":
			report, err := export.BuildCoverageReport(r)
			if err != nil {
				return err
			}
			if exportFormat == "coverage-csv" {
				return export.WriteCoverageCSV(out, report)
			}
			return export.WriteCoverageXLSX(out, report)

		default:
			return fmt.Errorf("unknown --format %q (want teams, groupset, coverage-csv, or coverage-xlsx)", exportFormat)
		}
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "coverage-csv", "teams, groupset, coverage-csv, or coverage-xlsx")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path (default: stdout)")
	exportCmd.Flags().StringVar(&exportAssignment, "assignment", "", "assignment id (required for --format teams)")
	exportCmd.Flags().StringVar(&exportGroupSet, "group-set", "", "group set id (required for --format groupset)")
	rootCmd.AddCommand(exportCmd)
}

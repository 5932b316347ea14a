package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
	"github.com/edu-tools/classroom-repos/internal/roster"
)

var previewPattern string

var previewCmd = &cobra.Command{
	Use:   "preview <group-set-id>",
	Short: "Preview which groups a selection pattern would resolve to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, r, err := loadProfileAndRoster()
		if err != nil {
			return err
		}

		selection := model.NewAllSelection(nil)
		if previewPattern != "" {
			selection = model.NewPatternSelection(previewPattern, nil)
		}

		result, err := roster.Preview(r, model.GroupSetID(args[0]), selection)
		if err != nil {
			return err
		}
		if !result.Valid {
			return fmt.Errorf("invalid pattern: %s", result.Error)
		}

		printf("matched %d of %d groups\n", result.MatchedGroups, result.TotalGroups)
		for _, id := range result.GroupIDs {
			marker := ""
			if contains(result.EmptyGroupIDs, id) {
				marker = " (empty)"
			}
			printf("  %s: %d active member(s)%s\n", id, result.GroupMemberCounts[id], marker)
		}
		return nil
	},
}

func contains(ids []model.GroupID, id model.GroupID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func init() {
	previewCmd.Flags().StringVar(&previewPattern, "pattern", "", "glob pattern to narrow the group set by (default: all groups)")
	rootCmd.AddCommand(previewCmd)
}

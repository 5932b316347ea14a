package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
	"github.com/edu-tools/classroom-repos/internal/repoops"
	"github.com/edu-tools/classroom-repos/pkg/constants"
	"github.com/edu-tools/classroom-repos/pkg/log"
)

// withOperation tags ctx with the bulk operation name so every
// structured log line emitted underneath (platform calls, git
// subprocess failures) carries it without threading it explicitly.
func withOperation(ctx context.Context, name string) context.Context {
	return log.AppendCtx(ctx, slog.String(string(constants.OperationContextKey), name))
}

func buildOperationContext(ctx context.Context, profile model.Profile) (repoops.OperationContext, error) {
	client, err := buildPlatformClient(ctx, profile)
	if err != nil {
		return repoops.OperationContext{}, err
	}
	return repoops.OperationContext{
		Platform:         client,
		RepoNameTemplate: profile.RepoNameTemplate,
		TargetDir:        profile.TargetDir,
		DirectoryLayout:  profile.DirectoryLayout,
		InsertAuth:       true,
	}, nil
}

func printOperationResult(result repoops.OperationResult) {
	printf("succeeded=%d failed=%d\n", result.Succeeded, result.Failed)
	for _, s := range result.SkippedGroups {
		printf("  skipped %s (%s): %s\n", s.GroupName, s.Reason, s.Context)
	}
	for _, e := range result.Errors {
		printf("  error %s: %s\n", e.RepoName, e.Message)
	}
}

var createCmd = &cobra.Command{
	Use:   "create <assignment-id>",
	Short: "Create one private repo per resolved group of an assignment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := withOperation(cmd.Context(), "create")
		profile, r, err := loadProfileAndRoster()
		if err != nil {
			return err
		}
		octx, err := buildOperationContext(ctx, profile)
		if err != nil {
			return err
		}
		result, err := repoops.Create(ctx, octx, r, model.AssignmentID(args[0]), nil)
		if err != nil {
			return err
		}
		printOperationResult(result)
		return exitOnFailures(result.Failed)
	},
}

var cloneCmd = &cobra.Command{
	Use:   "clone <assignment-id>",
	Short: "Clone every resolved group's repo for an assignment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := withOperation(cmd.Context(), "clone")
		profile, r, err := loadProfileAndRoster()
		if err != nil {
			return err
		}
		octx, err := buildOperationContext(ctx, profile)
		if err != nil {
			return err
		}
		result, err := repoops.Clone(ctx, octx, r, model.AssignmentID(args[0]), nil)
		if err != nil {
			return err
		}
		printOperationResult(result)
		return exitOnFailures(result.Failed)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <assignment-id>",
	Short: "Delete every resolved group's repo for an assignment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := withOperation(cmd.Context(), "delete")
		profile, r, err := loadProfileAndRoster()
		if err != nil {
			return err
		}
		octx, err := buildOperationContext(ctx, profile)
		if err != nil {
			return err
		}
		result, err := repoops.Delete(ctx, octx, r, model.AssignmentID(args[0]), nil)
		if err != nil {
			return err
		}
		printOperationResult(result)
		return exitOnFailures(result.Failed)
	},
}

func init() {
	rootCmd.AddCommand(createCmd, cloneCmd, deleteCmd)
}

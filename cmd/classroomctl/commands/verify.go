package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edu-tools/classroom-repos/internal/domain/port"
	"github.com/edu-tools/classroom-repos/internal/lms"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the configured Git platform and LMS connections",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		profile, _, err := loadProfileAndRoster()
		if err != nil {
			return err
		}

		platformClient, err := buildPlatformClient(ctx, profile)
		if err != nil {
			printf("git platform: FAIL (%s)\n", err)
			return err
		}
		if err := platformClient.VerifySettings(ctx); err != nil {
			printf("git platform: FAIL (%s)\n", err)
			return err
		}
		printf("git platform: OK\n")

		if profile.LmsConnection.Kind == "" {
			printf("lms: skipped (no connection configured)\n")
			return nil
		}

		lmsClient, ctx, err := buildLmsClient(ctx, profile)
		if err != nil {
			printf("lms: FAIL (%s)\n", err)
			return err
		}
		result := lms.VerifyConnection(ctx, lmsClient, port.LmsKind(profile.LmsConnection.Kind))
		if !result.Success {
			printf("lms: FAIL (%s)\n", result.Message)
			return fmt.Errorf("lms verification failed: %s", result.Message)
		}
		printf("lms: OK (%s)\n", result.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

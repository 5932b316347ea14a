package commands

import (
	"github.com/spf13/cobra"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
	"github.com/edu-tools/classroom-repos/internal/persistence"
)

var (
	initGitKind    string
	initGitBaseURL string
	initGitOrg     string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new profile with an empty roster under the configured profile name",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveConfigDir()
		if err != nil {
			return err
		}
		name, err := resolveProfileName(dir)
		if err != nil {
			return err
		}

		profile := model.DefaultProfile(name)
		profile.GitConnection = model.GitConnectionSettings{
			Kind:         initGitKind,
			BaseURL:      initGitBaseURL,
			Organization: initGitOrg,
		}

		if err := persistence.SaveProfileAndRoster(dir, profile, model.Roster{}); err != nil {
			return err
		}
		if err := persistence.WriteActiveProfile(dir, name); err != nil {
			return err
		}
		printf("created profile %q\n", name)
		return nil
	},
}

var useCmd = &cobra.Command{
	Use:   "use <profile-name>",
	Short: "Set the active profile, used by every command when --profile is omitted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveConfigDir()
		if err != nil {
			return err
		}
		name := args[0]
		if _, err := persistence.LoadRoster(dir, name); err != nil {
			return err
		}
		if err := persistence.WriteActiveProfile(dir, name); err != nil {
			return err
		}
		printf("active profile is now %q\n", name)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initGitKind, "git-kind", "", "github, gitlab, gitea, or local (auto-detected from --git-base-url if empty)")
	initCmd.Flags().StringVar(&initGitBaseURL, "git-base-url", "", "base URL or local path of the Git hosting platform")
	initCmd.Flags().StringVar(&initGitOrg, "git-org", "", "organization/group the profile operates under")
	rootCmd.AddCommand(initCmd, useCmd)
}

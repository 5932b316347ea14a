package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
	"github.com/edu-tools/classroom-repos/internal/domain/port"
	"github.com/edu-tools/classroom-repos/internal/lms"
	"github.com/edu-tools/classroom-repos/internal/persistence"
	"github.com/edu-tools/classroom-repos/internal/platform"
	"github.com/edu-tools/classroom-repos/pkg/constants"
	"github.com/edu-tools/classroom-repos/pkg/log"
	"github.com/edu-tools/classroom-repos/pkg/redact"
)

var (
	profileName string
	configDir   string
)

var endCommandSpan func()

var rootCmd = &cobra.Command{
	Use:   "classroomctl",
	Short: "Manage classroom repositories across Git hosting platforms and LMS rosters",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		spanCtx, end := log.StartCommandSpan(cmd.Context(), cmd.Name())
		endCommandSpan = end
		cmd.SetContext(spanCtx)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if endCommandSpan != nil {
			endCommandSpan()
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "", "name of the profile/roster pair to operate on (defaults to the active profile, or \"default\")")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "override the resolved config directory")
}

func resolveConfigDir() (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	return persistence.ConfigDir()
}

// resolveProfileName honors an explicit --profile flag first, then the
// active-profile.txt marker left by a prior "init" or "use", then falls
// back to "default".
func resolveProfileName(dir string) (string, error) {
	if profileName != "" {
		return profileName, nil
	}
	active, err := persistence.ReadActiveProfile(dir)
	if err != nil {
		return "", err
	}
	if active != "" {
		return active, nil
	}
	return "default", nil
}

func loadProfileAndRoster() (model.Profile, model.Roster, error) {
	dir, err := resolveConfigDir()
	if err != nil {
		return model.Profile{}, model.Roster{}, err
	}
	name, err := resolveProfileName(dir)
	if err != nil {
		return model.Profile{}, model.Roster{}, err
	}
	profile, err := persistence.LoadProfile(dir, name)
	if err != nil {
		return model.Profile{}, model.Roster{}, err
	}
	r, err := persistence.LoadRoster(dir, name)
	if err != nil {
		return model.Profile{}, model.Roster{}, err
	}
	return profile, r, nil
}

func saveProfileAndRoster(profile model.Profile, r model.Roster) error {
	dir, err := resolveConfigDir()
	if err != nil {
		return err
	}
	return persistence.SaveProfileAndRoster(dir, profile, r)
}

// gitTokenEnvVar returns the environment variable a bare profile (no
// access token committed to disk) falls back to for a given platform kind.
func gitTokenEnvVar(kind string) string {
	switch kind {
	case string(port.PlatformGitHub):
		return constants.EnvGitHubToken
	case string(port.PlatformGitLab):
		return constants.EnvGitLabToken
	case string(port.PlatformGitea):
		return constants.EnvGiteaToken
	default:
		return ""
	}
}

func lmsTokenEnvVar(kind string) string {
	switch kind {
	case string(port.LmsCanvas):
		return constants.EnvCanvasToken
	case string(port.LmsMoodle):
		return constants.EnvMoodleToken
	default:
		return ""
	}
}

func buildPlatformClient(ctx context.Context, profile model.Profile) (port.Platform, error) {
	g := profile.GitConnection
	accessToken := g.AccessToken
	if accessToken == "" {
		if envVar := gitTokenEnvVar(g.Kind); envVar != "" {
			accessToken = os.Getenv(envVar)
		}
	}
	client, err := platform.NewClient(platform.ConnectionParams{
		Kind:         port.PlatformKind(g.Kind),
		BaseURL:      g.BaseURL,
		AccessToken:  accessToken,
		Organization: g.Organization,
		User:         g.User,
		Timeout:      30 * time.Second,
		MaxRetries:   3,
		RetryDelay:   time.Second,
		RetryBackoff: true,
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "platform client constructed", "kind", g.Kind, "base_url", g.BaseURL, "token", redact.Token(accessToken))
	return client, nil
}

// buildLmsClient returns a client along with ctx tagged with the
// profile's course id (if configured), so every downstream LMS call
// made with the returned context carries it in its log lines.
func buildLmsClient(ctx context.Context, profile model.Profile) (port.LmsClient, context.Context, error) {
	l := profile.LmsConnection
	if l.CourseID != "" {
		ctx = log.AppendCtx(ctx, slog.String(string(constants.CourseContextKey), l.CourseID))
	}
	accessToken, token := l.AccessToken, l.Token
	if accessToken == "" && token == "" {
		if envVar := lmsTokenEnvVar(l.Kind); envVar != "" {
			fromEnv := os.Getenv(envVar)
			accessToken, token = fromEnv, fromEnv
		}
	}
	client, err := lms.NewClient(lms.ConnectionParams{
		Kind:         port.LmsKind(l.Kind),
		BaseURL:      l.BaseURL,
		AccessToken:  accessToken,
		Token:        token,
		Timeout:      30 * time.Second,
		MaxRetries:   3,
		RetryDelay:   time.Second,
		RetryBackoff: true,
	})
	if err != nil {
		return nil, ctx, err
	}
	redacted := accessToken
	if redacted == "" {
		redacted = token
	}
	slog.InfoContext(ctx, "lms client constructed", "kind", l.Kind, "base_url", l.BaseURL, "token", redact.Token(redacted))
	return client, ctx, nil
}

// exitOnFailures returns an error if result reports any failed
// operations, so cobra's default error handling maps it to a nonzero
// process exit code.
func exitOnFailures(failed int) error {
	if failed > 0 {
		return fmt.Errorf("%d operation(s) failed", failed)
	}
	return nil
}

func printf(format string, args ...any) {
	fmt.Fprintf(os.Stdout, format, args...)
}

package platform

import (
	"strings"
	"time"

	"github.com/edu-tools/classroom-repos/internal/domain/port"
	classroomerrors "github.com/edu-tools/classroom-repos/pkg/errors"
)

// ConnectionParams describes how to reach a configured Git hosting
// platform: which kind to build, optionally explicit, and credentials.
type ConnectionParams struct {
	Kind port.PlatformKind // optional; empty triggers detection from BaseURL

	BaseURL      string
	AccessToken  string
	Organization string
	User         string

	Timeout      time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
	RetryBackoff bool
}

// DetectKind infers a PlatformKind from a base URL: an absolute
// filesystem path or file:// URL is Local; otherwise the whole URL is
// searched case-insensitively for "github", "gitlab", "gitea", in that
// order.
// Returns "" if no convention matches.
func DetectKind(baseURL string) port.PlatformKind {
	if strings.HasPrefix(baseURL, "/") || strings.HasPrefix(baseURL, "file://") {
		return port.PlatformLocal
	}
	lower := strings.ToLower(baseURL)
	switch {
	case strings.Contains(lower, "github"):
		return port.PlatformGitHub
	case strings.Contains(lower, "gitlab"):
		return port.PlatformGitLab
	case strings.Contains(lower, "gitea"):
		return port.PlatformGitea
	default:
		return ""
	}
}

// NewClient builds the concrete Platform for params.Kind, detecting the
// kind from params.BaseURL when params.Kind is empty.
func NewClient(params ConnectionParams) (port.Platform, error) {
	kind := params.Kind
	if kind == "" {
		kind = DetectKind(params.BaseURL)
	}
	if kind == "" {
		return nil, classroomerrors.NewInvalidURL("cannot detect platform kind from base_url: " + params.BaseURL)
	}

	switch kind {
	case port.PlatformGitHub:
		return NewGitHubClient(GitHubConfig{
			BaseURL:      params.BaseURL,
			AccessToken:  params.AccessToken,
			Organization: params.Organization,
			User:         params.User,
			Timeout:      params.Timeout,
			MaxRetries:   params.MaxRetries,
			RetryDelay:   params.RetryDelay,
			RetryBackoff: params.RetryBackoff,
		}), nil
	case port.PlatformGitLab:
		return NewGitLabClient(GitLabConfig{
			BaseURL:      params.BaseURL,
			AccessToken:  params.AccessToken,
			Organization: params.Organization,
			User:         params.User,
			Timeout:      params.Timeout,
			MaxRetries:   params.MaxRetries,
			RetryDelay:   params.RetryDelay,
			RetryBackoff: params.RetryBackoff,
		}), nil
	case port.PlatformGitea:
		return NewGiteaClient(GiteaConfig{
			BaseURL:      params.BaseURL,
			AccessToken:  params.AccessToken,
			Organization: params.Organization,
			User:         params.User,
			Timeout:      params.Timeout,
			MaxRetries:   params.MaxRetries,
			RetryDelay:   params.RetryDelay,
			RetryBackoff: params.RetryBackoff,
		}), nil
	case port.PlatformLocal:
		root := strings.TrimPrefix(params.BaseURL, "file://")
		return NewLocalClient(LocalConfig{
			Root:         root,
			Organization: params.Organization,
			User:         params.User,
		}), nil
	default:
		return nil, classroomerrors.NewValidation("unknown platform kind: " + string(kind))
	}
}

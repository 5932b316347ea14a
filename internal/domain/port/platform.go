// Package port defines the interfaces the core depends on for Git hosting
// and LMS integrations, so that concrete transports (GitHub, GitLab, Gitea,
// Local, Canvas, Moodle) can be swapped without touching orchestration code.
package port

import (
	"context"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
)

// RepoPermission mirrors model.RepoPermission at the platform boundary.
type RepoPermission = model.RepoPermission

// Team is a group of users on the Git hosting platform, used to scope
// repository access.
type Team struct {
	Name    string
	Slug    string
	Members []string
}

// Repo is a single Git hosting repository.
type Repo struct {
	Name        string
	Description string
	Private     bool
	CloneURL    string
	HTMLURL     string
}

// IssueState filters GetRepoIssues.
type IssueState = model.IssueState

// Issue is a Git hosting issue.
type Issue struct {
	Number int
	Title  string
	Body   string
	State  IssueState
}

// CreateRepoResult reports whether CreateRepo created a new repo or found
// an existing one (idempotent create).
type CreateRepoResult struct {
	Repo    Repo
	Created bool
}

// PlatformKind identifies a concrete Platform implementation.
type PlatformKind string

const (
	PlatformGitHub PlatformKind = "github"
	PlatformGitLab PlatformKind = "gitlab"
	PlatformGitea  PlatformKind = "gitea"
	PlatformLocal  PlatformKind = "local"
)

// Platform is the capability set every Git hosting backend implements:
// GitHub, GitLab, Gitea, and a filesystem-backed Local test double.
type Platform interface {
	CreateTeam(ctx context.Context, name string, members []string, permission RepoPermission) (Team, error)
	DeleteTeam(ctx context.Context, name string) error
	GetTeams(ctx context.Context, filter func(Team) bool) ([]Team, error)
	AssignRepo(ctx context.Context, team Team, repo Repo, permission RepoPermission) error
	AssignMembers(ctx context.Context, team Team, members []string) error

	CreateRepo(ctx context.Context, name, description string, private bool, team *Team) (CreateRepoResult, error)
	DeleteRepo(ctx context.Context, repo Repo) error
	GetRepos(ctx context.Context, urlFilter func(string) bool) ([]Repo, error)
	GetRepo(ctx context.Context, name string, team *Team) (Repo, error)
	GetTeamRepos(ctx context.Context, team Team) ([]Repo, error)
	GetRepoURLs(ctx context.Context, assignmentNames []string, org string, teamNames []string, insertAuth bool) ([]string, error)

	CreateIssue(ctx context.Context, repo Repo, title, body string) (Issue, error)
	CloseIssue(ctx context.Context, repo Repo, number int) error
	GetRepoIssues(ctx context.Context, repo Repo, state IssueState) ([]Issue, error)

	InsertAuth(url string) string
	ExtractRepoName(url string) string
	ForOrganization(org string) Platform
	VerifySettings(ctx context.Context) error

	OrgName() string
	User() string
	BaseURL() string
}

// PlatformParams configures a Platform built by the factory.
type PlatformParams struct {
	BaseURL      string
	AccessToken  string
	Organization string
	User         string
}

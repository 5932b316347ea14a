package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
	"github.com/edu-tools/classroom-repos/internal/domain/port"
	classroomerrors "github.com/edu-tools/classroom-repos/pkg/errors"
)

// LocalClient is a filesystem-backed port.Platform test double. Storage
// layout under root:
//
//	<root>/orgs/<org>/{teams,repos,issues}/
//
// Teams and repos are one JSON file per entity. Issues nest under
// issues/<repo>/<n>.json with n assigned by max+1. Team-to-repo
// assignment is encoded as a "[team:<name>]" tag appended to the repo's
// description, a crude but deterministic convention for test legibility.
type LocalClient struct {
	root string
	org  string
	user string
}

var _ port.Platform = (*LocalClient)(nil)

// LocalConfig configures a LocalClient.
type LocalConfig struct {
	Root         string
	Organization string
	User         string
}

func NewLocalClient(cfg LocalConfig) *LocalClient {
	return &LocalClient{root: cfg.Root, org: cfg.Organization, user: cfg.User}
}

func (c *LocalClient) orgDir() string    { return filepath.Join(c.root, "orgs", c.org) }
func (c *LocalClient) teamsDir() string  { return filepath.Join(c.orgDir(), "teams") }
func (c *LocalClient) reposDir() string  { return filepath.Join(c.orgDir(), "repos") }
func (c *LocalClient) issuesDir() string { return filepath.Join(c.orgDir(), "issues") }

type localTeam struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type localRepo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Private     bool   `json:"private"`
}

type localIssue struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	State  string `json:"state"`
}

func teamTag(name string) string { return "[team:" + name + "]" }

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return classroomerrors.NewFileError("create directory", path, err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return classroomerrors.NewOther("encode json", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return classroomerrors.NewFileError("write file", path, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return classroomerrors.NewNotFound(path)
		}
		return classroomerrors.NewFileError("read file", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return classroomerrors.NewOther("decode json", err)
	}
	return nil
}

func (c *LocalClient) teamPath(name string) string { return filepath.Join(c.teamsDir(), name+".json") }
func (c *LocalClient) repoPath(name string) string { return filepath.Join(c.reposDir(), name+".json") }

func (c *LocalClient) CreateTeam(ctx context.Context, name string, members []string, permission model.RepoPermission) (port.Team, error) {
	t := localTeam{Name: name, Members: members}
	if err := writeJSON(c.teamPath(name), t); err != nil {
		return port.Team{}, err
	}
	return port.Team{Name: name, Slug: name, Members: members}, nil
}

func (c *LocalClient) DeleteTeam(ctx context.Context, name string) error {
	if err := os.Remove(c.teamPath(name)); err != nil {
		if os.IsNotExist(err) {
			return classroomerrors.NewNotFound("team not found: " + name)
		}
		return classroomerrors.NewFileError("remove file", c.teamPath(name), err)
	}
	return nil
}

func (c *LocalClient) GetTeams(ctx context.Context, filter func(port.Team) bool) ([]port.Team, error) {
	entries, err := os.ReadDir(c.teamsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, classroomerrors.NewFileError("read directory", c.teamsDir(), err)
	}
	var out []port.Team
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		var t localTeam
		if err := readJSON(filepath.Join(c.teamsDir(), e.Name()), &t); err != nil {
			return nil, err
		}
		team := port.Team{Name: t.Name, Slug: t.Name, Members: t.Members}
		if filter == nil || filter(team) {
			out = append(out, team)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c *LocalClient) AssignRepo(ctx context.Context, team port.Team, repo port.Repo, permission model.RepoPermission) error {
	var r localRepo
	path := c.repoPath(repo.Name)
	if err := readJSON(path, &r); err != nil {
		return err
	}
	tag := teamTag(team.Name)
	if !strings.Contains(r.Description, tag) {
		r.Description = strings.TrimSpace(r.Description + " " + tag)
	}
	return writeJSON(path, r)
}

func (c *LocalClient) AssignMembers(ctx context.Context, team port.Team, members []string) error {
	var t localTeam
	path := c.teamPath(team.Name)
	if err := readJSON(path, &t); err != nil {
		return err
	}
	t.Members = members
	return writeJSON(path, t)
}

func (c *LocalClient) CreateRepo(ctx context.Context, name, description string, private bool, team *port.Team) (port.CreateRepoResult, error) {
	existing, err := c.GetRepo(ctx, name, team)
	if err == nil {
		if team != nil {
			if assignErr := c.AssignRepo(ctx, *team, existing, model.PermissionWrite); assignErr != nil {
				return port.CreateRepoResult{}, assignErr
			}
		}
		return port.CreateRepoResult{Repo: existing, Created: false}, nil
	}
	if !isNotFound(err) {
		return port.CreateRepoResult{}, err
	}

	r := localRepo{Name: name, Description: description, Private: private}
	if err := writeJSON(c.repoPath(name), r); err != nil {
		return port.CreateRepoResult{}, err
	}

	repoDir := filepath.Join(c.orgDir(), name)
	if err := os.MkdirAll(repoDir, 0o755); err != nil {
		return port.CreateRepoResult{}, classroomerrors.NewFileError("create directory", repoDir, err)
	}
	cmd := exec.CommandContext(ctx, "git", "init", "--bare", repoDir)
	if out, err := cmd.CombinedOutput(); err != nil {
		return port.CreateRepoResult{}, classroomerrors.NewGitError("git init --bare: "+strings.TrimSpace(string(out)), err)
	}

	repo := c.toRepo(r)
	if team != nil {
		if err := c.AssignRepo(ctx, *team, repo, model.PermissionWrite); err != nil {
			return port.CreateRepoResult{}, err
		}
		repo, err = c.GetRepo(ctx, name, team)
		if err != nil {
			return port.CreateRepoResult{}, err
		}
	}
	return port.CreateRepoResult{Repo: repo, Created: true}, nil
}

func (c *LocalClient) toRepo(r localRepo) port.Repo {
	dir := filepath.Join(c.orgDir(), r.Name)
	return port.Repo{
		Name:        r.Name,
		Description: r.Description,
		Private:     r.Private,
		CloneURL:    "file://" + dir,
		HTMLURL:     "file://" + dir,
	}
}

func (c *LocalClient) DeleteRepo(ctx context.Context, repo port.Repo) error {
	if err := os.Remove(c.repoPath(repo.Name)); err != nil {
		if os.IsNotExist(err) {
			return classroomerrors.NewNotFound("repo not found: " + repo.Name)
		}
		return classroomerrors.NewFileError("remove file", c.repoPath(repo.Name), err)
	}
	repoDir := filepath.Join(c.orgDir(), repo.Name)
	if err := os.RemoveAll(repoDir); err != nil {
		return classroomerrors.NewFileError("remove directory", repoDir, err)
	}
	issueDir := filepath.Join(c.issuesDir(), repo.Name)
	_ = os.RemoveAll(issueDir)
	return nil
}

func (c *LocalClient) GetRepos(ctx context.Context, urlFilter func(string) bool) ([]port.Repo, error) {
	entries, err := os.ReadDir(c.reposDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, classroomerrors.NewFileError("read directory", c.reposDir(), err)
	}
	var out []port.Repo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		var r localRepo
		if err := readJSON(filepath.Join(c.reposDir(), e.Name()), &r); err != nil {
			return nil, err
		}
		repo := c.toRepo(r)
		if urlFilter == nil || urlFilter(repo.HTMLURL) {
			out = append(out, repo)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c *LocalClient) GetRepo(ctx context.Context, name string, team *port.Team) (port.Repo, error) {
	var r localRepo
	if err := readJSON(c.repoPath(name), &r); err != nil {
		return port.Repo{}, err
	}
	if team != nil && !strings.Contains(r.Description, teamTag(team.Name)) {
		return port.Repo{}, classroomerrors.NewNotFound("repo not assigned to team: " + name)
	}
	return c.toRepo(r), nil
}

func (c *LocalClient) GetTeamRepos(ctx context.Context, team port.Team) ([]port.Repo, error) {
	all, err := c.GetRepos(ctx, nil)
	if err != nil {
		return nil, err
	}
	tag := teamTag(team.Name)
	var out []port.Repo
	for _, r := range all {
		if strings.Contains(r.Description, tag) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *LocalClient) GetRepoURLs(ctx context.Context, assignmentNames []string, org string, teamNames []string, insertAuth bool) ([]string, error) {
	if org == "" {
		org = c.org
	}
	var urls []string
	for _, name := range assignmentNames {
		if len(teamNames) == 0 {
			urls = append(urls, fmt.Sprintf("file://%s/orgs/%s/%s", c.root, org, name))
			continue
		}
		for _, team := range teamNames {
			urls = append(urls, fmt.Sprintf("file://%s/orgs/%s/%s-%s", c.root, org, team, name))
		}
	}
	return urls, nil
}

func (c *LocalClient) CreateIssue(ctx context.Context, repo port.Repo, title, body string) (port.Issue, error) {
	dir := filepath.Join(c.issuesDir(), repo.Name)
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return port.Issue{}, classroomerrors.NewFileError("read directory", dir, err)
	}
	next := 1
	for _, e := range entries {
		n, err := strconv.Atoi(strings.TrimSuffix(e.Name(), ".json"))
		if err == nil && n >= next {
			next = n + 1
		}
	}
	iss := localIssue{Number: next, Title: title, Body: body, State: string(model.IssueOpen)}
	if err := writeJSON(filepath.Join(dir, strconv.Itoa(next)+".json"), iss); err != nil {
		return port.Issue{}, err
	}
	return port.Issue{Number: iss.Number, Title: iss.Title, Body: iss.Body, State: model.IssueOpen}, nil
}

func (c *LocalClient) CloseIssue(ctx context.Context, repo port.Repo, number int) error {
	path := filepath.Join(c.issuesDir(), repo.Name, strconv.Itoa(number)+".json")
	var iss localIssue
	if err := readJSON(path, &iss); err != nil {
		return err
	}
	iss.State = string(model.IssueClosed)
	return writeJSON(path, iss)
}

func (c *LocalClient) GetRepoIssues(ctx context.Context, repo port.Repo, state model.IssueState) ([]port.Issue, error) {
	dir := filepath.Join(c.issuesDir(), repo.Name)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, classroomerrors.NewFileError("read directory", dir, err)
	}
	var out []port.Issue
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		var iss localIssue
		if err := readJSON(filepath.Join(dir, e.Name()), &iss); err != nil {
			return nil, err
		}
		if state != model.IssueAll && model.IssueState(iss.State) != state {
			continue
		}
		out = append(out, port.Issue{Number: iss.Number, Title: iss.Title, Body: iss.Body, State: model.IssueState(iss.State)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// InsertAuth is identity: the local backend has no network layer to
// authenticate against.
func (c *LocalClient) InsertAuth(rawURL string) string { return rawURL }

func (c *LocalClient) ExtractRepoName(rawURL string) string {
	return extractRepoName(rawURL)
}

func (c *LocalClient) ForOrganization(org string) port.Platform {
	clone := *c
	clone.org = org
	return &clone
}

func (c *LocalClient) VerifySettings(ctx context.Context) error {
	if err := os.MkdirAll(c.orgDir(), 0o755); err != nil {
		return classroomerrors.NewFileError("create directory", c.orgDir(), err)
	}
	return nil
}

func (c *LocalClient) OrgName() string { return c.org }
func (c *LocalClient) User() string    { return c.user }
func (c *LocalClient) BaseURL() string { return c.root }

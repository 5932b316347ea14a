package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
	"github.com/edu-tools/classroom-repos/internal/domain/port"
	classroomerrors "github.com/edu-tools/classroom-repos/pkg/errors"
	"github.com/edu-tools/classroom-repos/pkg/httpclient"
)

// GitHubClient implements port.Platform against the GitHub REST API.
type GitHubClient struct {
	apiRoot  string
	htmlBase string
	token    string
	org      string
	user     string

	httpClient *httpclient.Client
}

var _ port.Platform = (*GitHubClient)(nil)

// GitHubConfig configures a GitHubClient.
type GitHubConfig struct {
	BaseURL      string
	AccessToken  string
	Organization string
	User         string
	Timeout      time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
	RetryBackoff bool
}

// NewGitHubClient builds a GitHubClient. API root is api.github.com for
// github.com hosts, or {base_url}/api/v3 for GitHub Enterprise.
func NewGitHubClient(cfg GitHubConfig) *GitHubClient {
	base := strings.TrimRight(cfg.BaseURL, "/")
	apiRoot := base + "/api/v3"
	htmlBase := base
	if strings.Contains(strings.ToLower(base), "github.com") {
		apiRoot = "https://api.github.com"
		htmlBase = "https://github.com"
	}

	c := httpclient.NewClient(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRetries:   cfg.MaxRetries,
		RetryDelay:   cfg.RetryDelay,
		RetryBackoff: cfg.RetryBackoff,
	})
	c.AddRoundTripper(&tokenAuthRoundTripper{token: cfg.AccessToken})

	return &GitHubClient{
		apiRoot:    apiRoot,
		htmlBase:   htmlBase,
		token:      cfg.AccessToken,
		org:        cfg.Organization,
		user:       cfg.User,
		httpClient: c,
	}
}

type githubTeam struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type githubRepo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Private     bool   `json:"private"`
	CloneURL    string `json:"clone_url"`
	HTMLURL     string `json:"html_url"`
}

func (r githubRepo) toRepo() port.Repo {
	return port.Repo{Name: r.Name, Description: r.Description, Private: r.Private, CloneURL: r.CloneURL, HTMLURL: r.HTMLURL}
}

type githubIssue struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	State  string `json:"state"`
}

func githubPermissionString(p model.RepoPermission) string {
	switch p {
	case model.PermissionRead:
		return "pull"
	case model.PermissionWrite:
		return "push"
	case model.PermissionAdmin:
		return "admin"
	default:
		return "pull"
	}
}

func (c *GitHubClient) getPaged(ctx context.Context, path string) ([]json.RawMessage, error) {
	var all []json.RawMessage
	for page := 1; ; page++ {
		u := fmt.Sprintf("%s%s%sper_page=100&page=%d", c.apiRoot, path, sep(path), page)
		resp, err := c.httpClient.Request(ctx, http.MethodGet, u, nil, nil)
		if err != nil {
			return nil, mapHTTPError(err)
		}
		var batch []json.RawMessage
		if err := json.Unmarshal(resp.Body, &batch); err != nil {
			return nil, fmt.Errorf("decode github page: %w", err)
		}
		all = append(all, batch...)
		if len(batch) < 100 {
			break
		}
	}
	return all, nil
}

func sep(path string) string {
	if strings.Contains(path, "?") {
		return "&"
	}
	return "?"
}

func (c *GitHubClient) CreateTeam(ctx context.Context, name string, members []string, permission model.RepoPermission) (port.Team, error) {
	body := fmt.Sprintf(`{"name":%q,"permission":%q}`, name, githubPermissionString(permission))
	resp, err := c.httpClient.Request(ctx, http.MethodPost, c.apiRoot+"/orgs/"+c.org+"/teams", strings.NewReader(body), map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return port.Team{}, mapHTTPError(err)
	}
	var t githubTeam
	if err := json.Unmarshal(resp.Body, &t); err != nil {
		return port.Team{}, fmt.Errorf("decode github team: %w", err)
	}
	team := port.Team{Name: t.Name, Slug: t.Slug, Members: members}
	if err := c.AssignMembers(ctx, team, members); err != nil {
		return port.Team{}, err
	}
	return team, nil
}

func (c *GitHubClient) DeleteTeam(ctx context.Context, name string) error {
	team, err := c.teamBySlug(ctx, name)
	if err != nil {
		return err
	}
	_, err = c.httpClient.Request(ctx, http.MethodDelete, c.apiRoot+"/orgs/"+c.org+"/teams/"+team.Slug, nil, nil)
	if err != nil {
		return mapHTTPError(err)
	}
	return nil
}

func (c *GitHubClient) teamBySlug(ctx context.Context, name string) (port.Team, error) {
	teams, err := c.GetTeams(ctx, func(t port.Team) bool { return t.Name == name })
	if err != nil {
		return port.Team{}, err
	}
	if len(teams) == 0 {
		return port.Team{}, classroomerrors.NewNotFound("team not found: " + name)
	}
	return teams[0], nil
}

func (c *GitHubClient) GetTeams(ctx context.Context, filter func(port.Team) bool) ([]port.Team, error) {
	raw, err := c.getPaged(ctx, "/orgs/"+c.org+"/teams")
	if err != nil {
		return nil, err
	}
	var out []port.Team
	for _, r := range raw {
		var t githubTeam
		if err := json.Unmarshal(r, &t); err != nil {
			return nil, fmt.Errorf("decode github team: %w", err)
		}
		team := port.Team{Name: t.Name, Slug: t.Slug}
		if filter == nil || filter(team) {
			out = append(out, team)
		}
	}
	return out, nil
}

func (c *GitHubClient) AssignRepo(ctx context.Context, team port.Team, repo port.Repo, permission model.RepoPermission) error {
	body := fmt.Sprintf(`{"permission":%q}`, githubPermissionString(permission))
	_, err := c.httpClient.Request(ctx, http.MethodPut,
		c.apiRoot+"/orgs/"+c.org+"/teams/"+team.Slug+"/repos/"+c.org+"/"+repo.Name,
		strings.NewReader(body), map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return mapHTTPError(err)
	}
	return nil
}

func (c *GitHubClient) AssignMembers(ctx context.Context, team port.Team, members []string) error {
	for _, m := range members {
		_, err := c.httpClient.Request(ctx, http.MethodPut,
			c.apiRoot+"/orgs/"+c.org+"/teams/"+team.Slug+"/memberships/"+m, nil, nil)
		if err != nil {
			return mapHTTPError(err)
		}
	}
	return nil
}

func (c *GitHubClient) CreateRepo(ctx context.Context, name, description string, private bool, team *port.Team) (port.CreateRepoResult, error) {
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

	body := fmt.Sprintf(`{"name":%q,"description":%q,"private":%t}`, name, description, private)
	resp, err := c.httpClient.Request(ctx, http.MethodPost, c.apiRoot+"/orgs/"+c.org+"/repos",
		strings.NewReader(body), map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return port.CreateRepoResult{}, mapHTTPError(err)
	}
	var gr githubRepo
	if err := json.Unmarshal(resp.Body, &gr); err != nil {
		return port.CreateRepoResult{}, fmt.Errorf("decode github repo: %w", err)
	}
	repo := gr.toRepo()
	if team != nil {
		if err := c.AssignRepo(ctx, *team, repo, model.PermissionWrite); err != nil {
			return port.CreateRepoResult{}, err
		}
	}
	return port.CreateRepoResult{Repo: repo, Created: true}, nil
}

func (c *GitHubClient) DeleteRepo(ctx context.Context, repo port.Repo) error {
	_, err := c.httpClient.Request(ctx, http.MethodDelete, c.apiRoot+"/repos/"+c.org+"/"+repo.Name, nil, nil)
	if err != nil {
		return mapHTTPError(err)
	}
	return nil
}

func (c *GitHubClient) GetRepos(ctx context.Context, urlFilter func(string) bool) ([]port.Repo, error) {
	raw, err := c.getPaged(ctx, "/orgs/"+c.org+"/repos")
	if err != nil {
		return nil, err
	}
	var out []port.Repo
	for _, r := range raw {
		var gr githubRepo
		if err := json.Unmarshal(r, &gr); err != nil {
			return nil, fmt.Errorf("decode github repo: %w", err)
		}
		repo := gr.toRepo()
		if urlFilter == nil || urlFilter(repo.HTMLURL) {
			out = append(out, repo)
		}
	}
	return out, nil
}

func (c *GitHubClient) GetRepo(ctx context.Context, name string, team *port.Team) (port.Repo, error) {
	resp, err := c.httpClient.Request(ctx, http.MethodGet, c.apiRoot+"/repos/"+c.org+"/"+name, nil, nil)
	if err != nil {
		return port.Repo{}, mapHTTPError(err)
	}
	var gr githubRepo
	if err := json.Unmarshal(resp.Body, &gr); err != nil {
		return port.Repo{}, fmt.Errorf("decode github repo: %w", err)
	}
	return gr.toRepo(), nil
}

func (c *GitHubClient) GetTeamRepos(ctx context.Context, team port.Team) ([]port.Repo, error) {
	raw, err := c.getPaged(ctx, "/orgs/"+c.org+"/teams/"+team.Slug+"/repos")
	if err != nil {
		return nil, err
	}
	var out []port.Repo
	for _, r := range raw {
		var gr githubRepo
		if err := json.Unmarshal(r, &gr); err != nil {
			return nil, fmt.Errorf("decode github repo: %w", err)
		}
		out = append(out, gr.toRepo())
	}
	return out, nil
}

func (c *GitHubClient) GetRepoURLs(ctx context.Context, assignmentNames []string, org string, teamNames []string, insertAuth bool) ([]string, error) {
	if org == "" {
		org = c.org
	}
	var urls []string
	for _, name := range assignmentNames {
		if len(teamNames) == 0 {
			u := fmt.Sprintf("%s/%s/%s.git", c.htmlBase, org, name)
			if insertAuth {
				u = c.InsertAuth(u)
			}
			urls = append(urls, u)
			continue
		}
		for _, team := range teamNames {
			u := fmt.Sprintf("%s/%s/%s-%s.git", c.htmlBase, org, team, name)
			if insertAuth {
				u = c.InsertAuth(u)
			}
			urls = append(urls, u)
		}
	}
	return urls, nil
}

func (c *GitHubClient) CreateIssue(ctx context.Context, repo port.Repo, title, body string) (port.Issue, error) {
	reqBody := fmt.Sprintf(`{"title":%q,"body":%q}`, title, body)
	resp, err := c.httpClient.Request(ctx, http.MethodPost, c.apiRoot+"/repos/"+c.org+"/"+repo.Name+"/issues",
		strings.NewReader(reqBody), map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return port.Issue{}, mapHTTPError(err)
	}
	var gi githubIssue
	if err := json.Unmarshal(resp.Body, &gi); err != nil {
		return port.Issue{}, fmt.Errorf("decode github issue: %w", err)
	}
	return port.Issue{Number: gi.Number, Title: gi.Title, Body: gi.Body, State: model.IssueState(gi.State)}, nil
}

func (c *GitHubClient) CloseIssue(ctx context.Context, repo port.Repo, number int) error {
	body := `{"state":"closed"}`
	_, err := c.httpClient.Request(ctx, http.MethodPatch,
		c.apiRoot+"/repos/"+c.org+"/"+repo.Name+"/issues/"+strconv.Itoa(number),
		strings.NewReader(body), map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return mapHTTPError(err)
	}
	return nil
}

func (c *GitHubClient) GetRepoIssues(ctx context.Context, repo port.Repo, state model.IssueState) ([]port.Issue, error) {
	raw, err := c.getPaged(ctx, fmt.Sprintf("/repos/%s/%s/issues?state=%s", c.org, repo.Name, state))
	if err != nil {
		return nil, err
	}
	var out []port.Issue
	for _, r := range raw {
		var gi githubIssue
		if err := json.Unmarshal(r, &gi); err != nil {
			return nil, fmt.Errorf("decode github issue: %w", err)
		}
		out = append(out, port.Issue{Number: gi.Number, Title: gi.Title, Body: gi.Body, State: model.IssueState(gi.State)})
	}
	return out, nil
}

// InsertAuth injects the token as an oauth2 basic-auth userinfo segment,
// GitHub's convention for authenticated clone URLs.
func (c *GitHubClient) InsertAuth(rawURL string) string {
	return insertBasicAuth(rawURL, "oauth2", c.token)
}

func (c *GitHubClient) ExtractRepoName(rawURL string) string {
	return extractRepoName(rawURL)
}

func (c *GitHubClient) ForOrganization(org string) port.Platform {
	clone := *c
	clone.org = org
	return &clone
}

func (c *GitHubClient) VerifySettings(ctx context.Context) error {
	_, err := c.httpClient.Request(ctx, http.MethodGet, c.apiRoot+"/orgs/"+c.org, nil, nil)
	if err != nil {
		return mapHTTPError(err)
	}
	return nil
}

func (c *GitHubClient) OrgName() string { return c.org }
func (c *GitHubClient) User() string    { return c.user }
func (c *GitHubClient) BaseURL() string { return c.apiRoot }

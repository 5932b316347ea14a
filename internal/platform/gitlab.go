package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
	"github.com/edu-tools/classroom-repos/internal/domain/port"
	"github.com/edu-tools/classroom-repos/pkg/httpclient"
)

// GitLabClient implements port.Platform against the GitLab REST API.
// Structurally parallel to GitHubClient: "teams" are GitLab subgroups,
// "repos" are projects addressed by their URL-encoded namespace/name path.
type GitLabClient struct {
	apiRoot  string
	htmlBase string
	token    string
	org      string
	user     string

	httpClient *httpclient.Client
}

var _ port.Platform = (*GitLabClient)(nil)

// GitLabConfig configures a GitLabClient.
type GitLabConfig struct {
	BaseURL      string
	AccessToken  string
	Organization string
	User         string
	Timeout      time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
	RetryBackoff bool
}

func NewGitLabClient(cfg GitLabConfig) *GitLabClient {
	base := strings.TrimRight(cfg.BaseURL, "/")
	c := httpclient.NewClient(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRetries:   cfg.MaxRetries,
		RetryDelay:   cfg.RetryDelay,
		RetryBackoff: cfg.RetryBackoff,
	})
	c.AddRoundTripper(&privateTokenRoundTripper{token: cfg.AccessToken})
	return &GitLabClient{
		apiRoot:    base + "/api/v4",
		htmlBase:   base,
		token:      cfg.AccessToken,
		org:        cfg.Organization,
		user:       cfg.User,
		httpClient: c,
	}
}

func gitlabAccessLevel(p model.RepoPermission) int {
	switch p {
	case model.PermissionRead:
		return 20
	case model.PermissionWrite:
		return 30
	case model.PermissionAdmin:
		return 40
	default:
		return 20
	}
}

func projectPath(org, name string) string {
	return url.PathEscape(org + "/" + name)
}

type gitlabGroup struct {
	Name     string `json:"name"`
	FullPath string `json:"full_path"`
}

type gitlabProject struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
	HTTPURLToRepo string `json:"http_url_to_repo"`
	WebURL      string `json:"web_url"`
}

func (p gitlabProject) toRepo() port.Repo {
	return port.Repo{Name: p.Name, Description: p.Description, Private: p.Visibility == "private", CloneURL: p.HTTPURLToRepo, HTMLURL: p.WebURL}
}

type gitlabIssue struct {
	IID   int    `json:"iid"`
	Title string `json:"title"`
	Desc  string `json:"description"`
	State string `json:"state"`
}

func (c *GitLabClient) getPaged(ctx context.Context, path string) ([]json.RawMessage, error) {
	var all []json.RawMessage
	for page := 1; ; page++ {
		u := fmt.Sprintf("%s%s%sper_page=100&page=%d", c.apiRoot, path, sep(path), page)
		resp, err := c.httpClient.Request(ctx, http.MethodGet, u, nil, nil)
		if err != nil {
			return nil, mapHTTPError(err)
		}
		var batch []json.RawMessage
		if err := json.Unmarshal(resp.Body, &batch); err != nil {
			return nil, fmt.Errorf("decode gitlab page: %w", err)
		}
		all = append(all, batch...)
		if len(batch) < 100 {
			break
		}
	}
	return all, nil
}

func (c *GitLabClient) CreateTeam(ctx context.Context, name string, members []string, permission model.RepoPermission) (port.Team, error) {
	body := fmt.Sprintf(`{"name":%q,"path":%q,"parent_id":null}`, name, name)
	resp, err := c.httpClient.Request(ctx, http.MethodPost, c.apiRoot+"/groups/"+url.PathEscape(c.org)+"/subgroups",
		strings.NewReader(body), map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return port.Team{}, mapHTTPError(err)
	}
	var g gitlabGroup
	if err := json.Unmarshal(resp.Body, &g); err != nil {
		return port.Team{}, fmt.Errorf("decode gitlab group: %w", err)
	}
	team := port.Team{Name: g.Name, Slug: g.FullPath, Members: members}
	if err := c.AssignMembers(ctx, team, members); err != nil {
		return port.Team{}, err
	}
	return team, nil
}

func (c *GitLabClient) DeleteTeam(ctx context.Context, name string) error {
	teams, err := c.GetTeams(ctx, func(t port.Team) bool { return t.Name == name })
	if err != nil {
		return err
	}
	if len(teams) == 0 {
		return nil
	}
	_, err = c.httpClient.Request(ctx, http.MethodDelete, c.apiRoot+"/groups/"+url.PathEscape(teams[0].Slug), nil, nil)
	if err != nil {
		return mapHTTPError(err)
	}
	return nil
}

func (c *GitLabClient) GetTeams(ctx context.Context, filter func(port.Team) bool) ([]port.Team, error) {
	raw, err := c.getPaged(ctx, "/groups/"+url.PathEscape(c.org)+"/subgroups")
	if err != nil {
		return nil, err
	}
	var out []port.Team
	for _, r := range raw {
		var g gitlabGroup
		if err := json.Unmarshal(r, &g); err != nil {
			return nil, fmt.Errorf("decode gitlab group: %w", err)
		}
		team := port.Team{Name: g.Name, Slug: g.FullPath}
		if filter == nil || filter(team) {
			out = append(out, team)
		}
	}
	return out, nil
}

func (c *GitLabClient) AssignRepo(ctx context.Context, team port.Team, repo port.Repo, permission model.RepoPermission) error {
	body := fmt.Sprintf(`{"group_access":%d}`, gitlabAccessLevel(permission))
	_, err := c.httpClient.Request(ctx, http.MethodPost,
		c.apiRoot+"/projects/"+projectPath(c.org, repo.Name)+"/share",
		strings.NewReader(body), map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return mapHTTPError(err)
	}
	return nil
}

func (c *GitLabClient) AssignMembers(ctx context.Context, team port.Team, members []string) error {
	for _, m := range members {
		body := fmt.Sprintf(`{"user_id":%q,"access_level":30}`, m)
		_, err := c.httpClient.Request(ctx, http.MethodPost, c.apiRoot+"/groups/"+url.PathEscape(team.Slug)+"/members",
			strings.NewReader(body), map[string]string{"Content-Type": "application/json"})
		if err != nil {
			return mapHTTPError(err)
		}
	}
	return nil
}

func (c *GitLabClient) CreateRepo(ctx context.Context, name, description string, private bool, team *port.Team) (port.CreateRepoResult, error) {
	existing, err := c.GetRepo(ctx, name, team)
	if err == nil {
		return port.CreateRepoResult{Repo: existing, Created: false}, nil
	}
	if !isNotFound(err) {
		return port.CreateRepoResult{}, err
	}

	namespace := c.org
	if team != nil {
		namespace = team.Slug
	}
	visibility := "public"
	if private {
		visibility = "private"
	}
	body := fmt.Sprintf(`{"name":%q,"description":%q,"visibility":%q,"namespace_id":%q}`, name, description, visibility, namespace)
	resp, err := c.httpClient.Request(ctx, http.MethodPost, c.apiRoot+"/projects",
		strings.NewReader(body), map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return port.CreateRepoResult{}, mapHTTPError(err)
	}
	var p gitlabProject
	if err := json.Unmarshal(resp.Body, &p); err != nil {
		return port.CreateRepoResult{}, fmt.Errorf("decode gitlab project: %w", err)
	}
	return port.CreateRepoResult{Repo: p.toRepo(), Created: true}, nil
}

func (c *GitLabClient) DeleteRepo(ctx context.Context, repo port.Repo) error {
	_, err := c.httpClient.Request(ctx, http.MethodDelete, c.apiRoot+"/projects/"+projectPath(c.org, repo.Name), nil, nil)
	if err != nil {
		return mapHTTPError(err)
	}
	return nil
}

func (c *GitLabClient) GetRepos(ctx context.Context, urlFilter func(string) bool) ([]port.Repo, error) {
	raw, err := c.getPaged(ctx, "/groups/"+url.PathEscape(c.org)+"/projects")
	if err != nil {
		return nil, err
	}
	var out []port.Repo
	for _, r := range raw {
		var p gitlabProject
		if err := json.Unmarshal(r, &p); err != nil {
			return nil, fmt.Errorf("decode gitlab project: %w", err)
		}
		repo := p.toRepo()
		if urlFilter == nil || urlFilter(repo.HTMLURL) {
			out = append(out, repo)
		}
	}
	return out, nil
}

func (c *GitLabClient) GetRepo(ctx context.Context, name string, team *port.Team) (port.Repo, error) {
	namespace := c.org
	if team != nil {
		namespace = team.Slug
	}
	resp, err := c.httpClient.Request(ctx, http.MethodGet, c.apiRoot+"/projects/"+projectPath(namespace, name), nil, nil)
	if err != nil {
		return port.Repo{}, mapHTTPError(err)
	}
	var p gitlabProject
	if err := json.Unmarshal(resp.Body, &p); err != nil {
		return port.Repo{}, fmt.Errorf("decode gitlab project: %w", err)
	}
	return p.toRepo(), nil
}

func (c *GitLabClient) GetTeamRepos(ctx context.Context, team port.Team) ([]port.Repo, error) {
	raw, err := c.getPaged(ctx, "/groups/"+url.PathEscape(team.Slug)+"/projects")
	if err != nil {
		return nil, err
	}
	var out []port.Repo
	for _, r := range raw {
		var p gitlabProject
		if err := json.Unmarshal(r, &p); err != nil {
			return nil, fmt.Errorf("decode gitlab project: %w", err)
		}
		out = append(out, p.toRepo())
	}
	return out, nil
}

func (c *GitLabClient) GetRepoURLs(ctx context.Context, assignmentNames []string, org string, teamNames []string, insertAuth bool) ([]string, error) {
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

func (c *GitLabClient) CreateIssue(ctx context.Context, repo port.Repo, title, body string) (port.Issue, error) {
	reqBody := fmt.Sprintf(`{"title":%q,"description":%q}`, title, body)
	resp, err := c.httpClient.Request(ctx, http.MethodPost, c.apiRoot+"/projects/"+projectPath(c.org, repo.Name)+"/issues",
		strings.NewReader(reqBody), map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return port.Issue{}, mapHTTPError(err)
	}
	var gi gitlabIssue
	if err := json.Unmarshal(resp.Body, &gi); err != nil {
		return port.Issue{}, fmt.Errorf("decode gitlab issue: %w", err)
	}
	return port.Issue{Number: gi.IID, Title: gi.Title, Body: gi.Desc, State: model.IssueState(gi.State)}, nil
}

func (c *GitLabClient) CloseIssue(ctx context.Context, repo port.Repo, number int) error {
	_, err := c.httpClient.Request(ctx, http.MethodPut,
		c.apiRoot+"/projects/"+projectPath(c.org, repo.Name)+"/issues/"+strconv.Itoa(number)+"?state_event=close", nil, nil)
	if err != nil {
		return mapHTTPError(err)
	}
	return nil
}

func (c *GitLabClient) GetRepoIssues(ctx context.Context, repo port.Repo, state model.IssueState) ([]port.Issue, error) {
	gitlabState := string(state)
	if state == model.IssueAll {
		gitlabState = "all"
	}
	raw, err := c.getPaged(ctx, fmt.Sprintf("/projects/%s/issues?state=%s", projectPath(c.org, repo.Name), gitlabState))
	if err != nil {
		return nil, err
	}
	var out []port.Issue
	for _, r := range raw {
		var gi gitlabIssue
		if err := json.Unmarshal(r, &gi); err != nil {
			return nil, fmt.Errorf("decode gitlab issue: %w", err)
		}
		out = append(out, port.Issue{Number: gi.IID, Title: gi.Title, Body: gi.Desc, State: model.IssueState(gi.State)})
	}
	return out, nil
}

// InsertAuth injects user:token basic-auth userinfo, GitLab's clone-URL
// authentication convention.
func (c *GitLabClient) InsertAuth(rawURL string) string {
	return insertBasicAuth(rawURL, c.user, c.token)
}

func (c *GitLabClient) ExtractRepoName(rawURL string) string {
	return extractRepoName(rawURL)
}

func (c *GitLabClient) ForOrganization(org string) port.Platform {
	clone := *c
	clone.org = org
	return &clone
}

func (c *GitLabClient) VerifySettings(ctx context.Context) error {
	_, err := c.httpClient.Request(ctx, http.MethodGet, c.apiRoot+"/groups/"+url.PathEscape(c.org), nil, nil)
	if err != nil {
		return mapHTTPError(err)
	}
	return nil
}

func (c *GitLabClient) OrgName() string { return c.org }
func (c *GitLabClient) User() string    { return c.user }
func (c *GitLabClient) BaseURL() string { return c.apiRoot }

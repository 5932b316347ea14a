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

// GiteaClient implements port.Platform against the Gitea API v1.
// base_url may or may not already carry the "/api/v1" suffix; html_base
// is derived by stripping it back off.
type GiteaClient struct {
	apiRoot  string
	htmlBase string
	token    string
	org      string
	user     string

	httpClient *httpclient.Client
}

var _ port.Platform = (*GiteaClient)(nil)

// GiteaConfig configures a GiteaClient.
type GiteaConfig struct {
	BaseURL      string
	AccessToken  string
	Organization string
	User         string
	Timeout      time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
	RetryBackoff bool
}

func NewGiteaClient(cfg GiteaConfig) *GiteaClient {
	base := strings.TrimRight(cfg.BaseURL, "/")
	htmlBase := strings.TrimSuffix(base, "/api/v1")
	apiRoot := htmlBase + "/api/v1"

	c := httpclient.NewClient(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRetries:   cfg.MaxRetries,
		RetryDelay:   cfg.RetryDelay,
		RetryBackoff: cfg.RetryBackoff,
	})
	c.AddRoundTripper(&tokenAuthRoundTripper{token: cfg.AccessToken})

	return &GiteaClient{
		apiRoot:    apiRoot,
		htmlBase:   htmlBase,
		token:      cfg.AccessToken,
		org:        cfg.Organization,
		user:       cfg.User,
		httpClient: c,
	}
}

type giteaTeam struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
}

type giteaRepo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Private     bool   `json:"private"`
	CloneURL    string `json:"clone_url"`
	HTMLURL     string `json:"html_url"`
}

func (r giteaRepo) toRepo() port.Repo {
	return port.Repo{Name: r.Name, Description: r.Description, Private: r.Private, CloneURL: r.CloneURL, HTMLURL: r.HTMLURL}
}

type giteaIssue struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	State  string `json:"state"`
}

func giteaPermissionString(p model.RepoPermission) string {
	switch p {
	case model.PermissionRead:
		return "read"
	case model.PermissionWrite:
		return "write"
	case model.PermissionAdmin:
		return "admin"
	default:
		return "read"
	}
}

// getPaged follows Gitea's page/limit pagination, stopping once a page
// returns fewer than the page size.
func (c *GiteaClient) getPaged(ctx context.Context, path string) ([]json.RawMessage, error) {
	const limit = 50
	var all []json.RawMessage
	for page := 1; ; page++ {
		u := fmt.Sprintf("%s%s%spage=%d&limit=%d", c.apiRoot, path, sep(path), page, limit)
		resp, err := c.httpClient.Request(ctx, http.MethodGet, u, nil, nil)
		if err != nil {
			return nil, mapHTTPError(err)
		}
		var batch []json.RawMessage
		if err := json.Unmarshal(resp.Body, &batch); err != nil {
			return nil, fmt.Errorf("decode gitea page: %w", err)
		}
		all = append(all, batch...)
		if len(batch) < limit {
			break
		}
	}
	return all, nil
}

func (c *GiteaClient) CreateTeam(ctx context.Context, name string, members []string, permission model.RepoPermission) (port.Team, error) {
	body := fmt.Sprintf(`{"name":%q,"permission":%q}`, name, giteaPermissionString(permission))
	resp, err := c.httpClient.Request(ctx, http.MethodPost, c.apiRoot+"/orgs/"+c.org+"/teams",
		strings.NewReader(body), map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return port.Team{}, mapHTTPError(err)
	}
	var t giteaTeam
	if err := json.Unmarshal(resp.Body, &t); err != nil {
		return port.Team{}, fmt.Errorf("decode gitea team: %w", err)
	}
	team := port.Team{Name: t.Name, Slug: strconv.Itoa(t.ID), Members: members}
	if err := c.AssignMembers(ctx, team, members); err != nil {
		return port.Team{}, err
	}
	return team, nil
}

func (c *GiteaClient) DeleteTeam(ctx context.Context, name string) error {
	team, err := c.teamByName(ctx, name)
	if err != nil {
		return err
	}
	_, err = c.httpClient.Request(ctx, http.MethodDelete, c.apiRoot+"/teams/"+team.Slug, nil, nil)
	if err != nil {
		return mapHTTPError(err)
	}
	return nil
}

func (c *GiteaClient) teamByName(ctx context.Context, name string) (port.Team, error) {
	raw, err := c.getPaged(ctx, "/orgs/"+c.org+"/teams")
	if err != nil {
		return port.Team{}, err
	}
	for _, r := range raw {
		var t giteaTeam
		if err := json.Unmarshal(r, &t); err != nil {
			return port.Team{}, fmt.Errorf("decode gitea team: %w", err)
		}
		if t.Name == name {
			return port.Team{Name: t.Name, Slug: strconv.Itoa(t.ID)}, nil
		}
	}
	return port.Team{}, classroomerrors.NewNotFound("team not found: " + name)
}

func (c *GiteaClient) GetTeams(ctx context.Context, filter func(port.Team) bool) ([]port.Team, error) {
	raw, err := c.getPaged(ctx, "/orgs/"+c.org+"/teams")
	if err != nil {
		return nil, err
	}
	var out []port.Team
	for _, r := range raw {
		var t giteaTeam
		if err := json.Unmarshal(r, &t); err != nil {
			return nil, fmt.Errorf("decode gitea team: %w", err)
		}
		team := port.Team{Name: t.Name, Slug: strconv.Itoa(t.ID)}
		if filter == nil || filter(team) {
			out = append(out, team)
		}
	}
	return out, nil
}

func (c *GiteaClient) AssignRepo(ctx context.Context, team port.Team, repo port.Repo, permission model.RepoPermission) error {
	_, err := c.httpClient.Request(ctx, http.MethodPut,
		c.apiRoot+"/teams/"+team.Slug+"/repos/"+c.org+"/"+repo.Name, nil, nil)
	if err != nil {
		return mapHTTPError(err)
	}
	return nil
}

func (c *GiteaClient) AssignMembers(ctx context.Context, team port.Team, members []string) error {
	for _, m := range members {
		_, err := c.httpClient.Request(ctx, http.MethodPut, c.apiRoot+"/teams/"+team.Slug+"/members/"+m, nil, nil)
		if err != nil {
			return mapHTTPError(err)
		}
	}
	return nil
}

func (c *GiteaClient) CreateRepo(ctx context.Context, name, description string, private bool, team *port.Team) (port.CreateRepoResult, error) {
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
	var gr giteaRepo
	if err := json.Unmarshal(resp.Body, &gr); err != nil {
		return port.CreateRepoResult{}, fmt.Errorf("decode gitea repo: %w", err)
	}
	repo := gr.toRepo()
	if team != nil {
		if err := c.AssignRepo(ctx, *team, repo, model.PermissionWrite); err != nil {
			return port.CreateRepoResult{}, err
		}
	}
	return port.CreateRepoResult{Repo: repo, Created: true}, nil
}

func (c *GiteaClient) DeleteRepo(ctx context.Context, repo port.Repo) error {
	_, err := c.httpClient.Request(ctx, http.MethodDelete, c.apiRoot+"/repos/"+c.org+"/"+repo.Name, nil, nil)
	if err != nil {
		return mapHTTPError(err)
	}
	return nil
}

func (c *GiteaClient) GetRepos(ctx context.Context, urlFilter func(string) bool) ([]port.Repo, error) {
	raw, err := c.getPaged(ctx, "/orgs/"+c.org+"/repos")
	if err != nil {
		return nil, err
	}
	var out []port.Repo
	for _, r := range raw {
		var gr giteaRepo
		if err := json.Unmarshal(r, &gr); err != nil {
			return nil, fmt.Errorf("decode gitea repo: %w", err)
		}
		repo := gr.toRepo()
		if urlFilter == nil || urlFilter(repo.HTMLURL) {
			out = append(out, repo)
		}
	}
	return out, nil
}

func (c *GiteaClient) GetRepo(ctx context.Context, name string, team *port.Team) (port.Repo, error) {
	resp, err := c.httpClient.Request(ctx, http.MethodGet, c.apiRoot+"/repos/"+c.org+"/"+name, nil, nil)
	if err != nil {
		return port.Repo{}, mapHTTPError(err)
	}
	var gr giteaRepo
	if err := json.Unmarshal(resp.Body, &gr); err != nil {
		return port.Repo{}, fmt.Errorf("decode gitea repo: %w", err)
	}
	return gr.toRepo(), nil
}

func (c *GiteaClient) GetTeamRepos(ctx context.Context, team port.Team) ([]port.Repo, error) {
	raw, err := c.getPaged(ctx, "/teams/"+team.Slug+"/repos")
	if err != nil {
		return nil, err
	}
	var out []port.Repo
	for _, r := range raw {
		var gr giteaRepo
		if err := json.Unmarshal(r, &gr); err != nil {
			return nil, fmt.Errorf("decode gitea repo: %w", err)
		}
		out = append(out, gr.toRepo())
	}
	return out, nil
}

func (c *GiteaClient) GetRepoURLs(ctx context.Context, assignmentNames []string, org string, teamNames []string, insertAuth bool) ([]string, error) {
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

func (c *GiteaClient) CreateIssue(ctx context.Context, repo port.Repo, title, body string) (port.Issue, error) {
	reqBody := fmt.Sprintf(`{"title":%q,"body":%q}`, title, body)
	resp, err := c.httpClient.Request(ctx, http.MethodPost, c.apiRoot+"/repos/"+c.org+"/"+repo.Name+"/issues",
		strings.NewReader(reqBody), map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return port.Issue{}, mapHTTPError(err)
	}
	var gi giteaIssue
	if err := json.Unmarshal(resp.Body, &gi); err != nil {
		return port.Issue{}, fmt.Errorf("decode gitea issue: %w", err)
	}
	return port.Issue{Number: gi.Number, Title: gi.Title, Body: gi.Body, State: model.IssueState(gi.State)}, nil
}

func (c *GiteaClient) CloseIssue(ctx context.Context, repo port.Repo, number int) error {
	body := `{"state":"closed"}`
	_, err := c.httpClient.Request(ctx, http.MethodPatch,
		c.apiRoot+"/repos/"+c.org+"/"+repo.Name+"/issues/"+strconv.Itoa(number),
		strings.NewReader(body), map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return mapHTTPError(err)
	}
	return nil
}

func (c *GiteaClient) GetRepoIssues(ctx context.Context, repo port.Repo, state model.IssueState) ([]port.Issue, error) {
	raw, err := c.getPaged(ctx, fmt.Sprintf("/repos/%s/%s/issues?state=%s", c.org, repo.Name, state))
	if err != nil {
		return nil, err
	}
	var out []port.Issue
	for _, r := range raw {
		var gi giteaIssue
		if err := json.Unmarshal(r, &gi); err != nil {
			return nil, fmt.Errorf("decode gitea issue: %w", err)
		}
		out = append(out, port.Issue{Number: gi.Number, Title: gi.Title, Body: gi.Body, State: model.IssueState(gi.State)})
	}
	return out, nil
}

// InsertAuth injects user:token basic-auth userinfo, Gitea's clone-URL
// authentication convention.
func (c *GiteaClient) InsertAuth(rawURL string) string {
	return insertBasicAuth(rawURL, c.user, c.token)
}

func (c *GiteaClient) ExtractRepoName(rawURL string) string {
	return extractRepoName(rawURL)
}

func (c *GiteaClient) ForOrganization(org string) port.Platform {
	clone := *c
	clone.org = org
	return &clone
}

func (c *GiteaClient) VerifySettings(ctx context.Context) error {
	_, err := c.httpClient.Request(ctx, http.MethodGet, c.apiRoot+"/orgs/"+c.org, nil, nil)
	if err != nil {
		return mapHTTPError(err)
	}
	return nil
}

func (c *GiteaClient) OrgName() string { return c.org }
func (c *GiteaClient) User() string    { return c.user }
func (c *GiteaClient) BaseURL() string { return c.apiRoot }

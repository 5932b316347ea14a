package platform

import (
	"context"
	"testing"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
	"github.com/edu-tools/classroom-repos/internal/domain/port"
)

func newTestLocalClient(t *testing.T) *LocalClient {
	t.Helper()
	return NewLocalClient(LocalConfig{Root: t.TempDir(), Organization: "myorg", User: "alice"})
}

func TestLocalClientCreateAndGetTeam(t *testing.T) {
	c := newTestLocalClient(t)
	ctx := context.Background()

	team, err := c.CreateTeam(ctx, "section-a", []string{"alice", "bob"}, model.PermissionWrite)
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	if team.Name != "section-a" || len(team.Members) != 2 {
		t.Errorf("unexpected team: %+v", team)
	}

	teams, err := c.GetTeams(ctx, nil)
	if err != nil {
		t.Fatalf("GetTeams: %v", err)
	}
	if len(teams) != 1 || teams[0].Name != "section-a" {
		t.Errorf("GetTeams() = %+v", teams)
	}
}

func TestLocalClientDeleteTeamNotFound(t *testing.T) {
	c := newTestLocalClient(t)
	err := c.DeleteTeam(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected not-found error")
	}
}

func TestLocalClientCreateRepoIdempotent(t *testing.T) {
	c := newTestLocalClient(t)
	ctx := context.Background()

	result, err := c.CreateRepo(ctx, "assignment-1", "first assignment", true, nil)
	if err != nil {
		t.Fatalf("CreateRepo: %v", err)
	}
	if !result.Created {
		t.Error("expected Created=true on first call")
	}

	again, err := c.CreateRepo(ctx, "assignment-1", "first assignment", true, nil)
	if err != nil {
		t.Fatalf("CreateRepo (second): %v", err)
	}
	if again.Created {
		t.Error("expected Created=false on second call")
	}
	if again.Repo.Name != result.Repo.Name {
		t.Errorf("expected same repo returned, got %+v", again.Repo)
	}
}

func TestLocalClientAssignRepoTagsDescription(t *testing.T) {
	c := newTestLocalClient(t)
	ctx := context.Background()

	team, err := c.CreateTeam(ctx, "section-a", nil, model.PermissionWrite)
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	result, err := c.CreateRepo(ctx, "assignment-1", "assignment one", false, &team)
	if err != nil {
		t.Fatalf("CreateRepo: %v", err)
	}

	repos, err := c.GetTeamRepos(ctx, team)
	if err != nil {
		t.Fatalf("GetTeamRepos: %v", err)
	}
	if len(repos) != 1 || repos[0].Name != result.Repo.Name {
		t.Errorf("GetTeamRepos() = %+v", repos)
	}
}

func TestLocalClientIssueLifecycle(t *testing.T) {
	c := newTestLocalClient(t)
	ctx := context.Background()

	result, err := c.CreateRepo(ctx, "assignment-1", "", false, nil)
	if err != nil {
		t.Fatalf("CreateRepo: %v", err)
	}

	first, err := c.CreateIssue(ctx, result.Repo, "first", "body")
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}
	second, err := c.CreateIssue(ctx, result.Repo, "second", "body")
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}
	if second.Number != first.Number+1 {
		t.Errorf("expected sequential issue numbers, got %d then %d", first.Number, second.Number)
	}

	if err := c.CloseIssue(ctx, result.Repo, first.Number); err != nil {
		t.Fatalf("CloseIssue: %v", err)
	}

	open, err := c.GetRepoIssues(ctx, result.Repo, model.IssueOpen)
	if err != nil {
		t.Fatalf("GetRepoIssues: %v", err)
	}
	if len(open) != 1 || open[0].Number != second.Number {
		t.Errorf("GetRepoIssues(Open) = %+v", open)
	}

	all, err := c.GetRepoIssues(ctx, result.Repo, model.IssueAll)
	if err != nil {
		t.Fatalf("GetRepoIssues: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("GetRepoIssues(All) len = %d, want 2", len(all))
	}
}

func TestLocalClientInsertAuthIsIdentity(t *testing.T) {
	c := newTestLocalClient(t)
	if got := c.InsertAuth("file:///tmp/repo"); got != "file:///tmp/repo" {
		t.Errorf("InsertAuth() = %q, want unchanged", got)
	}
}

func TestLocalClientForOrganization(t *testing.T) {
	c := newTestLocalClient(t)
	var p port.Platform = c
	other := p.ForOrganization("other-org")
	if other.OrgName() != "other-org" {
		t.Errorf("OrgName() = %q, want other-org", other.OrgName())
	}
	if c.OrgName() != "myorg" {
		t.Errorf("original client mutated, OrgName() = %q", c.OrgName())
	}
}

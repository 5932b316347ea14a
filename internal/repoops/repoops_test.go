package repoops

import (
	"context"
	"os/exec"
	"testing"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
	"github.com/edu-tools/classroom-repos/internal/platform"
)

func hasGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available on PATH")
	}
}

func testRoster() model.Roster {
	alice := model.Member{ID: "m1", Name: "Alice", Status: model.StatusActive, EnrollmentType: model.EnrollmentStudent}
	bob := model.Member{ID: "m2", Name: "Bob", Status: model.StatusActive, EnrollmentType: model.EnrollmentStudent}
	groupA := model.Group{ID: "g1", Name: "group-a", MemberIDs: []model.MemberID{"m1"}, Origin: model.OriginLocal}
	groupB := model.Group{ID: "g2", Name: "group-b", MemberIDs: []model.MemberID{"m2"}, Origin: model.OriginLocal}
	groupEmpty := model.Group{ID: "g3", Name: "group-empty", Origin: model.OriginLocal}
	gs := model.GroupSet{ID: "gs1", Name: "sections", GroupIDs: []model.GroupID{"g1", "g2", "g3"}}
	assignment := model.Assignment{
		ID:             "a1",
		Name:           "Lab 1",
		AssignmentType: model.AssignmentClassWide,
		GroupSetID:     "gs1",
		GroupSelection: model.GroupSelectionMode{Kind: model.SelectionAll},
	}
	return model.Roster{
		Students:    []model.Member{alice, bob},
		Groups:      []model.Group{groupA, groupB, groupEmpty},
		GroupSets:   []model.GroupSet{gs},
		Assignments: []model.Assignment{assignment},
	}
}

func testOperationContext(t *testing.T) (OperationContext, *platform.LocalClient) {
	t.Helper()
	client := platform.NewLocalClient(platform.LocalConfig{Root: t.TempDir(), Organization: "myorg"})
	return OperationContext{
		Platform:         client,
		RepoNameTemplate: "{assignment}-{group}",
		TargetDir:        t.TempDir(),
		DirectoryLayout:  model.LayoutFlat,
	}, client
}

func TestCreateSucceedsAndSkipsEmptyGroup(t *testing.T) {
	octx, _ := testOperationContext(t)
	r := testRoster()

	var events []Event
	result, err := Create(context.Background(), octx, r, "a1", func(e Event) { events = append(events, e) })
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if result.Succeeded != 2 {
		t.Errorf("Succeeded = %d, want 2", result.Succeeded)
	}
	if len(result.SkippedGroups) != 1 || result.SkippedGroups[0].Reason != SkipEmptyGroup {
		t.Errorf("SkippedGroups = %+v, want one EmptyGroup skip", result.SkippedGroups)
	}
	if events[0].Kind != EventStarted || events[len(events)-1].Kind != EventCompleted {
		t.Errorf("expected Started...Completed event bracket, got %+v", events)
	}
}

func TestCreateSkipsExistingRepo(t *testing.T) {
	octx, client := testOperationContext(t)
	r := testRoster()

	if _, err := client.CreateRepo(context.Background(), "lab-1-group-a", "", true, nil); err != nil {
		t.Fatalf("pre-seed CreateRepo: %v", err)
	}

	result, err := Create(context.Background(), octx, r, "a1", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if result.Succeeded != 1 {
		t.Errorf("Succeeded = %d, want 1", result.Succeeded)
	}
	found := false
	for _, s := range result.SkippedGroups {
		if s.Reason == SkipRepoExists {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a RepoExists skip, got %+v", result.SkippedGroups)
	}
}

func TestPreflightCreateFlagsExisting(t *testing.T) {
	octx, client := testOperationContext(t)
	r := testRoster()

	if _, err := client.CreateRepo(context.Background(), "lab-1-group-a", "", true, nil); err != nil {
		t.Fatalf("pre-seed CreateRepo: %v", err)
	}

	result, err := PreflightCreate(context.Background(), octx, r, "a1")
	if err != nil {
		t.Fatalf("PreflightCreate: %v", err)
	}
	if len(result.Collisions) != 1 || result.Collisions[0].Kind != CollisionAlreadyExists {
		t.Errorf("Collisions = %+v, want one AlreadyExists", result.Collisions)
	}
	if result.ReadyCount != 1 {
		t.Errorf("ReadyCount = %d, want 1", result.ReadyCount)
	}
}

func TestPreflightDeleteFlagsMissing(t *testing.T) {
	octx, _ := testOperationContext(t)
	r := testRoster()

	result, err := PreflightDelete(context.Background(), octx, r, "a1")
	if err != nil {
		t.Fatalf("PreflightDelete: %v", err)
	}
	if len(result.Collisions) != 2 {
		t.Errorf("Collisions = %+v, want 2 NotFound", result.Collisions)
	}
	if result.ReadyCount != 0 {
		t.Errorf("ReadyCount = %d, want 0", result.ReadyCount)
	}
}

func TestDeleteSkipsMissingRepo(t *testing.T) {
	octx, _ := testOperationContext(t)
	r := testRoster()

	result, err := Delete(context.Background(), octx, r, "a1", nil)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if result.Succeeded != 0 {
		t.Errorf("Succeeded = %d, want 0", result.Succeeded)
	}
	notFoundCount := 0
	for _, s := range result.SkippedGroups {
		if s.Reason == SkipRepoNotFound {
			notFoundCount++
		}
	}
	if notFoundCount != 2 {
		t.Errorf("expected 2 RepoNotFound skips, got %+v", result.SkippedGroups)
	}
}

func TestDeleteRemovesExistingRepo(t *testing.T) {
	octx, client := testOperationContext(t)
	r := testRoster()

	if _, err := client.CreateRepo(context.Background(), "lab-1-group-a", "", true, nil); err != nil {
		t.Fatalf("pre-seed CreateRepo: %v", err)
	}

	result, err := Delete(context.Background(), octx, r, "a1", nil)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if result.Succeeded != 1 {
		t.Errorf("Succeeded = %d, want 1", result.Succeeded)
	}
}

func TestCloneSkipsMissingRepo(t *testing.T) {
	hasGit(t)
	octx, _ := testOperationContext(t)
	r := testRoster()

	result, err := Clone(context.Background(), octx, r, "a1", nil)
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	notFoundCount := 0
	for _, s := range result.SkippedGroups {
		if s.Reason == SkipRepoNotFound {
			notFoundCount++
		}
	}
	if notFoundCount != 2 {
		t.Errorf("expected 2 RepoNotFound skips, got %+v", result.SkippedGroups)
	}
}

func TestCloneClonesExistingRepo(t *testing.T) {
	hasGit(t)
	octx, client := testOperationContext(t)
	r := testRoster()

	if _, err := client.CreateRepo(context.Background(), "lab-1-group-a", "", true, nil); err != nil {
		t.Fatalf("pre-seed CreateRepo: %v", err)
	}

	result, err := Clone(context.Background(), octx, r, "a1", nil)
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if result.Succeeded != 1 {
		t.Errorf("Succeeded = %d, want 1, errors=%+v", result.Succeeded, result.Errors)
	}
}

func TestDestinationPathByLayout(t *testing.T) {
	assignment := model.Assignment{Name: "Lab 1"}
	group := model.Group{Name: "Group A"}

	flat := OperationContext{TargetDir: "/tmp/out", DirectoryLayout: model.LayoutFlat}
	if got := destinationPath(flat, assignment, group, "repo"); got != "/tmp/out/repo" {
		t.Errorf("Flat layout = %q", got)
	}

	byTeam := OperationContext{TargetDir: "/tmp/out", DirectoryLayout: model.LayoutByTeam}
	if got := destinationPath(byTeam, assignment, group, "repo"); got != "/tmp/out/group-a/repo" {
		t.Errorf("ByTeam layout = %q", got)
	}

	byTask := OperationContext{TargetDir: "/tmp/out", DirectoryLayout: model.LayoutByTask}
	if got := destinationPath(byTask, assignment, group, "repo"); got != "/tmp/out/lab-1/repo" {
		t.Errorf("ByTask layout = %q", got)
	}
}

package roster

import (
	"testing"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
)

func hasIssue(issues []Issue, kind IssueKind) bool {
	for _, i := range issues {
		if i.Kind == kind {
			return true
		}
	}
	return false
}

func TestValidateRosterDuplicateMemberID(t *testing.T) {
	r := model.Roster{Students: []model.Member{
		{ID: "s1", Email: "a@example.com"},
		{ID: "s1", Email: "b@example.com"},
	}}
	issues := ValidateRoster(r)
	if !hasIssue(issues, IssueDuplicateMemberID) {
		t.Error("expected duplicate member id issue")
	}
}

func TestValidateRosterMissingEmailIsWarning(t *testing.T) {
	r := model.Roster{Students: []model.Member{{ID: "s1", Email: ""}}}
	issues := ValidateRoster(r)
	for _, i := range issues {
		if i.Kind == IssueMissingEmail && i.Blocking {
			t.Error("expected missing email to be a warning, not blocking")
		}
	}
}

func TestValidateRosterInvalidEmail(t *testing.T) {
	cases := []string{"noatsign", "a@b", "@nodomain.com", "trailing@dot.", "has space@domain.com"}
	for _, email := range cases {
		r := model.Roster{Students: []model.Member{{ID: "s1", Email: email}}}
		issues := ValidateRoster(r)
		if !hasIssue(issues, IssueInvalidEmail) {
			t.Errorf("expected invalid email issue for %q", email)
		}
	}
}

func TestValidateRosterValidEmail(t *testing.T) {
	r := model.Roster{Students: []model.Member{{ID: "s1", Email: "alice@example.com"}}}
	issues := ValidateRoster(r)
	if hasIssue(issues, IssueInvalidEmail) {
		t.Error("did not expect invalid email issue")
	}
}

func TestValidateRosterDuplicateEmailCaseInsensitive(t *testing.T) {
	r := model.Roster{Students: []model.Member{
		{ID: "s1", Email: "Alice@Example.com"},
		{ID: "s2", Email: "alice@example.com"},
	}}
	issues := ValidateRoster(r)
	if !hasIssue(issues, IssueDuplicateEmail) {
		t.Error("expected duplicate email issue")
	}
}

func TestValidateRosterDuplicateAssignmentName(t *testing.T) {
	r := model.Roster{Assignments: []model.Assignment{
		{ID: "a1", Name: "Homework  1"},
		{ID: "a2", Name: "homework 1"},
	}}
	issues := ValidateRoster(r)
	if !hasIssue(issues, IssueDuplicateAssignmentName) {
		t.Error("expected duplicate assignment name issue")
	}
}

func TestValidateAssignmentEmptyGroup(t *testing.T) {
	r := model.Roster{
		Students: []model.Member{{ID: "s1", Status: model.StatusDropped}},
		Groups:   []model.Group{{ID: "g1", Name: "g1", MemberIDs: []model.MemberID{"s1"}}},
		GroupSets: []model.GroupSet{{ID: "gs1", GroupIDs: []model.GroupID{"g1"}}},
	}
	assignment := model.Assignment{GroupSetID: "gs1", GroupSelection: model.NewAllSelection(nil)}
	issues, err := ValidateAssignment(r, assignment, AssignmentValidationConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasIssue(issues, IssueEmptyGroup) {
		t.Error("expected empty group issue")
	}
}

func TestValidateAssignmentUnassignedStudentClassWide(t *testing.T) {
	r := model.Roster{
		Students: []model.Member{
			{ID: "s1", Status: model.StatusActive},
			{ID: "s2", Status: model.StatusActive},
		},
		Groups:    []model.Group{{ID: "g1", Name: "g1", MemberIDs: []model.MemberID{"s1"}}},
		GroupSets: []model.GroupSet{{ID: "gs1", GroupIDs: []model.GroupID{"g1"}}},
	}
	assignment := model.Assignment{
		GroupSetID:     "gs1",
		AssignmentType: model.AssignmentClassWide,
		GroupSelection: model.NewAllSelection(nil),
	}
	issues, err := ValidateAssignment(r, assignment, AssignmentValidationConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasIssue(issues, IssueUnassignedStudent) {
		t.Error("expected unassigned student issue for s2")
	}
}

func TestValidateAssignmentMissingGitUsername(t *testing.T) {
	r := model.Roster{
		Students: []model.Member{{ID: "s1", Status: model.StatusActive}},
		Groups:   []model.Group{{ID: "g1", Name: "g1", MemberIDs: []model.MemberID{"s1"}}},
		GroupSets: []model.GroupSet{{ID: "gs1", GroupIDs: []model.GroupID{"g1"}}},
	}
	assignment := model.Assignment{GroupSetID: "gs1", GroupSelection: model.NewAllSelection(nil)}
	cfg := AssignmentValidationConfig{GitIdentityMode: model.IdentityUsername}
	issues, err := ValidateAssignment(r, assignment, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, i := range issues {
		if i.Kind == IssueMissingGitUsername {
			found = true
			if i.Blocking {
				t.Error("expected missing git username to be a warning")
			}
		}
	}
	if !found {
		t.Error("expected missing git username issue")
	}
}

func TestValidateAssignmentDuplicateRepoName(t *testing.T) {
	r := model.Roster{
		Students: []model.Member{
			{ID: "s1", Status: model.StatusActive},
			{ID: "s2", Status: model.StatusActive},
		},
		Groups: []model.Group{
			{ID: "g1", Name: "Team", MemberIDs: []model.MemberID{"s1"}},
			{ID: "g2", Name: "TEAM", MemberIDs: []model.MemberID{"s2"}},
		},
		GroupSets: []model.GroupSet{{ID: "gs1", GroupIDs: []model.GroupID{"g1", "g2"}}},
	}
	assignment := model.Assignment{Name: "hw1", GroupSetID: "gs1", GroupSelection: model.NewAllSelection(nil)}
	issues, err := ValidateAssignment(r, assignment, AssignmentValidationConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasIssue(issues, IssueDuplicateRepoName) {
		t.Error("expected duplicate repo name issue for normalized-equal group names")
	}
}

package lms

import (
	"context"
	"testing"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
	"github.com/edu-tools/classroom-repos/internal/domain/port"
)

type fakeLmsClient struct {
	courses    []port.LmsCourse
	users      []port.LmsUser
	categories []port.LmsGroupCategory
	groups     map[string][]port.LmsGroup // categoryID -> groups
	members    map[string][]string        // groupID -> member lms ids
	coursesErr error
}

func (f *fakeLmsClient) GetCourses(ctx context.Context) ([]port.LmsCourse, error) {
	return f.courses, f.coursesErr
}
func (f *fakeLmsClient) GetCourse(ctx context.Context, courseID string) (port.LmsCourse, error) {
	return port.LmsCourse{}, nil
}
func (f *fakeLmsClient) GetUsers(ctx context.Context, courseID string, progress port.ProgressFunc) ([]port.LmsUser, error) {
	return f.users, nil
}
func (f *fakeLmsClient) GetGroups(ctx context.Context, courseID string, progress port.ProgressFunc) ([]port.LmsGroup, error) {
	return nil, nil
}
func (f *fakeLmsClient) GetGroupCategories(ctx context.Context, courseID string) ([]port.LmsGroupCategory, error) {
	return f.categories, nil
}
func (f *fakeLmsClient) GetGroupsForCategory(ctx context.Context, courseID string, categoryID string) ([]port.LmsGroup, error) {
	return f.groups[categoryID], nil
}
func (f *fakeLmsClient) GetGroupMembers(ctx context.Context, group port.LmsGroup, progress port.ProgressFunc) ([]string, error) {
	return f.members[group.ID], nil
}
func (f *fakeLmsClient) GetAssignments(ctx context.Context, courseID string) ([]port.LmsAssignment, error) {
	return nil, nil
}
func (f *fakeLmsClient) ValidateToken(ctx context.Context) error { return nil }

var _ port.LmsClient = (*fakeLmsClient)(nil)

func TestVerifyConnectionSuccess(t *testing.T) {
	client := &fakeLmsClient{courses: []port.LmsCourse{{ID: "1", Name: "Intro"}}}
	result := VerifyConnection(context.Background(), client, port.LmsCanvas)
	if !result.Success {
		t.Errorf("expected success, got %+v", result)
	}
}

func TestVerifyConnectionFailure(t *testing.T) {
	client := &fakeLmsClient{coursesErr: fakeErr("token expired")}
	result := VerifyConnection(context.Background(), client, port.LmsCanvas)
	if result.Success {
		t.Error("expected failure")
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

func TestImportStudentsAddsNewStudent(t *testing.T) {
	client := &fakeLmsClient{users: []port.LmsUser{
		{ID: "101", Name: "Alice", Email: "alice@example.com"},
	}}
	result, err := ImportStudents(context.Background(), client, "course-1", model.Roster{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Summary.Added != 1 || len(result.Roster.Students) != 1 {
		t.Fatalf("unexpected summary: %+v", result.Summary)
	}
}

func TestImportStudentsMatchesByLmsID(t *testing.T) {
	lmsID := "101"
	existing := model.Roster{Students: []model.Member{
		{ID: "m1", Name: "Alice", Email: "alice@example.com", LmsUserID: &lmsID, Status: model.StatusActive, EnrollmentType: model.EnrollmentStudent},
	}}
	client := &fakeLmsClient{users: []port.LmsUser{
		{ID: "101", Name: "Alice Smith", Email: "alice@example.com"},
	}}
	result, err := ImportStudents(context.Background(), client, "course-1", existing, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Summary.Updated != 1 {
		t.Errorf("expected 1 updated, got %+v", result.Summary)
	}
	if result.Roster.Students[0].Name != "Alice Smith" {
		t.Errorf("expected name updated, got %q", result.Roster.Students[0].Name)
	}
}

func TestImportStudentsConflictFailsClosed(t *testing.T) {
	lmsID := "999"
	existing := model.Roster{Students: []model.Member{
		{ID: "m1", Name: "Alice", Email: "alice@example.com", LmsUserID: &lmsID, Status: model.StatusActive, EnrollmentType: model.EnrollmentStudent},
	}}
	client := &fakeLmsClient{users: []port.LmsUser{
		{ID: "101", Name: "Alice", Email: "alice@example.com"},
	}}
	_, err := ImportStudents(context.Background(), client, "course-1", existing, nil)
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if len(existing.Students) != 1 || existing.Students[0].LmsUserID == nil || *existing.Students[0].LmsUserID != "999" {
		t.Error("original roster must be untouched on conflict")
	}
}

func TestImportStudentsCountsMissingEmail(t *testing.T) {
	client := &fakeLmsClient{users: []port.LmsUser{
		{ID: "101", Name: "Alice", Email: ""},
	}}
	result, err := ImportStudents(context.Background(), client, "course-1", model.Roster{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Summary.MissingEmail != 1 {
		t.Errorf("expected 1 missing email, got %+v", result.Summary)
	}
}

func studentWithLmsID(id, lmsID string) model.Member {
	l := lmsID
	return model.Member{ID: model.MemberID(id), LmsUserID: &l, Status: model.StatusActive, EnrollmentType: model.EnrollmentStudent}
}

func TestImportGroupsResolvesMembers(t *testing.T) {
	roster := model.Roster{Students: []model.Member{
		studentWithLmsID("m1", "u1"),
		studentWithLmsID("m2", "u2"),
	}}
	client := &fakeLmsClient{
		categories: []port.LmsGroupCategory{{ID: "cat-1", Name: "Project Groups"}},
		groups: map[string][]port.LmsGroup{
			"cat-1": {{ID: "g1", Name: "Team A"}},
		},
		members: map[string][]string{"g1": {"u1", "u2"}},
	}
	assignment := model.Assignment{ID: "a1", Name: "Project", GroupSetID: "gs1"}
	result, err := ImportGroups(context.Background(), client, "course-1", roster, assignment, GroupImportConfig{
		CategoryID: "cat-1",
		Filter:     GroupImportFilter{Kind: "all"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Summary.GroupsImported != 1 || result.Summary.MembersResolved != 2 {
		t.Fatalf("unexpected summary: %+v", result.Summary)
	}
	if result.GroupSet.Connection == nil || result.GroupSet.Connection.Kind() != model.ConnectionKindLms {
		t.Error("expected lms connection on group set")
	}
}

func TestImportGroupsUnresolvedMemberFails(t *testing.T) {
	roster := model.Roster{Students: []model.Member{studentWithLmsID("m1", "u1")}}
	client := &fakeLmsClient{
		categories: []port.LmsGroupCategory{{ID: "cat-1"}},
		groups: map[string][]port.LmsGroup{
			"cat-1": {{ID: "g1", Name: "Team A"}},
		},
		members: map[string][]string{"g1": {"u1", "u-unknown"}},
	}
	assignment := model.Assignment{ID: "a1", GroupSetID: "gs1"}
	_, err := ImportGroups(context.Background(), client, "course-1", roster, assignment, GroupImportConfig{
		CategoryID: "cat-1",
		Filter:     GroupImportFilter{Kind: "all"},
	})
	if err == nil {
		t.Fatal("expected unresolved member error")
	}
}

func TestImportGroupsDuplicateNamesFail(t *testing.T) {
	roster := model.Roster{}
	client := &fakeLmsClient{
		categories: []port.LmsGroupCategory{{ID: "cat-1"}},
		groups: map[string][]port.LmsGroup{
			"cat-1": {{ID: "g1", Name: "Team A"}, {ID: "g2", Name: "team a"}},
		},
		members: map[string][]string{},
	}
	assignment := model.Assignment{ID: "a1", GroupSetID: "gs1"}
	_, err := ImportGroups(context.Background(), client, "course-1", roster, assignment, GroupImportConfig{
		CategoryID: "cat-1",
		Filter:     GroupImportFilter{Kind: "all"},
	})
	if err == nil {
		t.Fatal("expected duplicate group name error")
	}
}

func TestImportGroupsPatternFilter(t *testing.T) {
	roster := model.Roster{}
	client := &fakeLmsClient{
		categories: []port.LmsGroupCategory{{ID: "cat-1"}},
		groups: map[string][]port.LmsGroup{
			"cat-1": {{ID: "g1", Name: "Team A"}, {ID: "g2", Name: "Staff B"}},
		},
		members: map[string][]string{},
	}
	assignment := model.Assignment{ID: "a1", GroupSetID: "gs1"}
	result, err := ImportGroups(context.Background(), client, "course-1", roster, assignment, GroupImportConfig{
		CategoryID: "cat-1",
		Filter:     GroupImportFilter{Kind: "pattern", Pattern: "Team*"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Groups) != 1 || result.Groups[0].Name != "Team A" {
		t.Fatalf("unexpected groups: %+v", result.Groups)
	}
}

func TestImportGroupsUnknownFilterKind(t *testing.T) {
	roster := model.Roster{}
	client := &fakeLmsClient{
		categories: []port.LmsGroupCategory{{ID: "cat-1"}},
		groups:     map[string][]port.LmsGroup{"cat-1": {{ID: "g1", Name: "Team A"}}},
		members:    map[string][]string{},
	}
	assignment := model.Assignment{ID: "a1", GroupSetID: "gs1"}
	_, err := ImportGroups(context.Background(), client, "course-1", roster, assignment, GroupImportConfig{
		CategoryID: "cat-1",
		Filter:     GroupImportFilter{Kind: "bogus"},
	})
	if err == nil {
		t.Fatal("expected error for unknown filter kind")
	}
}

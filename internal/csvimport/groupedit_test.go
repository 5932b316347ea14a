package csvimport

import (
	"strings"
	"testing"
)

type fakeResolver struct {
	byID    map[string]GroupEditResolution
	byEmail map[string]GroupEditResolution
	ambiguous map[string]bool
}

func (f *fakeResolver) ResolveByID(id string) (GroupEditResolution, bool) {
	r, ok := f.byID[id]
	return r, ok
}

func (f *fakeResolver) ResolveByEmail(email string) (GroupEditResolution, bool, bool) {
	if f.ambiguous[normalizeEmail(email)] {
		return GroupEditResolution{}, true, false
	}
	r, ok := f.byEmail[normalizeEmail(email)]
	return r, false, ok
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		byID: map[string]GroupEditResolution{
			"s1": {ID: "s1", Email: "alice@example.com"},
			"s2": {ID: "s2", Email: "bob@example.com"},
		},
		byEmail: map[string]GroupEditResolution{
			"alice@example.com": {ID: "s1", Email: "alice@example.com"},
			"bob@example.com":   {ID: "s2", Email: "bob@example.com"},
		},
		ambiguous: map[string]bool{},
	}
}

func TestParseGroupEditCSVFirstTimeByEmail(t *testing.T) {
	csv := "group_name,student_email\nTeam A,alice@example.com\nTeam A,bob@example.com\n"
	result, err := ParseGroupEditCSV(strings.NewReader(csv), newFakeResolver())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Mode != ModeFirstTime {
		t.Errorf("expected FirstTime mode, got %v", result.Mode)
	}
	if len(result.Groups) != 1 || len(result.Groups[0].StudentIDs) != 2 {
		t.Fatalf("unexpected groups: %+v", result.Groups)
	}
}

func TestParseGroupEditCSVRoundTripByID(t *testing.T) {
	csv := "group_id,group_name,student_id\ng1,Team A,s1\ng1,Team A,s2\n"
	result, err := ParseGroupEditCSV(strings.NewReader(csv), newFakeResolver())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Mode != ModeRoundTrip {
		t.Errorf("expected RoundTrip mode, got %v", result.Mode)
	}
	if len(result.Groups) != 1 || result.Groups[0].GroupID != "g1" {
		t.Fatalf("unexpected groups: %+v", result.Groups)
	}
}

func TestParseGroupEditCSVStudentInTwoGroups(t *testing.T) {
	csv := "group_name,student_email\nTeam A,alice@example.com\nTeam B,alice@example.com\n"
	_, err := ParseGroupEditCSV(strings.NewReader(csv), newFakeResolver())
	if err == nil {
		t.Fatal("expected error for student appearing in two groups")
	}
}

func TestParseGroupEditCSVAmbiguousEmail(t *testing.T) {
	resolver := newFakeResolver()
	resolver.ambiguous["dup@example.com"] = true
	csv := "group_name,student_email\nTeam A,dup@example.com\n"
	_, err := ParseGroupEditCSV(strings.NewReader(csv), resolver)
	if err == nil {
		t.Fatal("expected error for ambiguous email")
	}
}

func TestParseGroupEditCSVConflictingGroupNamesFirstTime(t *testing.T) {
	csv := "group_name,student_email\nTeam A,alice@example.com\nteam a,bob@example.com\n"
	_, err := ParseGroupEditCSV(strings.NewReader(csv), newFakeResolver())
	if err == nil {
		t.Fatal("expected error for normalized-duplicate group names in FirstTime mode")
	}
}

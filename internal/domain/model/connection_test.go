package model

import (
	"encoding/json"
	"testing"
)

func TestGroupSetConnectionRoundTrip(t *testing.T) {
	cases := []*GroupSetConnection{
		NewSystemConnection(SystemTypeIndividualStudents),
		NewSystemConnection(SystemTypeStaff),
		NewImportConnection("roster.csv", "/tmp/roster.csv", "2026-01-01T00:00:00Z"),
		NewLmsConnection("course-1", "cat-1"),
	}

	for _, c := range cases {
		data, err := json.Marshal(c)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var got GroupSetConnection
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Kind() != c.Kind() {
			t.Errorf("kind mismatch: got %v want %v", got.Kind(), c.Kind())
		}
	}
}

func TestGroupSetConnectionIsSystem(t *testing.T) {
	c := NewSystemConnection(SystemTypeStaff)
	if !c.IsSystem(SystemTypeStaff) {
		t.Error("expected IsSystem(staff) to be true")
	}
	if c.IsSystem(SystemTypeIndividualStudents) {
		t.Error("expected IsSystem(individual_students) to be false")
	}
	imp := NewImportConnection("a.csv", "/a.csv", "")
	if imp.IsSystem(SystemTypeStaff) {
		t.Error("import connection should never report IsSystem")
	}
}

func TestGroupSetConnectionNilIsAbsent(t *testing.T) {
	gs := GroupSet{Connection: nil}
	data, err := json.Marshal(gs)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["connection"]; ok {
		t.Error("nil connection should be omitted from the wire form")
	}
}

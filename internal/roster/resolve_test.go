package roster

import (
	"testing"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
)

func rosterWithGroupSet() (model.Roster, model.GroupSetID) {
	groups := []model.Group{
		{ID: "g1d1", Name: "1D1", Origin: model.OriginLocal},
		{ID: "g1d2", Name: "1D2", Origin: model.OriginLocal},
		{ID: "g2d1", Name: "2D1", Origin: model.OriginLocal},
		{ID: "g2d2", Name: "2D2", Origin: model.OriginLocal},
	}
	gs := model.GroupSet{
		ID:       "gs1",
		Name:     "Set",
		GroupIDs: []model.GroupID{"g1d1", "g1d2", "g2d1", "g2d2"},
	}
	return model.Roster{Groups: groups, GroupSets: []model.GroupSet{gs}}, gs.ID
}

// TestPreviewGlobPatternResolution mirrors spec.md's end-to-end scenario 4.
func TestPreviewGlobPatternResolution(t *testing.T) {
	r, gsID := rosterWithGroupSet()
	selection := model.NewPatternSelection("1D*", nil)

	result, err := Preview(r, gsID, selection)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalGroups != 4 {
		t.Errorf("expected total_groups=4, got %d", result.TotalGroups)
	}
	if result.MatchedGroups != 2 {
		t.Errorf("expected matched_groups=2, got %d", result.MatchedGroups)
	}
	if len(result.GroupIDs) != 2 || result.GroupIDs[0] != "g1d1" || result.GroupIDs[1] != "g1d2" {
		t.Errorf("expected group_ids=[g1d1 g1d2], got %v", result.GroupIDs)
	}
}

func TestPreviewInvalidPatternReportsError(t *testing.T) {
	r, gsID := rosterWithGroupSet()
	selection := model.NewPatternSelection("[abc", nil)

	result, err := Preview(r, gsID, selection)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Valid {
		t.Error("expected invalid pattern to report Valid=false")
	}
	if result.Error == "" {
		t.Error("expected a compile error message")
	}
}

func TestResolveInvalidPatternMatchesEmpty(t *testing.T) {
	r, gsID := rosterWithGroupSet()
	assignment := model.Assignment{
		GroupSetID:     gsID,
		GroupSelection: model.NewPatternSelection("[abc", nil),
	}
	groups, err := Resolve(r, assignment)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("expected no matches for invalid pattern, got %v", groups)
	}
}

func TestResolveExcludesGroupIDs(t *testing.T) {
	r, gsID := rosterWithGroupSet()
	assignment := model.Assignment{
		GroupSetID:     gsID,
		GroupSelection: model.NewAllSelection([]model.GroupID{"g1d1"}),
	}
	groups, err := Resolve(r, assignment)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 3 {
		t.Errorf("expected 3 groups after exclusion, got %d", len(groups))
	}
	for _, g := range groups {
		if g.ID == "g1d1" {
			t.Error("expected excluded group to be absent")
		}
	}
}

func TestFilterByPattern(t *testing.T) {
	result := FilterByPattern("1D*", []string{"1D1", "1D2", "2D1", "2D2"})
	if !result.Valid {
		t.Fatal("expected valid pattern")
	}
	if len(result.MatchedIndexes) != 2 || result.MatchedIndexes[0] != 0 || result.MatchedIndexes[1] != 1 {
		t.Errorf("expected indexes [0 1], got %v", result.MatchedIndexes)
	}
}

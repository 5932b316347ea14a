package roster

import (
	"github.com/edu-tools/classroom-repos/internal/domain/model"
	"github.com/edu-tools/classroom-repos/internal/glob"
)

// Resolve looks up the assignment's group set, materializes its groups in
// set order, narrows by the assignment's selection (pattern match or all),
// and drops excluded group IDs. An invalid pattern matches nothing rather
// than erroring; use Preview to surface compile errors to a caller.
func Resolve(r model.Roster, assignment model.Assignment) ([]model.Group, error) {
	gs, ok := r.FindGroupSet(assignment.GroupSetID)
	if !ok {
		return nil, notFoundf("group set %s not found", assignment.GroupSetID)
	}
	return resolveSelection(r, gs, assignment.GroupSelection), nil
}

func resolveSelection(r model.Roster, gs model.GroupSet, selection model.GroupSelectionMode) []model.Group {
	excluded := make(map[model.GroupID]bool, len(selection.ExcludedGroupIDs))
	for _, id := range selection.ExcludedGroupIDs {
		excluded[id] = true
	}

	var pattern *glob.Glob
	if selection.Kind == model.SelectionPattern {
		pattern, _ = glob.Compile(selection.Pattern)
	}

	out := make([]model.Group, 0, len(gs.GroupIDs))
	for _, id := range gs.GroupIDs {
		if excluded[id] {
			continue
		}
		g, ok := r.FindGroup(id)
		if !ok {
			continue
		}
		if selection.Kind == model.SelectionPattern {
			if pattern == nil || !pattern.Match(g.Name) {
				continue
			}
		}
		out = append(out, g)
	}
	return out
}

// PreviewResult reports the outcome of narrowing a group set by a
// selection, including diagnostics for an invalid pattern.
type PreviewResult struct {
	Valid             bool
	Error             string
	GroupIDs          []model.GroupID
	EmptyGroupIDs     []model.GroupID
	GroupMemberCounts map[model.GroupID]int
	TotalGroups       int
	MatchedGroups     int
}

// Preview runs the same process as Resolve against an arbitrary group set
// and selection (not necessarily attached to any assignment yet), and
// reports the compile error of an invalid pattern instead of silently
// matching nothing.
func Preview(r model.Roster, groupSetID model.GroupSetID, selection model.GroupSelectionMode) (PreviewResult, error) {
	gs, ok := r.FindGroupSet(groupSetID)
	if !ok {
		return PreviewResult{}, notFoundf("group set %s not found", groupSetID)
	}

	result := PreviewResult{
		Valid:             true,
		GroupMemberCounts: make(map[model.GroupID]int),
		TotalGroups:       len(gs.GroupIDs),
	}

	if selection.Kind == model.SelectionPattern {
		if err := glob.Validate(selection.Pattern); err != nil {
			result.Valid = false
			result.Error = err.Error()
			return result, nil
		}
	}

	matched := resolveSelection(r, gs, selection)
	result.MatchedGroups = len(matched)
	for _, g := range matched {
		result.GroupIDs = append(result.GroupIDs, g.ID)
		active := r.ActiveMemberIDs(g)
		result.GroupMemberCounts[g.ID] = len(active)
		if len(active) == 0 {
			result.EmptyGroupIDs = append(result.EmptyGroupIDs, g.ID)
		}
	}

	return result, nil
}

// FilterByPattern reports which of names match pattern, for live UI
// filtering. An invalid pattern is reported via Valid=false rather than
// as an error return.
type FilterResult struct {
	Valid         bool
	Error         string
	MatchedIndexes []int
}

func FilterByPattern(pattern string, names []string) FilterResult {
	g, err := glob.Compile(pattern)
	if err != nil {
		return FilterResult{Valid: false, Error: err.Error()}
	}
	result := FilterResult{Valid: true}
	for i, n := range names {
		if g.Match(n) {
			result.MatchedIndexes = append(result.MatchedIndexes, i)
		}
	}
	return result
}

package repoops

import (
	"context"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
	"github.com/edu-tools/classroom-repos/internal/roster"
)

// Delete removes one repo per resolved, non-empty group of the
// assignment. A missing repo is skipped rather than treated as failure.
func Delete(ctx context.Context, octx OperationContext, r model.Roster, assignmentID model.AssignmentID, progress ProgressFunc) (OperationResult, error) {
	assignment, ok := r.FindAssignment(assignmentID)
	if !ok {
		return OperationResult{}, notFoundf("assignment %s not found", assignmentID)
	}
	groups, err := roster.Resolve(r, assignment)
	if err != nil {
		return OperationResult{}, err
	}
	valid, empty := splitByActive(r, groups)

	result := OperationResult{}
	for _, g := range empty {
		result.SkippedGroups = append(result.SkippedGroups, SkippedGroup{GroupID: g.ID, GroupName: g.Name, Reason: SkipEmptyGroup})
	}

	total := len(valid)
	if total == 0 {
		total = 1
	}
	emit(progress, Event{Kind: EventStarted, Total: total})

	for i, g := range valid {
		name := repoName(octx, assignment, g)
		emit(progress, Event{Kind: EventProgress, Current: i + 1, Total: total, Message: name})

		repo, err := octx.Platform.GetRepo(ctx, name, nil)
		if isNotFoundErr(err) {
			result.SkippedGroups = append(result.SkippedGroups, SkippedGroup{GroupID: g.ID, GroupName: g.Name, Reason: SkipRepoNotFound, Context: name})
			continue
		}
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, OperationError{RepoName: name, Message: err.Error()})
			continue
		}

		if err := octx.Platform.DeleteRepo(ctx, repo); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, OperationError{RepoName: name, Message: err.Error()})
			continue
		}
		result.Succeeded++
	}

	emit(progress, Event{Kind: EventCompleted, Total: total, Result: result})
	return result, nil
}

package repoops

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
	"github.com/edu-tools/classroom-repos/internal/naming"
	"github.com/edu-tools/classroom-repos/internal/roster"
	"github.com/edu-tools/classroom-repos/pkg/utils"
)

var cloneRetry = utils.NewRetryConfig(3, 500*time.Millisecond, 5*time.Second)

// destinationPath computes where a clone lands on disk under
// octx.TargetDir, per octx.DirectoryLayout.
func destinationPath(octx OperationContext, assignment model.Assignment, group model.Group, repo string) string {
	switch octx.DirectoryLayout {
	case model.LayoutByTeam:
		return filepath.Join(octx.TargetDir, naming.Slugify(group.Name), repo)
	case model.LayoutByTask:
		return filepath.Join(octx.TargetDir, naming.Slugify(assignment.Name), repo)
	default:
		return filepath.Join(octx.TargetDir, repo)
	}
}

// Clone clones one repo per resolved, non-empty group of the
// assignment to a layout-dependent destination path.
func Clone(ctx context.Context, octx OperationContext, r model.Roster, assignmentID model.AssignmentID, progress ProgressFunc) (OperationResult, error) {
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

		dest := destinationPath(octx, assignment, g, name)
		if _, err := os.Stat(dest); err == nil {
			result.SkippedGroups = append(result.SkippedGroups, SkippedGroup{GroupID: g.ID, GroupName: g.Name, Reason: SkipRepoExists, Context: dest})
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, OperationError{RepoName: name, Message: err.Error()})
			continue
		}

		cloneURL := repo.CloneURL
		if octx.InsertAuth {
			cloneURL = octx.Platform.InsertAuth(cloneURL)
		}

		var out []byte
		cloneErr := utils.RetryWithExponentialBackoff(ctx, cloneRetry, func() error {
			os.RemoveAll(dest)
			cmd := exec.CommandContext(ctx, "git", "clone", cloneURL, dest)
			var runErr error
			out, runErr = cmd.CombinedOutput()
			return runErr
		})
		if cloneErr != nil {
			result.Failed++
			result.Errors = append(result.Errors, OperationError{RepoName: name, Message: strings.TrimSpace(string(out))})
			continue
		}
		result.Succeeded++
	}

	emit(progress, Event{Kind: EventCompleted, Total: total, Result: result})
	return result, nil
}

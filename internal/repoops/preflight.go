package repoops

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
	"github.com/edu-tools/classroom-repos/internal/roster"
)

// preflightConcurrency bounds how many GetRepo existence checks run at
// once. Preflight checks are read-only and idempotent, so unlike the
// bulk create/clone/delete operations they carry no requirement to run
// one group at a time.
const preflightConcurrency = 8

// CollisionKind classifies why a group's expected repo collides with
// platform state during a preflight check.
type CollisionKind string

const (
	// CollisionAlreadyExists flags a repo that create would stumble on.
	CollisionAlreadyExists CollisionKind = "already_exists"
	// CollisionNotFound flags a repo that clone/delete expected but is missing.
	CollisionNotFound CollisionKind = "not_found"
)

// Collision is a single group whose expected repo state doesn't match
// what the preflight operation requires.
type Collision struct {
	GroupID   model.GroupID
	GroupName string
	RepoName  string
	Kind      CollisionKind
}

// PreflightResult reports how many groups are ready to proceed and any
// collisions blocking the rest.
type PreflightResult struct {
	Collisions []Collision
	ReadyCount int
}

// PreflightCreate flags groups whose repo already exists.
func PreflightCreate(ctx context.Context, octx OperationContext, r model.Roster, assignmentID model.AssignmentID) (PreflightResult, error) {
	return preflight(ctx, octx, r, assignmentID, CollisionAlreadyExists)
}

// PreflightClone flags groups whose repo is missing.
func PreflightClone(ctx context.Context, octx OperationContext, r model.Roster, assignmentID model.AssignmentID) (PreflightResult, error) {
	return preflight(ctx, octx, r, assignmentID, CollisionNotFound)
}

// PreflightDelete flags groups whose repo is missing.
func PreflightDelete(ctx context.Context, octx OperationContext, r model.Roster, assignmentID model.AssignmentID) (PreflightResult, error) {
	return preflight(ctx, octx, r, assignmentID, CollisionNotFound)
}

func preflight(ctx context.Context, octx OperationContext, r model.Roster, assignmentID model.AssignmentID, flagOn CollisionKind) (PreflightResult, error) {
	assignment, ok := r.FindAssignment(assignmentID)
	if !ok {
		return PreflightResult{}, notFoundf("assignment %s not found", assignmentID)
	}
	groups, err := roster.Resolve(r, assignment)
	if err != nil {
		return PreflightResult{}, err
	}
	valid, _ := splitByActive(r, groups)

	results := make([]*Collision, len(valid))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(preflightConcurrency)

	for i, grp := range valid {
		i, grp := i, grp
		g.Go(func() error {
			name := repoName(octx, assignment, grp)
			_, err := octx.Platform.GetRepo(gctx, name, nil)
			switch {
			case err == nil:
				if flagOn == CollisionAlreadyExists {
					results[i] = &Collision{GroupID: grp.ID, GroupName: grp.Name, RepoName: name, Kind: CollisionAlreadyExists}
				}
			case isNotFoundErr(err):
				if flagOn == CollisionNotFound {
					results[i] = &Collision{GroupID: grp.ID, GroupName: grp.Name, RepoName: name, Kind: CollisionNotFound}
				}
			default:
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return PreflightResult{}, err
	}

	var collisions []Collision
	for _, c := range results {
		if c != nil {
			collisions = append(collisions, *c)
		}
	}

	return PreflightResult{Collisions: collisions, ReadyCount: len(valid) - len(collisions)}, nil
}

// Package repoops drives bulk repository lifecycle operations — create,
// clone, delete — against a Git hosting platform, one operation per
// resolved group of an assignment. Operations are sequential by design:
// upstream rate limits dominate, and parallelism would only add
// complexity for no throughput benefit.
package repoops

import (
	"strings"

	"github.com/edu-tools/classroom-repos/internal/domain/model"
	"github.com/edu-tools/classroom-repos/internal/domain/port"
	"github.com/edu-tools/classroom-repos/internal/naming"
)

// OperationContext carries the platform connection and layout
// configuration shared by preflight checks and bulk operations.
type OperationContext struct {
	Platform port.Platform

	// RepoNameTemplate is substituted with "{assignment}" and "{group}"
	// placeholders against slugified names, typically "{assignment}-{group}".
	RepoNameTemplate string

	TargetDir       string
	DirectoryLayout model.DirectoryLayout
	InsertAuth      bool
}

// repoName computes a group's expected repo name from the context's
// template, substituting slugified assignment and group names.
func repoName(octx OperationContext, assignment model.Assignment, group model.Group) string {
	name := octx.RepoNameTemplate
	name = strings.ReplaceAll(name, "{assignment}", naming.Slugify(assignment.Name))
	name = strings.ReplaceAll(name, "{group}", naming.Slugify(group.Name))
	return name
}

// splitByActive partitions groups into those with at least one active
// member and those with none.
func splitByActive(r model.Roster, groups []model.Group) (valid, empty []model.Group) {
	for _, g := range groups {
		if len(r.ActiveMemberIDs(g)) > 0 {
			valid = append(valid, g)
		} else {
			empty = append(empty, g)
		}
	}
	return valid, empty
}

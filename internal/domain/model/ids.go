// Package model defines the roster/group domain entities: members,
// groups, group sets, assignments, and the roster aggregate that holds
// them. Types mirror the persisted JSON shapes used throughout the
// classroom repository orchestration engine.
package model

// MemberID identifies a Member (student or staff). Opaque, compared by
// value equality.
type MemberID string

// GroupID identifies a Group.
type GroupID string

// GroupSetID identifies a GroupSet.
type GroupSetID string

// AssignmentID identifies an Assignment.
type AssignmentID string

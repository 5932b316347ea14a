package port

import "context"

// LmsKind identifies a concrete LmsClient implementation.
type LmsKind string

const (
	LmsCanvas LmsKind = "canvas"
	LmsMoodle LmsKind = "moodle"
)

// LmsCourse is a course as reported by the LMS.
type LmsCourse struct {
	ID   string
	Name string
}

// LmsUser is a course participant as reported by the LMS.
type LmsUser struct {
	ID            string
	Name          string
	Email         string
	StudentNumber string
	IsStaff       bool
}

// LmsGroupCategory groups LmsGroup instances (Canvas "group category",
// Moodle "grouping").
type LmsGroupCategory struct {
	ID   string
	Name string
}

// LmsGroup is a group of users within a category, as reported by the LMS.
type LmsGroup struct {
	ID        string
	Name      string
	MemberIDs []string
}

// LmsAssignment is a graded assignment as reported by the LMS.
type LmsAssignment struct {
	ID   string
	Name string
}

// ProgressEventKind discriminates the tagged Event union emitted by
// long-running LMS fetches.
type ProgressEventKind string

const (
	EventFetchingUsers        ProgressEventKind = "fetching_users"
	EventFetchedUsers         ProgressEventKind = "fetched_users"
	EventFetchingGroups       ProgressEventKind = "fetching_groups"
	EventFetchedGroups        ProgressEventKind = "fetched_groups"
	EventFetchingGroupMembers ProgressEventKind = "fetching_group_members"
)

// Event is a single progress notification from a long-running LMS fetch.
type Event struct {
	Kind      ProgressEventKind
	Count     int
	Current   int
	Total     int
	GroupName string
}

// ProgressFunc receives progress notifications during long-running LMS
// fetches. Implementations must not block significantly; the core calls it
// synchronously between HTTP round trips.
type ProgressFunc func(Event)

// LmsClient is the capability set every LMS integration implements: Canvas
// and Moodle.
type LmsClient interface {
	GetCourses(ctx context.Context) ([]LmsCourse, error)
	GetCourse(ctx context.Context, courseID string) (LmsCourse, error)
	GetUsers(ctx context.Context, courseID string, progress ProgressFunc) ([]LmsUser, error)
	GetGroups(ctx context.Context, courseID string, progress ProgressFunc) ([]LmsGroup, error)
	GetGroupCategories(ctx context.Context, courseID string) ([]LmsGroupCategory, error)
	GetGroupsForCategory(ctx context.Context, courseID string, categoryID string) ([]LmsGroup, error)
	GetGroupMembers(ctx context.Context, group LmsGroup, progress ProgressFunc) ([]string, error)
	GetAssignments(ctx context.Context, courseID string) ([]LmsAssignment, error)
	ValidateToken(ctx context.Context) error
}

package lms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-querystring/query"

	"github.com/edu-tools/classroom-repos/internal/domain/port"
	classroomerrors "github.com/edu-tools/classroom-repos/pkg/errors"
	"github.com/edu-tools/classroom-repos/pkg/httpclient"
)

// MoodleClient implements port.LmsClient against the Moodle Web
// Services REST protocol (/webservice/rest/server.php).
type MoodleClient struct {
	baseURL    string
	httpClient *httpclient.Client
}

var _ port.LmsClient = (*MoodleClient)(nil)

// MoodleConfig configures a MoodleClient.
type MoodleConfig struct {
	BaseURL      string
	Token        string
	Timeout      time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
	RetryBackoff bool
}

// NewMoodleClient builds a MoodleClient with the wstoken/moodlewsrestformat
// parameters injected by a RoundTripper on every request.
func NewMoodleClient(cfg MoodleConfig) *MoodleClient {
	httpConfig := httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRetries:   cfg.MaxRetries,
		RetryDelay:   cfg.RetryDelay,
		RetryBackoff: cfg.RetryBackoff,
	}
	c := httpclient.NewClient(httpConfig)
	c.AddRoundTripper(&moodleTokenRoundTripper{token: cfg.Token})
	return &MoodleClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: c,
	}
}

type moodleErrorResponse struct {
	Exception string `json:"exception"`
	ErrorCode string `json:"errorcode"`
	Message   string `json:"message"`
}

// moodleCall invokes wsfunction, encoding params with go-querystring,
// and decodes result into v. A JSON error-object response body is
// detected and raised as a typed ApiError rather than silently
// unmarshalled into v.
func (c *MoodleClient) moodleCall(ctx context.Context, wsfunction string, params any, v any) error {
	values, err := query.Values(params)
	if err != nil {
		return fmt.Errorf("encode moodle params for %s: %w", wsfunction, err)
	}
	values.Set("wsfunction", wsfunction)

	u := c.baseURL + "/webservice/rest/server.php?" + values.Encode()
	resp, err := c.httpClient.Request(ctx, http.MethodGet, u, nil, nil)
	if err != nil {
		return mapHTTPError(err)
	}

	var maybeErr moodleErrorResponse
	if err := json.Unmarshal(resp.Body, &maybeErr); err == nil && maybeErr.Exception != "" {
		return classroomerrors.NewApiError(
			fmt.Sprintf("moodle error (%s): %s", maybeErr.ErrorCode, maybeErr.Message),
			resp.StatusCode, string(resp.Body))
	}

	if v == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("decode moodle response for %s: %w", wsfunction, err)
	}
	return nil
}

type moodleSiteInfo struct {
	UserID int `json:"userid"`
}

type moodleCourse struct {
	ID        int    `json:"id"`
	ShortName string `json:"shortname"`
	FullName  string `json:"fullname"`
}

type moodleUserCourse struct {
	ID       int    `json:"id"`
	FullName string `json:"fullname"`
}

func (c *MoodleClient) GetCourses(ctx context.Context) ([]port.LmsCourse, error) {
	var info moodleSiteInfo
	if err := c.moodleCall(ctx, "core_webservice_get_site_info", struct{}{}, &info); err != nil {
		return nil, err
	}

	var courses []moodleUserCourse
	err := c.moodleCall(ctx, "core_enrol_get_users_courses", struct {
		UserID int `url:"userid"`
	}{UserID: info.UserID}, &courses)
	if err != nil {
		return nil, err
	}

	out := make([]port.LmsCourse, 0, len(courses))
	for _, mc := range courses {
		out = append(out, port.LmsCourse{ID: strconv.Itoa(mc.ID), Name: mc.FullName})
	}
	return out, nil
}

func (c *MoodleClient) GetCourse(ctx context.Context, courseID string) (port.LmsCourse, error) {
	var wrapper struct {
		Courses []moodleCourse `json:"courses"`
	}
	err := c.moodleCall(ctx, "core_course_get_courses_by_field", struct {
		Field string `url:"field"`
		Value string `url:"value"`
	}{Field: "id", Value: courseID}, &wrapper)
	if err != nil {
		return port.LmsCourse{}, err
	}
	if len(wrapper.Courses) == 0 {
		return port.LmsCourse{}, classroomerrors.NewNotFound("moodle course not found: " + courseID)
	}
	mc := wrapper.Courses[0]
	return port.LmsCourse{ID: strconv.Itoa(mc.ID), Name: mc.FullName}, nil
}

type moodleEnrolledUser struct {
	ID       int                  `json:"id"`
	FullName string               `json:"fullname"`
	Email    string               `json:"email"`
	Roles    []moodleEnrolledRole `json:"roles"`
}

type moodleEnrolledRole struct {
	ShortName string `json:"shortname"`
}

func (c *MoodleClient) GetUsers(ctx context.Context, courseID string, progress port.ProgressFunc) ([]port.LmsUser, error) {
	if progress != nil {
		progress(port.Event{Kind: port.EventFetchingUsers})
	}
	var users []moodleEnrolledUser
	err := c.moodleCall(ctx, "core_enrol_get_enrolled_users", struct {
		CourseID int `url:"courseid"`
	}{CourseID: mustAtoi(courseID)}, &users)
	if err != nil {
		return nil, err
	}
	out := make([]port.LmsUser, 0, len(users))
	for _, u := range users {
		isStaff := false
		for _, role := range u.Roles {
			if role.ShortName != "student" {
				isStaff = true
				break
			}
		}
		out = append(out, port.LmsUser{
			ID:      strconv.Itoa(u.ID),
			Name:    u.FullName,
			Email:   u.Email,
			IsStaff: isStaff,
		})
	}
	if progress != nil {
		progress(port.Event{Kind: port.EventFetchedUsers, Count: len(out)})
	}
	return out, nil
}

type moodleGroup struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	CourseID int    `json:"courseid"`
}

func (c *MoodleClient) GetGroups(ctx context.Context, courseID string, progress port.ProgressFunc) ([]port.LmsGroup, error) {
	if progress != nil {
		progress(port.Event{Kind: port.EventFetchingGroups})
	}
	var groups []moodleGroup
	err := c.moodleCall(ctx, "core_group_get_course_groups", struct {
		CourseID int `url:"courseid"`
	}{CourseID: mustAtoi(courseID)}, &groups)
	if err != nil {
		return nil, err
	}
	out, err := c.withMembers(ctx, groups, progress)
	if err != nil {
		return nil, err
	}
	if progress != nil {
		progress(port.Event{Kind: port.EventFetchedGroups, Count: len(out)})
	}
	return out, nil
}

func (c *MoodleClient) GetGroupCategories(ctx context.Context, courseID string) ([]port.LmsGroupCategory, error) {
	var groupings []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	err := c.moodleCall(ctx, "core_group_get_course_groupings", struct {
		CourseID int `url:"courseid"`
	}{CourseID: mustAtoi(courseID)}, &groupings)
	if err != nil {
		return nil, err
	}
	out := make([]port.LmsGroupCategory, 0, len(groupings))
	for _, g := range groupings {
		out = append(out, port.LmsGroupCategory{ID: strconv.Itoa(g.ID), Name: g.Name})
	}
	return out, nil
}

func (c *MoodleClient) GetGroupsForCategory(ctx context.Context, courseID string, categoryID string) ([]port.LmsGroup, error) {
	var groupIDs []int
	err := c.moodleCall(ctx, "core_group_get_grouping_groups", struct {
		GroupingID int `url:"groupingid"`
	}{GroupingID: mustAtoi(categoryID)}, &groupIDs)
	if err != nil {
		return nil, err
	}
	all, err := c.GetGroups(ctx, courseID, nil)
	if err != nil {
		return nil, err
	}
	wanted := make(map[int]bool, len(groupIDs))
	for _, id := range groupIDs {
		wanted[id] = true
	}
	var out []port.LmsGroup
	for _, g := range all {
		if wanted[mustAtoi(g.ID)] {
			out = append(out, g)
		}
	}
	return out, nil
}

func (c *MoodleClient) withMembers(ctx context.Context, groups []moodleGroup, progress port.ProgressFunc) ([]port.LmsGroup, error) {
	out := make([]port.LmsGroup, 0, len(groups))
	for i, g := range groups {
		lg := port.LmsGroup{ID: strconv.Itoa(g.ID), Name: g.Name}
		members, err := c.GetGroupMembers(ctx, lg, nil)
		if err != nil {
			return nil, err
		}
		lg.MemberIDs = members
		out = append(out, lg)
		if progress != nil {
			progress(port.Event{Kind: port.EventFetchingGroupMembers, Current: i + 1, Total: len(groups), GroupName: g.Name})
		}
	}
	return out, nil
}

// GetGroupMembers returns the Moodle user IDs of the group's members, as
// reported by core_group_get_group_members.
func (c *MoodleClient) GetGroupMembers(ctx context.Context, group port.LmsGroup, progress port.ProgressFunc) ([]string, error) {
	var result []struct {
		GroupID int   `json:"groupid"`
		UserIDs []int `json:"userids"`
	}
	err := c.moodleCall(ctx, "core_group_get_group_members", struct {
		GroupIDs []int `url:"groupids"`
	}{GroupIDs: []int{mustAtoi(group.ID)}}, &result)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, r := range result {
		for _, uid := range r.UserIDs {
			ids = append(ids, strconv.Itoa(uid))
		}
	}
	return ids, nil
}

func (c *MoodleClient) GetAssignments(ctx context.Context, courseID string) ([]port.LmsAssignment, error) {
	var wrapper struct {
		Courses []struct {
			ID          int `json:"id"`
			Assignments []struct {
				ID   int    `json:"id"`
				Name string `json:"name"`
			} `json:"assignments"`
		} `json:"courses"`
	}
	err := c.moodleCall(ctx, "mod_assign_get_assignments", struct {
		CourseIDs []int `url:"courseids"`
	}{CourseIDs: []int{mustAtoi(courseID)}}, &wrapper)
	if err != nil {
		return nil, err
	}
	var out []port.LmsAssignment
	for _, course := range wrapper.Courses {
		for _, a := range course.Assignments {
			out = append(out, port.LmsAssignment{ID: strconv.Itoa(a.ID), Name: a.Name})
		}
	}
	return out, nil
}

func (c *MoodleClient) ValidateToken(ctx context.Context) error {
	var info moodleSiteInfo
	return c.moodleCall(ctx, "core_webservice_get_site_info", struct{}{}, &info)
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

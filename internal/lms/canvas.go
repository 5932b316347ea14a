package lms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"

	"github.com/edu-tools/classroom-repos/internal/domain/port"
	"github.com/edu-tools/classroom-repos/pkg/constants"
	classroomerrors "github.com/edu-tools/classroom-repos/pkg/errors"
	"github.com/edu-tools/classroom-repos/pkg/httpclient"
)

// canvasUsersQuery encodes get_users's include[]/enrollment_type[]
// repeated query parameters via go-querystring struct tags.
type canvasUsersQuery struct {
	Include        []string `url:"include[]"`
	EnrollmentType []string `url:"enrollment_type[]"`
}

// canvasEnrollmentTypes is always passed on get_users so staff enrollment
// types are returned alongside students; the core separates them by
// EnrollmentType afterward.
var canvasEnrollmentTypes = []string{
	"StudentEnrollment", "TeacherEnrollment", "TaEnrollment",
	"DesignerEnrollment", "ObserverEnrollment",
}

// CanvasClient implements port.LmsClient against the Canvas REST API.
type CanvasClient struct {
	baseURL    string
	httpClient *httpclient.Client
}

var _ port.LmsClient = (*CanvasClient)(nil)

// CanvasConfig configures a CanvasClient.
type CanvasConfig struct {
	BaseURL      string
	AccessToken  string
	Timeout      time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
	RetryBackoff bool
}

// NewCanvasClient builds a CanvasClient with bearer-token auth injected
// by a RoundTripper, following the teacher's auth-in-middleware pattern.
func NewCanvasClient(cfg CanvasConfig) *CanvasClient {
	httpConfig := httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRetries:   cfg.MaxRetries,
		RetryDelay:   cfg.RetryDelay,
		RetryBackoff: cfg.RetryBackoff,
	}
	c := httpclient.NewClient(httpConfig)
	c.AddRoundTripper(&bearerAuthRoundTripper{token: cfg.AccessToken})
	return &CanvasClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: c,
	}
}

type canvasCourse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type canvasEnrollment struct {
	Type string `json:"type"`
}

type canvasUser struct {
	ID          int                `json:"id"`
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	SISUserID   string             `json:"sis_user_id"`
	Enrollments []canvasEnrollment `json:"enrollments"`
}

type canvasGroupCategory struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type canvasGroup struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	GroupCategoryID int    `json:"group_category_id"`
}

type canvasAssignment struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// getPaginated follows Link: rel="next" headers until exhausted,
// unmarshalling and concatenating each page into a single slice of raw
// messages for the caller to decode per-element.
func (c *CanvasClient) getPaginated(ctx context.Context, path string, values url.Values) ([]json.RawMessage, error) {
	u := c.baseURL + path
	if len(values) > 0 {
		u += "?" + values.Encode()
	}

	var all []json.RawMessage
	for u != "" {
		resp, err := c.httpClient.Request(ctx, http.MethodGet, u, nil, nil)
		if err != nil {
			return nil, mapHTTPError(err)
		}
		var page []json.RawMessage
		if err := json.Unmarshal(resp.Body, &page); err != nil {
			return nil, fmt.Errorf("decode canvas page: %w", err)
		}
		all = append(all, page...)
		u = nextLink(resp.Headers.Get(constants.LinkHeader))
	}
	return all, nil
}

// nextLink extracts the rel="next" target from an RFC 5988 Link header,
// returning "" once Canvas stops advertising one.
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		segs := strings.Split(part, ";")
		if len(segs) < 2 {
			continue
		}
		url := strings.Trim(strings.TrimSpace(segs[0]), "<>")
		for _, seg := range segs[1:] {
			if strings.TrimSpace(seg) == `rel="next"` {
				return url
			}
		}
	}
	return ""
}

func (c *CanvasClient) GetCourses(ctx context.Context) ([]port.LmsCourse, error) {
	raw, err := c.getPaginated(ctx, "/api/v1/courses", nil)
	if err != nil {
		return nil, err
	}
	out := make([]port.LmsCourse, 0, len(raw))
	for _, r := range raw {
		var cc canvasCourse
		if err := json.Unmarshal(r, &cc); err != nil {
			return nil, fmt.Errorf("decode canvas course: %w", err)
		}
		out = append(out, port.LmsCourse{ID: fmt.Sprint(cc.ID), Name: cc.Name})
	}
	return out, nil
}

func (c *CanvasClient) GetCourse(ctx context.Context, courseID string) (port.LmsCourse, error) {
	resp, err := c.httpClient.Request(ctx, http.MethodGet, c.baseURL+"/api/v1/courses/"+courseID, nil, nil)
	if err != nil {
		return port.LmsCourse{}, mapHTTPError(err)
	}
	var cc canvasCourse
	if err := json.Unmarshal(resp.Body, &cc); err != nil {
		return port.LmsCourse{}, fmt.Errorf("decode canvas course: %w", err)
	}
	return port.LmsCourse{ID: fmt.Sprint(cc.ID), Name: cc.Name}, nil
}

func canvasEnrollmentType(types []canvasEnrollment) string {
	if len(types) == 0 {
		return "Other"
	}
	return strings.TrimSuffix(types[0].Type, "Enrollment")
}

func (c *CanvasClient) GetUsers(ctx context.Context, courseID string, progress port.ProgressFunc) ([]port.LmsUser, error) {
	if progress != nil {
		progress(port.Event{Kind: port.EventFetchingUsers})
	}
	values, err := query.Values(canvasUsersQuery{
		Include:        []string{"enrollments"},
		EnrollmentType: canvasEnrollmentTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("encode canvas get_users query: %w", err)
	}
	raw, err := c.getPaginated(ctx, "/api/v1/courses/"+courseID+"/users", values)
	if err != nil {
		return nil, err
	}
	out := make([]port.LmsUser, 0, len(raw))
	for _, r := range raw {
		var cu canvasUser
		if err := json.Unmarshal(r, &cu); err != nil {
			return nil, fmt.Errorf("decode canvas user: %w", err)
		}
		enrollType := canvasEnrollmentType(cu.Enrollments)
		out = append(out, port.LmsUser{
			ID:            fmt.Sprint(cu.ID),
			Name:          cu.Name,
			Email:         cu.Email,
			StudentNumber: cu.SISUserID,
			IsStaff:       enrollType != "Student",
		})
	}
	if progress != nil {
		progress(port.Event{Kind: port.EventFetchedUsers, Count: len(out)})
	}
	return out, nil
}

func (c *CanvasClient) GetGroupCategories(ctx context.Context, courseID string) ([]port.LmsGroupCategory, error) {
	raw, err := c.getPaginated(ctx, "/api/v1/courses/"+courseID+"/group_categories", nil)
	if err == nil {
		out := make([]port.LmsGroupCategory, 0, len(raw))
		for _, r := range raw {
			var cat canvasGroupCategory
			if err := json.Unmarshal(r, &cat); err != nil {
				return nil, fmt.Errorf("decode canvas group category: %w", err)
			}
			out = append(out, port.LmsGroupCategory{ID: fmt.Sprint(cat.ID), Name: cat.Name})
		}
		return out, nil
	}
	if !isAuthDenied(err) {
		return nil, err
	}
	// Fall back to deriving categories from the course's groups.
	groupCategoryValues, _ := query.Values(struct {
		Include []string `url:"include[]"`
	}{Include: []string{"group_category"}})
	groupsRaw, gerr := c.getPaginated(ctx, "/api/v1/courses/"+courseID+"/groups", groupCategoryValues)
	if gerr != nil {
		return nil, gerr
	}
	seen := make(map[int]bool)
	var out []port.LmsGroupCategory
	for _, r := range groupsRaw {
		var g canvasGroup
		if err := json.Unmarshal(r, &g); err != nil {
			return nil, fmt.Errorf("decode canvas group: %w", err)
		}
		if g.GroupCategoryID == 0 || seen[g.GroupCategoryID] {
			continue
		}
		seen[g.GroupCategoryID] = true
		out = append(out, port.LmsGroupCategory{ID: fmt.Sprint(g.GroupCategoryID)})
	}
	return out, nil
}

func isAuthDenied(err error) bool {
	var authErr classroomerrors.AuthError
	return errors.As(err, &authErr)
}

func (c *CanvasClient) GetGroups(ctx context.Context, courseID string, progress port.ProgressFunc) ([]port.LmsGroup, error) {
	if progress != nil {
		progress(port.Event{Kind: port.EventFetchingGroups})
	}
	raw, err := c.getPaginated(ctx, "/api/v1/courses/"+courseID+"/groups", nil)
	if err != nil {
		return nil, err
	}
	groups, err := c.decodeGroupsWithMembers(ctx, raw, progress)
	if err != nil {
		return nil, err
	}
	if progress != nil {
		progress(port.Event{Kind: port.EventFetchedGroups, Count: len(groups)})
	}
	return groups, nil
}

func (c *CanvasClient) GetGroupsForCategory(ctx context.Context, courseID string, categoryID string) ([]port.LmsGroup, error) {
	raw, err := c.getPaginated(ctx, "/api/v1/group_categories/"+categoryID+"/groups", nil)
	if err != nil {
		return nil, err
	}
	return c.decodeGroupsWithMembers(ctx, raw, nil)
}

func (c *CanvasClient) decodeGroupsWithMembers(ctx context.Context, raw []json.RawMessage, progress port.ProgressFunc) ([]port.LmsGroup, error) {
	groups := make([]port.LmsGroup, 0, len(raw))
	for i, r := range raw {
		var cg canvasGroup
		if err := json.Unmarshal(r, &cg); err != nil {
			return nil, fmt.Errorf("decode canvas group: %w", err)
		}
		g := port.LmsGroup{ID: fmt.Sprint(cg.ID), Name: cg.Name}
		members, err := c.GetGroupMembers(ctx, g, progress)
		if err != nil {
			return nil, err
		}
		g.MemberIDs = members
		groups = append(groups, g)
		if progress != nil {
			progress(port.Event{Kind: port.EventFetchingGroupMembers, Current: i + 1, Total: len(raw), GroupName: g.Name})
		}
	}
	return groups, nil
}

func (c *CanvasClient) GetGroupMembers(ctx context.Context, group port.LmsGroup, progress port.ProgressFunc) ([]string, error) {
	raw, err := c.getPaginated(ctx, "/api/v1/groups/"+group.ID+"/users", nil)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(raw))
	for _, r := range raw {
		var u canvasUser
		if err := json.Unmarshal(r, &u); err != nil {
			return nil, fmt.Errorf("decode canvas group member: %w", err)
		}
		ids = append(ids, fmt.Sprint(u.ID))
	}
	return ids, nil
}

func (c *CanvasClient) GetAssignments(ctx context.Context, courseID string) ([]port.LmsAssignment, error) {
	raw, err := c.getPaginated(ctx, "/api/v1/courses/"+courseID+"/assignments", nil)
	if err != nil {
		return nil, err
	}
	out := make([]port.LmsAssignment, 0, len(raw))
	for _, r := range raw {
		var a canvasAssignment
		if err := json.Unmarshal(r, &a); err != nil {
			return nil, fmt.Errorf("decode canvas assignment: %w", err)
		}
		out = append(out, port.LmsAssignment{ID: fmt.Sprint(a.ID), Name: a.Name})
	}
	return out, nil
}

func (c *CanvasClient) ValidateToken(ctx context.Context) error {
	_, err := c.httpClient.Request(ctx, http.MethodGet, c.baseURL+"/api/v1/users/self", nil, nil)
	if err != nil {
		return mapHTTPError(err)
	}
	return nil
}

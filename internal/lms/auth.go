package lms

import (
	"net/http"

	"github.com/edu-tools/classroom-repos/pkg/constants"
)

// bearerAuthRoundTripper injects a Canvas API bearer token, mirroring the
// teacher's groupsioBasicAuthRoundTripper pattern: auth lives in the
// RoundTripper, not threaded through every call site.
type bearerAuthRoundTripper struct {
	token string
}

func (rt *bearerAuthRoundTripper) RoundTrip(req *http.Request, next func(*http.Request) (*http.Response, error)) (*http.Response, error) {
	req.Header.Set(constants.AuthorizationHeader, "Bearer "+rt.token)
	return next(req)
}

// moodleTokenRoundTripper injects the Moodle web-services token and the
// fixed wstoken/moodlewsrestformat query parameters common to every call.
type moodleTokenRoundTripper struct {
	token string
}

func (rt *moodleTokenRoundTripper) RoundTrip(req *http.Request, next func(*http.Request) (*http.Response, error)) (*http.Response, error) {
	q := req.URL.Query()
	q.Set("wstoken", rt.token)
	q.Set("moodlewsrestformat", "json")
	req.URL.RawQuery = q.Encode()
	return next(req)
}

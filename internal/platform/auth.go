package platform

import (
	"net/http"

	"github.com/edu-tools/classroom-repos/pkg/constants"
)

// tokenAuthRoundTripper injects `Authorization: token <token>`, the
// convention shared by GitHub and Gitea.
type tokenAuthRoundTripper struct {
	token string
}

func (rt *tokenAuthRoundTripper) RoundTrip(req *http.Request, next func(*http.Request) (*http.Response, error)) (*http.Response, error) {
	req.Header.Set(constants.AuthorizationHeader, "token "+rt.token)
	return next(req)
}

// privateTokenRoundTripper injects GitLab's `PRIVATE-TOKEN` header.
type privateTokenRoundTripper struct {
	token string
}

func (rt *privateTokenRoundTripper) RoundTrip(req *http.Request, next func(*http.Request) (*http.Response, error)) (*http.Response, error) {
	req.Header.Set("PRIVATE-TOKEN", rt.token)
	return next(req)
}

package platform

import (
	"net/url"
	"strings"
)

// insertBasicAuth rewrites rawURL's userinfo to user:token, the
// convention shared by GitHub (oauth2:TOKEN) and GitLab/Gitea
// (user:token). Returns rawURL unchanged if it does not parse.
func insertBasicAuth(rawURL, user, token string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.User = url.UserPassword(user, token)
	return u.String()
}

// extractRepoName returns a clone URL's last path segment with an
// optional trailing ".git" stripped.
func extractRepoName(rawURL string) string {
	trimmed := strings.TrimSuffix(rawURL, "/")
	idx := strings.LastIndex(trimmed, "/")
	name := trimmed
	if idx >= 0 {
		name = trimmed[idx+1:]
	}
	return strings.TrimSuffix(name, ".git")
}

// Package platform implements port.Platform against GitHub, GitLab,
// Gitea, and a filesystem-backed Local test double.
package platform

import (
	"net/http"

	classroomerrors "github.com/edu-tools/classroom-repos/pkg/errors"
	"github.com/edu-tools/classroom-repos/pkg/httpclient"
)

// mapHTTPError mirrors internal/lms's status-to-taxonomy mapping: the
// Git hosting backends hit the same 401/403/404/429/5xx shape.
func mapHTTPError(err error) error {
	if err == nil {
		return nil
	}
	retryable, ok := err.(*httpclient.RetryableError)
	if !ok {
		return classroomerrors.NewOther("request failed", err)
	}
	switch retryable.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return classroomerrors.NewAuthError(retryable.Message)
	case http.StatusNotFound:
		return classroomerrors.NewNotFound(retryable.Message)
	case http.StatusTooManyRequests:
		return classroomerrors.NewRateLimit(retryable.Message, 0)
	default:
		return classroomerrors.NewApiError("platform request failed", retryable.StatusCode, retryable.Message)
	}
}

func isNotFound(err error) bool {
	_, ok := err.(classroomerrors.NotFound)
	return ok
}

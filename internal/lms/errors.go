// Package lms implements the Canvas and Moodle clients behind
// port.LmsClient, and the reconciliation operations (verify, import
// students, import groups) that run against them.
package lms

import (
	"net/http"

	classroomerrors "github.com/edu-tools/classroom-repos/pkg/errors"
	"github.com/edu-tools/classroom-repos/pkg/httpclient"
)

// mapHTTPError translates a pkg/httpclient error into the typed taxonomy
// per spec: 401/403 -> AuthError, 404 -> NotFound, 429 -> RateLimit, all
// other statuses -> ApiError. Non-HTTP errors (timeouts, DNS failures)
// fall through to Other.
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
		return classroomerrors.NewApiError("lms request failed", retryable.StatusCode, retryable.Message)
	}
}

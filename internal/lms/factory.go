package lms

import (
	"time"

	"github.com/edu-tools/classroom-repos/internal/domain/port"
	classroomerrors "github.com/edu-tools/classroom-repos/pkg/errors"
)

// ConnectionParams describes how to reach a configured LMS connection:
// which kind of client to build, and that client's credentials.
type ConnectionParams struct {
	Kind        port.LmsKind
	BaseURL     string
	AccessToken string // Canvas bearer token

	Token string // Moodle wstoken

	Timeout      time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
	RetryBackoff bool
}

// NewClient builds the concrete LMS client for params.Kind.
func NewClient(params ConnectionParams) (port.LmsClient, error) {
	switch params.Kind {
	case port.LmsCanvas:
		return NewCanvasClient(CanvasConfig{
			BaseURL:      params.BaseURL,
			AccessToken:  params.AccessToken,
			Timeout:      params.Timeout,
			MaxRetries:   params.MaxRetries,
			RetryDelay:   params.RetryDelay,
			RetryBackoff: params.RetryBackoff,
		}), nil
	case port.LmsMoodle:
		return NewMoodleClient(MoodleConfig{
			BaseURL:      params.BaseURL,
			Token:        params.Token,
			Timeout:      params.Timeout,
			MaxRetries:   params.MaxRetries,
			RetryDelay:   params.RetryDelay,
			RetryBackoff: params.RetryBackoff,
		}), nil
	default:
		return nil, classroomerrors.NewValidation("unknown lms kind: " + string(params.Kind))
	}
}

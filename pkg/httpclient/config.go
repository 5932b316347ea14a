package httpclient

import "time"

// Config controls timeout and retry behavior for a Client. It is shared
// verbatim by the LMS clients (Canvas, Moodle) and the Git platform
// clients (GitHub, GitLab, Gitea), each supplying their own RoundTripper
// for authentication on top of the same retry semantics.
type Config struct {
	// Timeout bounds a single underlying HTTP round trip.
	Timeout time.Duration

	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int

	// RetryDelay is the base delay before the first retry.
	RetryDelay time.Duration

	// RetryBackoff doubles RetryDelay on each subsequent attempt, capped
	// at MaxDelay, with 25% jitter added to avoid synchronized retries
	// against a rate-limited platform.
	RetryBackoff bool

	// MaxDelay caps the computed backoff delay. Defaults to 30s when zero.
	MaxDelay time.Duration
}

// DefaultConfig returns a Config with a 30s timeout, two retries starting
// at 1s with exponential backoff, and a 30s MaxDelay.
func DefaultConfig() Config {
	return Config{
		Timeout:      30 * time.Second,
		MaxRetries:   2,
		RetryDelay:   1 * time.Second,
		RetryBackoff: true,
		MaxDelay:     30 * time.Second,
	}
}

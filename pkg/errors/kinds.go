package errors

import "errors"

// Validation represents a failure to satisfy an input constraint: a
// missing required field, a malformed value, or a domain invariant
// violation caught before any external call is made.
type Validation struct {
	base
}

func (v Validation) Error() string {
	return v.error()
}

func (v Validation) Unwrap() error {
	return v.err
}

// NewValidation creates a new Validation error with the provided message.
func NewValidation(message string, err ...error) Validation {
	return Validation{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
	}
}

// NotFound represents a lookup that found nothing: a missing group, a
// student not present in the roster, an assignment id that does not
// resolve.
type NotFound struct {
	base
}

func (n NotFound) Error() string {
	return n.error()
}

func (n NotFound) Unwrap() error {
	return n.err
}

// NewNotFound creates a new NotFound error with the provided message.
func NewNotFound(message string, err ...error) NotFound {
	return NotFound{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
	}
}

// AuthError represents a rejected or expired credential against an LMS
// or Git platform: bad token, expired session, insufficient scope.
type AuthError struct {
	base
}

func (a AuthError) Error() string {
	return a.error()
}

func (a AuthError) Unwrap() error {
	return a.err
}

// NewAuthError creates a new AuthError with the provided message.
func NewAuthError(message string, err ...error) AuthError {
	return AuthError{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
	}
}

// RateLimit represents a 429 or platform-specific throttling response.
// RetryAfter carries the platform's advertised backoff, zero if the
// platform did not advertise one.
type RateLimit struct {
	base
	RetryAfter int
}

func (r RateLimit) Error() string {
	return r.error()
}

func (r RateLimit) Unwrap() error {
	return r.err
}

// NewRateLimit creates a new RateLimit error with the provided message
// and retry-after hint in seconds.
func NewRateLimit(message string, retryAfter int, err ...error) RateLimit {
	return RateLimit{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
		RetryAfter: retryAfter,
	}
}

// ApiError represents a non-2xx response from an LMS or Git platform
// API that does not fit one of the more specific kinds above. Status
// and Body preserve enough of the response for diagnostics and tests.
type ApiError struct {
	base
	Status int
	Body   string
}

func (a ApiError) Error() string {
	return a.error()
}

func (a ApiError) Unwrap() error {
	return a.err
}

// NewApiError creates a new ApiError with the provided message, status
// code, and response body.
func NewApiError(message string, status int, body string, err ...error) ApiError {
	return ApiError{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
		Status: status,
		Body:   body,
	}
}

// InvalidURL represents a platform base URL or LMS endpoint that could
// not be parsed or is missing a required scheme/host.
type InvalidURL struct {
	base
}

func (i InvalidURL) Error() string {
	return i.error()
}

func (i InvalidURL) Unwrap() error {
	return i.err
}

// NewInvalidURL creates a new InvalidURL error with the provided message.
func NewInvalidURL(message string, err ...error) InvalidURL {
	return InvalidURL{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
	}
}

// FileError represents a failure reading, writing, or renaming a file
// on disk: a CSV that could not be opened, a profile that could not be
// written, a backup that could not be restored.
type FileError struct {
	base
	Path string
}

func (f FileError) Error() string {
	return f.error()
}

func (f FileError) Unwrap() error {
	return f.err
}

// NewFileError creates a new FileError with the provided message and path.
func NewFileError(message string, path string, err ...error) FileError {
	return FileError{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
		Path: path,
	}
}

// GitError represents a failure invoking the git binary: a non-zero
// exit status from clone or init, or git missing from PATH.
type GitError struct {
	base
}

func (g GitError) Error() string {
	return g.error()
}

func (g GitError) Unwrap() error {
	return g.err
}

// NewGitError creates a new GitError with the provided message.
func NewGitError(message string, err ...error) GitError {
	return GitError{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
	}
}

// Other is a catch-all for errors that do not warrant their own kind.
type Other struct {
	base
}

func (o Other) Error() string {
	return o.error()
}

func (o Other) Unwrap() error {
	return o.err
}

// NewOther creates a new Other error with the provided message.
func NewOther(message string, err ...error) Other {
	return Other{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
	}
}

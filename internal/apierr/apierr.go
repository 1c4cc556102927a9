// Package apierr provides shared error sentinels and retry infrastructure
// for the remote text-completion clients. Provider-specific error types are
// classified into these sentinels at the client boundary; callers check
// with errors.Is.
package apierr

import "errors"

// Sentinel errors for remote API failures.
var (
	// ErrRateLimit indicates the API rate limit was exceeded (retryable).
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrTimeout indicates a request timed out (retryable).
	ErrTimeout = errors.New("request timeout")

	// ErrAuthFailed indicates API authentication failed (invalid key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrServer indicates a 5xx response from the API (transient, retryable).
	ErrServer = errors.New("server error")

	// ErrContextTooLong indicates the request exceeded the model's context window.
	ErrContextTooLong = errors.New("request exceeds model context window")

	// ErrInvalidResponse indicates the API returned a malformed or empty response.
	ErrInvalidResponse = errors.New("invalid API response")
)

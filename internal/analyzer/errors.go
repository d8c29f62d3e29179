package analyzer

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// TransportError indicates the model endpoint could not produce a reply:
// network failure, timeout, authentication failure or a non-2xx status.
type TransportError struct {
	Provider   string
	StatusCode int
	RetryAfter time.Duration
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s transport error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s transport error: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RateLimited reports whether the endpoint answered 429.
func (e *TransportError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// NewTransportError creates a TransportError. statusCode is 0 when no HTTP
// response was received.
func NewTransportError(provider string, statusCode int, err error) *TransportError {
	return &TransportError{Provider: provider, StatusCode: statusCode, Err: err}
}

// NewRateLimitError creates a TransportError for a 429 reply. If
// retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *TransportError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &TransportError{
		Provider:   provider,
		StatusCode: http.StatusTooManyRequests,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Err:        err,
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

// StatusError builds the TransportError for a non-2xx HTTP reply.
func StatusError(provider string, resp *http.Response, body []byte) *TransportError {
	err := fmt.Errorf("%s API error: %s", provider, Truncate(string(body), 500))
	if resp.StatusCode == http.StatusTooManyRequests {
		return NewRateLimitError(provider, err, ParseRetryAfterHeader(resp.Header.Get("Retry-After")))
	}
	return NewTransportError(provider, resp.StatusCode, err)
}

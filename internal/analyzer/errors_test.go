package analyzer_test

import (
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"claimrisk/internal/analyzer"
)

func TestTransportError_Unwrap(t *testing.T) {
	err := analyzer.NewTransportError("gemini", 0, io.ErrUnexpectedEOF)

	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, "gemini transport error: unexpected EOF", err.Error())
	assert.False(t, err.RateLimited())
}

func TestTransportError_WithStatus(t *testing.T) {
	err := analyzer.NewTransportError("vertex", 503, errors.New("unavailable"))

	assert.Equal(t, "vertex transport error (status 503): unavailable", err.Error())
}

func TestNewRateLimitError_DefaultRetryAfter(t *testing.T) {
	err := analyzer.NewRateLimitError("openai", errors.New("slow down"), 0)

	assert.True(t, err.RateLimited())
	assert.Equal(t, 60*time.Second, err.RetryAfter)
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, analyzer.ParseRetryAfterHeader(""))
	assert.Equal(t, 0, analyzer.ParseRetryAfterHeader("Wed, 21 Oct 2015 07:28:00 GMT"))
	assert.Equal(t, 12, analyzer.ParseRetryAfterHeader("12"))
}

func TestStatusError(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{}}
	resp.Header.Set("Retry-After", "7")

	err := analyzer.StatusError("gemini", resp, []byte(`{"error":"quota"}`))

	assert.True(t, err.RateLimited())
	assert.Equal(t, 7*time.Second, err.RetryAfter)

	resp = &http.Response{StatusCode: http.StatusInternalServerError, Header: http.Header{}}
	err = analyzer.StatusError("gemini", resp, []byte("boom"))

	assert.False(t, err.RateLimited())
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	assert.Contains(t, err.Error(), "boom")
}

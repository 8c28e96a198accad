package pulpo

import (
	"fmt"
	"time"
)

// rateLimitMessage is the business payload the WMS answers with when the
// account's API quota is exhausted
const rateLimitMessage = "api_rate_limit_reached"

// RateLimitError is returned when the WMS reports the API quota as exhausted.
// RetryAfter is zero when the response carried no retry_after_seconds hint.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("api rate limit reached, retry after %s", e.RetryAfter)
	}
	return "api rate limit reached"
}

// HTTPError is a non-2xx transport-level response. Only status 429 is
// retried; everything else surfaces immediately.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("wms returned status %d: %s", e.StatusCode, e.Body)
}

// BusinessError is a 2xx response whose JSON carries an errors or message
// key, or is a bare string. The order or record behind it is skipped, the
// run continues.
type BusinessError struct {
	Message string
	Payload string
}

func (e *BusinessError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("wms error: %s", e.Message)
	}
	return fmt.Sprintf("wms error: %s", e.Payload)
}

// DecodeError is a response body that could not be parsed as the expected
// shape
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response from %s: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

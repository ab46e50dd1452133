package inference

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ServiceError indicates the inference service returned a non-2xx status.
type ServiceError struct {
	Provider   string
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s inference error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// Transient reports whether the failure is worth retrying: 5xx-class errors
// and rate limiting. 4xx responses other than 429 are permanent.
func (e *ServiceError) Transient() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// MalformedResponseError indicates a 2xx response whose body could not be
// mapped to the expected structured object.
type MalformedResponseError struct {
	Provider string
	Reason   string
	Raw      string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s malformed response: %s", e.Provider, e.Reason)
}

// IsTransient classifies an inference error for retry purposes. Malformed
// responses count as transient: a nondeterministic generation may succeed on
// the next attempt.
func IsTransient(err error) bool {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Transient()
	}
	var me *MalformedResponseError
	return errors.As(err, &me)
}

// IsMalformed reports whether the error is a MalformedResponseError.
func IsMalformed(err error) bool {
	var me *MalformedResponseError
	return errors.As(err, &me)
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

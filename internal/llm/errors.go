package llm

import (
	"context"
	"errors"
)

var (
	ErrDisabled      = errors.New("AI drafting is disabled")
	ErrMissingAPIKey = errors.New("anthropic api key not configured")

	// ErrUnavailable means the provider could not be reached at all.
	ErrUnavailable    = errors.New("llm provider unavailable")
	ErrTimeout        = errors.New("llm request timed out")
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")

	// ErrInvalidOutput means a reply arrived but did not hold the JSON
	// shape the task asked for.
	ErrInvalidOutput = errors.New("invalid llm output format")
)

// errorCodes maps failures to the short codes reported to observers.
// Order matters: a timeout wrapped in a retry error reports TIMEOUT.
var errorCodes = []struct {
	err  error
	code string
}{
	{ErrTimeout, "TIMEOUT"},
	{context.DeadlineExceeded, "TIMEOUT"},
	{ErrUnavailable, "UNAVAILABLE"},
	{ErrInvalidOutput, "INVALID_OUTPUT"},
	{ErrMissingAPIKey, "MISCONFIGURED"},
	{ErrRetryExhausted, "RETRY_EXHAUSTED"},
	{context.Canceled, "CANCELED"},
}

// ErrorCode classifies err for LLMCallEvent.ErrorCode. It returns "" for
// nil and UNKNOWN for errors it does not recognize.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "UNKNOWN"
}

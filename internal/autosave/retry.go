package autosave

import "time"

// RetryPolicy spaces out retries of a failed save.
type RetryPolicy struct {
	Base time.Duration
	// MaxAttempts is the number of retries after the first failure.
	MaxAttempts int
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Base: time.Second, MaxAttempts: 3}
}

// Backoff returns the delay before retry number attempt (1-based): Base,
// then doubled for each further attempt.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.Base << (attempt - 1)
}

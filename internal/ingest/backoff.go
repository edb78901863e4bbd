package ingest

import "time"

const (
	defaultRetryBackoff = 100 * time.Millisecond
	maxRetryBackoff     = 10 * time.Second
)

// Backoff returns the delay before the given retry attempt (1-based):
// exponential on the base, capped at maxRetryBackoff.
func Backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = defaultRetryBackoff
	}
	if attempt < 1 {
		attempt = 1
	}

	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxRetryBackoff {
			return maxRetryBackoff
		}
	}
	return d
}

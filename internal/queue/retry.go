package queue

import "time"

// RetryPolicy controls redelivery of failed generation jobs. Attempts count
// every execution, so MaxAttempts=3 means the first run plus two retries.
type RetryPolicy struct {
	MaxAttempts int
	MinBackoff  time.Duration
	MaxBackoff  time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		MinBackoff:  5 * time.Second,
		MaxBackoff:  60 * time.Second,
	}
}

// Backoff returns the delay before the given attempt number (1-based) is
// re-executed. The delay doubles per attempt and is capped at MaxBackoff.
func (p RetryPolicy) Backoff(attemptsMade int) time.Duration {
	backoff := p.MinBackoff
	for i := 1; i < attemptsMade; i++ {
		backoff *= 2
		if backoff >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if backoff > p.MaxBackoff {
		return p.MaxBackoff
	}
	return backoff
}

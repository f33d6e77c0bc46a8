package livesync

import "time"

// Backoff holds the reconnect schedule.
type Backoff struct {
	Base        time.Duration
	Max         time.Duration
	MaxAttempts int
}

// Delay returns the wait before reconnect attempt n (0-indexed).
func (b Backoff) Delay(n int) time.Duration {
	return Delay(n, b.Base, b.Max)
}

// Exhausted reports whether failures consecutive failures use up the budget.
func (b Backoff) Exhausted(failures int) bool {
	return failures >= b.MaxAttempts
}

// Delay computes min(base*2^n, max). Negative n is treated as zero.
func Delay(n int, base, max time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	if n < 0 {
		n = 0
	}
	d := base
	for i := 0; i < n; i++ {
		if d >= max {
			return max
		}
		d *= 2
	}
	if d > max {
		return max
	}
	return d
}

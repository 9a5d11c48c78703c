package supervisor

import "time"

// backoffDelay returns the delay before restart attempt n (n starts at 0):
// the base doubled per attempt, capped at max.
func backoffDelay(base, max time.Duration, attempt int) time.Duration {
	delay := base
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= max {
			return max
		}
	}
	if delay > max {
		return max
	}
	return delay
}

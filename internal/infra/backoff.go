package infra

import "time"

const (
	backoffBase = 1 * time.Second
	backoffMax  = 60 * time.Second
)

// CalculateBackoff returns an exponential reconnect delay capped at one minute.
func CalculateBackoff(retryCount int) time.Duration {
	if retryCount <= 0 {
		return backoffBase
	}
	delay := backoffBase << uint(retryCount)
	if delay > backoffMax || delay <= 0 {
		return backoffMax
	}
	return delay
}

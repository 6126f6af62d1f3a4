package utils

import (
	"fmt"
	"time"
)

// RetryConfig retries transient failures (rate limits, flaky storefronts,
// dropped connections) with exponential back-off.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *Logger
}

// NewRetry creates a RetryConfig with the given attempt budget.
func NewRetry(maxAttempts int, baseDelay time.Duration, logger *Logger) *RetryConfig {
	return &RetryConfig{MaxAttempts: maxAttempts, BaseDelay: baseDelay, Logger: logger}
}

// Do executes fn until it succeeds or the attempt budget is spent. The delay
// doubles after each failed attempt.
func (r *RetryConfig) Do(operationName string, fn func() error) error {
	var lastErr error
	delay := r.BaseDelay

	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt < r.MaxAttempts {
			r.Logger.Warn("[retry] %s failed (attempt %d/%d): %v, retrying in %v",
				operationName, attempt, r.MaxAttempts, lastErr, delay)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, r.MaxAttempts, lastErr)
}

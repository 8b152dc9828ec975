// Package retry provides a bounded, cancellable polling loop for conditions
// that become true asynchronously.
package retry

import (
	"context"
	"time"
)

// PollConfig configures a fixed-interval polling loop.
type PollConfig struct {
	Interval    time.Duration `json:"interval"`     // Delay between probes (default: 500ms)
	MaxAttempts int           `json:"max_attempts"` // Maximum number of probes before giving up (default: 240)
}

// PollResult contains information about a completed polling loop.
type PollResult struct {
	Attempts      int           `json:"attempts"`       // Total number of probes made
	TotalDuration time.Duration `json:"total_duration"` // Total time spent polling
	Success       bool          `json:"success"`        // Whether the condition was observed
	LastError     error         `json:"-"`              // Last error returned by a probe
}

// DefaultPollConfig returns a polling configuration with sensible defaults.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		Interval:    500 * time.Millisecond,
		MaxAttempts: 240,
	}
}

// ErrExhausted is returned through PollResult.LastError when every attempt
// was used without the condition becoming true.
type ErrExhausted struct {
	Attempts int
}

func (e *ErrExhausted) Error() string {
	return "retry: condition not met after exhausting attempts"
}

// Poll probes the condition until it reports done, the attempt budget runs
// out, the probe fails, or the context is cancelled. The first probe runs
// immediately; the interval delay applies between probes.
func Poll(ctx context.Context, config PollConfig, probe func(ctx context.Context) (done bool, err error)) PollResult {
	if config.Interval <= 0 {
		config.Interval = 500 * time.Millisecond
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 240
	}

	start := time.Now()
	result := PollResult{}

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		result.Attempts = attempt + 1

		done, err := probe(ctx)
		if err != nil {
			result.LastError = err
			result.TotalDuration = time.Since(start)
			return result
		}
		if done {
			result.Success = true
			result.TotalDuration = time.Since(start)
			return result
		}

		select {
		case <-ctx.Done():
			result.LastError = ctx.Err()
			result.TotalDuration = time.Since(start)
			return result
		case <-time.After(config.Interval):
		}
	}

	result.LastError = &ErrExhausted{Attempts: result.Attempts}
	result.TotalDuration = time.Since(start)
	return result
}

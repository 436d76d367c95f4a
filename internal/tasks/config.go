package tasks

import "time"

// Config tunes the background task queues. Zero values fall back to the
// defaults below when the client starts.
type Config struct {
	Workers           int           // concurrent workers per queue
	MaxRetries        int           // attempts before a task is abandoned
	RetryDelay        time.Duration // backoff between attempts
	TaskTimeout       time.Duration // per-execution deadline
	ReleaseAfter      time.Duration // stuck tasks return to the queue after this
	CleanupInterval   time.Duration // how often finished tasks are swept
	RetentionDuration time.Duration // how long finished tasks stay visible
}

// DefaultConfig suits a single-instance deployment with light queue
// traffic.
func DefaultConfig() Config {
	return Config{
		Workers:           2,
		MaxRetries:        3,
		RetryDelay:        time.Minute,
		TaskTimeout:       5 * time.Minute,
		ReleaseAfter:      15 * time.Minute,
		CleanupInterval:   time.Hour,
		RetentionDuration: 24 * time.Hour,
	}
}

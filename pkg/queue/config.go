package queue

import "time"

// Config holds the configuration for the delayed job queue.
type Config struct {
	PollInterval       time.Duration `env:"QUEUE_POLL_INTERVAL" envDefault:"1s"`
	LockTimeout        time.Duration `env:"QUEUE_LOCK_TIMEOUT" envDefault:"2m"`
	RetryBackoff       time.Duration `env:"QUEUE_RETRY_BACKOFF" envDefault:"3s"`
	MaxConcurrentJobs  int           `env:"QUEUE_MAX_CONCURRENT_JOBS" envDefault:"1"`
	CompletedRetention time.Duration `env:"QUEUE_COMPLETED_RETENTION" envDefault:"24h"`
	FailedArchiveCap   int           `env:"QUEUE_FAILED_ARCHIVE_CAP" envDefault:"100"`
}

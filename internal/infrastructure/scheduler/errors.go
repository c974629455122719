package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("scheduler: invalid configuration")

	// ErrSchedulerNotRunning is returned when triggering a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler: not running")

	// ErrSweepInProgress is returned when a sweep is triggered while another
	// one is still running
	ErrSweepInProgress = errors.New("scheduler: sweep already in progress")
)

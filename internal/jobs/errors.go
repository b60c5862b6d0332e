package jobs

import "errors"

// Sentinel errors for job operations.
var (
	ErrJobNotFound       = errors.New("print job not found")
	ErrInvalidTransition = errors.New("invalid job status transition")
	ErrRunnerClosed      = errors.New("job runner is shut down")
)

package domain

import "errors"

// Failure classes of a run. Only ErrConfig stops the process.
var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrNoNewItems        = errors.New("no new items")
	ErrResearch          = errors.New("research failed")
	ErrGeneration        = errors.New("generation failed")
	ErrPublish           = errors.New("publish failed")
	ErrConfig            = errors.New("invalid configuration")
	ErrNotFound          = errors.New("not found")
)

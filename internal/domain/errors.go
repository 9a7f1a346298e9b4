package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrMissingFields      = errors.New("missing required fields")
	ErrCapabilityDisabled = errors.New("capability disabled")
	ErrProviderFailure    = errors.New("provider failure")
	ErrAudioTooLarge      = errors.New("audio exceeds size limit")
	ErrEmptyInput         = errors.New("empty input")
	ErrInvalidImage       = errors.New("invalid image")
)

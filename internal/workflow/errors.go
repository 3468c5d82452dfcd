package workflow

import "errors"

var (
	// ErrProviderUnavailable means the provider was unreachable or returned a
	// malformed response while creating a project. The record is untouched.
	ErrProviderUnavailable = errors.New("generation provider unavailable")

	// ErrStatusCheckFailed is transient; the caller should retry the status
	// check later. The stored record is left as it was.
	ErrStatusCheckFailed = errors.New("status check failed")

	// ErrStorageUnavailable means the record store rejected a read or write.
	// No partial writes occur.
	ErrStorageUnavailable = errors.New("record storage unavailable")

	// ErrGenerationInFlight is returned when a duplicate submission of the
	// same prompt arrives before the previous one reached a terminal state.
	ErrGenerationInFlight = errors.New("generation already in flight")
)

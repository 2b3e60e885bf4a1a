package client

import "errors"

var (
	// ErrUnavailable wraps transport failures: the remote could not be reached.
	ErrUnavailable = errors.New("server unavailable")
	// ErrRejected means the remote answered but did not confirm success.
	ErrRejected     = errors.New("rejected by server")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotConfigured is returned when no base URL is set.
	ErrNotConfigured = errors.New("remote not configured")
)

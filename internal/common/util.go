package common

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a random UUID as 32 lowercase hex characters without dashes.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewDeviceCode returns a short generated device identifier, e.g. "dev-1a2b3c4d".
func NewDeviceCode() string {
	return "dev-" + NewID()[:8]
}

package utils

import "github.com/google/uuid"

// NewScanID returns a random identifier used to namespace one scan's
// temporary files and log lines.
func NewScanID() string {
	return uuid.NewString()
}

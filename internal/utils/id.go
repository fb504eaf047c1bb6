package utils

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NewID returns a unique identifier for messages, clients and channels.
func NewID() string {
	id, err := uuid.NewRandom()
	if err == nil {
		return id.String()
	}

	// Fallback to timestamp if entropy is unavailable.
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}

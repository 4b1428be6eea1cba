package core

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// NewID returns a time-ordered unique identifier: a UUIDv7 rendered as 32 lowercase hex characters.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return hex.EncodeToString(id[:])
}

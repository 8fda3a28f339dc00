package models

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewID builds a process-unique identifier from a type prefix, the creation
// timestamp, and a random suffix. Uniqueness is probabilistic; collisions are
// not checked.
func NewID(prefix string) string {
	u := uuid.New()
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().Unix(), hex.EncodeToString(u[:4]))
}

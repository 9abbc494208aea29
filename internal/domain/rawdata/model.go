package rawdata

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const SourceESPN = "espn"

// Payload is a raw provider response kept for audit and replay.
type Payload struct {
	Source          string
	EntityType      string
	EntityKey       string
	PayloadJSON     string
	PayloadHash     string
	SourceUpdatedAt *time.Time
}

// Hash returns the hex sha256 of the payload body.
func Hash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

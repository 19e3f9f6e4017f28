package models

import (
	"encoding/json"
	"time"
)

// CachedSnapshot is the last-known-good payload for one collection key.
// It is overwritten wholesale on every successful read, never merged; the
// caller decides whether CachedAt is recent enough to trust.
type CachedSnapshot struct {
	Key      string
	Payload  json.RawMessage
	CachedAt time.Time
}

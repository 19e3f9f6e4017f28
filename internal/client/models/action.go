package models

import (
	"encoding/json"
	"time"
)

// ActionKind discriminates queued mutations. Unknown kinds found at replay
// time are dead-lettered, never silently skipped.
type ActionKind string

const (
	ActionCreate ActionKind = "CREATE"
	ActionUpdate ActionKind = "UPDATE"
	ActionDelete ActionKind = "DELETE"
)

// Valid reports whether k is one of the three known kinds.
func (k ActionKind) Valid() bool {
	switch k {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// QueuedAction is one pending mutation in the outbox. Seq is assigned by the
// store and defines replay order; ID identifies the action across retries.
type QueuedAction struct {
	Seq        int64
	ID         string
	Kind       ActionKind
	Endpoint   string
	Method     string
	Payload    json.RawMessage
	EnqueuedAt time.Time
}

// DeadLetter is a queued action that was rejected by the backend and will
// not be retried. It is kept so the dropped work stays inspectable.
type DeadLetter struct {
	Seq        int64
	ActionID   string
	Kind       ActionKind
	Endpoint   string
	Method     string
	Payload    json.RawMessage
	Reason     string
	EnqueuedAt time.Time
	FailedAt   time.Time
}

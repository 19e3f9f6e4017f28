// Package outbox is the durable FIFO of mutations recorded while the
// backend was unreachable. Append is unconditional: there is no dedup and
// no validation, so enqueuing the same mutation twice replays it twice —
// that trade-off is the caller's to manage.
package outbox

import (
	"context"

	"github.com/roamsync/roamsync/internal/client/models"
)

// Repository persists queued actions in strict enqueue order.
type Repository interface {
	// Append stores the action at the tail of the queue and sets its Seq.
	Append(ctx context.Context, action *models.QueuedAction) error

	// All returns every queued action in enqueue order.
	All(ctx context.Context) ([]models.QueuedAction, error)

	// Remove deletes one action by its Seq after a successful replay.
	Remove(ctx context.Context, seq int64) error

	// DeadLetter moves the action out of the queue into the dead-letter
	// table with the given reason, atomically.
	DeadLetter(ctx context.Context, action *models.QueuedAction, reason string) error

	// DeadLetters returns dropped actions, oldest first.
	DeadLetters(ctx context.Context) ([]models.DeadLetter, error)

	// Len reports how many actions are waiting.
	Len(ctx context.Context) (int, error)
}

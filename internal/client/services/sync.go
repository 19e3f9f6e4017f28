package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roamsync/roamsync/internal/client/models"
	"github.com/roamsync/roamsync/internal/client/repositories/outbox"
	"github.com/roamsync/roamsync/internal/common"
	"github.com/roamsync/roamsync/internal/logging"
)

// Reachability gates drains. Satisfied by *probe.Probe.
type Reachability interface {
	IsReachable(ctx context.Context) bool
}

// DrainSummary reports what one drain pass accomplished. Remaining counts
// actions still queued after the pass, whether because the pass stopped
// early or because new actions arrived.
type DrainSummary struct {
	Synced    int
	Failed    int
	Remaining int
}

// SyncService owns the outbox: it records mutations made offline and replays
// them, in order, when the backend is back.
//
// Replay keeps the queue's causal order at all costs: a connectivity failure
// mid-drain stops the pass, leaving the failed action and everything behind
// it queued. Trips created offline keep their locally assigned uuid, so
// queued edits that reference them replay correctly once the create lands;
// the backend honours client-supplied ids on create.
type SyncService struct {
	transport Sender
	probe     Reachability
	outbox    outbox.Repository
	log       logging.Logger

	mu sync.Mutex
}

func NewSyncService(t Sender, p Reachability, o outbox.Repository, log logging.Logger) *SyncService {
	return &SyncService{transport: t, probe: p, outbox: o, log: log}
}

// Enqueue records a mutation for later replay. It never inspects the queue:
// duplicates and conflicting edits replay as-is.
func (s *SyncService) Enqueue(ctx context.Context, kind models.ActionKind, method, endpoint string, payload []byte) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown action kind %q", common.ErrorValidation, kind)
	}

	action := &models.QueuedAction{
		ID:         uuid.NewString(),
		Kind:       kind,
		Endpoint:   endpoint,
		Method:     method,
		Payload:    payload,
		EnqueuedAt: time.Now(),
	}
	if err := s.outbox.Append(ctx, action); err != nil {
		return err
	}

	s.log.Debug(ctx, "queued offline action", "kind", kind, "endpoint", endpoint)
	return nil
}

// Pending reports how many actions wait in the queue.
func (s *SyncService) Pending(ctx context.Context) (int, error) {
	return s.outbox.Len(ctx)
}

// DeadLetters returns actions the backend permanently rejected.
func (s *SyncService) DeadLetters(ctx context.Context) ([]models.DeadLetter, error) {
	return s.outbox.DeadLetters(ctx)
}

// Drain replays the queue front to back. At most one drain runs at a time;
// a second caller gets an empty summary instead of interleaved replays.
//
// Per action:
//   - success: removed from the queue;
//   - connectivity failure: the pass stops, nothing is dropped;
//   - 5xx: treated as transient, the pass stops;
//   - other 4xx: the backend has durably rejected the action, it moves to
//     the dead-letter table and the pass continues;
//   - expired session: the pass stops and the error surfaces so the UI can
//     send the user back to login.
func (s *SyncService) Drain(ctx context.Context) (*DrainSummary, error) {
	if !s.mu.TryLock() {
		return &DrainSummary{}, nil
	}
	defer s.mu.Unlock()

	summary := &DrainSummary{}

	if !s.probe.IsReachable(ctx) {
		remaining, err := s.outbox.Len(ctx)
		if err != nil {
			return nil, err
		}
		summary.Remaining = remaining
		return summary, nil
	}

	actions, err := s.outbox.All(ctx)
	if err != nil {
		return nil, err
	}

	var drainErr error
loop:
	for _, action := range actions {
		action := action
		if !action.Kind.Valid() {
			// Fail closed: an unknown kind from a newer schema must not be
			// guessed at, and must not block the queue either.
			if err := s.outbox.DeadLetter(ctx, &action, fmt.Sprintf("unknown action kind %q", action.Kind)); err != nil {
				return nil, err
			}
			summary.Failed++
			continue
		}

		resp, err := s.transport.Send(ctx, action.Method, action.Endpoint, action.Payload)
		switch {
		case err != nil:
			// ErrNetwork, ErrSessionExpired, ErrAuthRequired, cancellation:
			// all of them stop the pass with the queue intact.
			s.log.Info(ctx, "drain stopped", "err", err, "at", action.Endpoint)
			if !errors.Is(err, common.ErrNetwork) {
				drainErr = err
			}
			break loop

		case resp.OK():
			if err := s.outbox.Remove(ctx, action.Seq); err != nil {
				return nil, err
			}
			summary.Synced++

		case resp.StatusCode >= 500:
			s.log.Info(ctx, "drain stopped on server error", "status", resp.StatusCode, "at", action.Endpoint)
			break loop

		default:
			reason := fmt.Sprintf("%d: %s", resp.StatusCode, truncate(resp.Body, 200))
			if err := s.outbox.DeadLetter(ctx, &action, reason); err != nil {
				return nil, err
			}
			s.log.Warn(ctx, "action dead-lettered", "id", action.ID, "reason", reason)
			summary.Failed++
		}
	}

	remaining, err := s.outbox.Len(ctx)
	if err != nil {
		return nil, err
	}
	summary.Remaining = remaining

	s.log.Info(ctx, "drain finished",
		"synced", summary.Synced, "failed", summary.Failed, "remaining", summary.Remaining)
	return summary, drainErr
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

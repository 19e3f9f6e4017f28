package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roamsync/roamsync/internal/client/models"
	"github.com/roamsync/roamsync/internal/client/transport"
	"github.com/roamsync/roamsync/internal/common"
	"github.com/roamsync/roamsync/internal/logging"
)

type sentCall struct {
	Method string
	Path   string
	Body   []byte
}

type fakeSender struct {
	mu      sync.Mutex
	calls   []sentCall
	handler func(method, path string, payload []byte) (*transport.Response, error)
}

func (f *fakeSender) Send(_ context.Context, method, path string, payload []byte) (*transport.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, sentCall{Method: method, Path: path, Body: payload})
	f.mu.Unlock()
	return f.handler(method, path, payload)
}

func (f *fakeSender) sent() []sentCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentCall(nil), f.calls...)
}

func okSender() *fakeSender {
	return &fakeSender{handler: func(string, string, []byte) (*transport.Response, error) {
		return &transport.Response{StatusCode: http.StatusOK, Body: []byte(`{}`)}, nil
	}}
}

type fakeProbe struct{ reachable bool }

func (f *fakeProbe) IsReachable(context.Context) bool { return f.reachable }

// memOutbox is an in-memory stand-in for the sqlite outbox.
type memOutbox struct {
	mu      sync.Mutex
	nextSeq int64
	queue   []models.QueuedAction
	dead    []models.DeadLetter
}

func (o *memOutbox) Append(_ context.Context, a *models.QueuedAction) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.nextSeq++
	a.Seq = o.nextSeq
	o.queue = append(o.queue, *a)
	return nil
}

func (o *memOutbox) All(context.Context) ([]models.QueuedAction, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]models.QueuedAction(nil), o.queue...), nil
}

func (o *memOutbox) Remove(_ context.Context, seq int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, a := range o.queue {
		if a.Seq == seq {
			o.queue = append(o.queue[:i], o.queue[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (o *memOutbox) DeadLetter(ctx context.Context, a *models.QueuedAction, reason string) error {
	if err := o.Remove(ctx, a.Seq); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dead = append(o.dead, models.DeadLetter{
		ActionID: a.ID, Kind: a.Kind, Endpoint: a.Endpoint, Method: a.Method,
		Payload: a.Payload, Reason: reason, EnqueuedAt: a.EnqueuedAt, FailedAt: time.Now(),
	})
	return nil
}

func (o *memOutbox) DeadLetters(context.Context) ([]models.DeadLetter, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]models.DeadLetter(nil), o.dead...), nil
}

func (o *memOutbox) Len(context.Context) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue), nil
}

func (o *memOutbox) ids() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	ids := make([]string, len(o.queue))
	for i, a := range o.queue {
		ids[i] = a.ID
	}
	return ids
}

func seedQueue(t *testing.T, o *memOutbox, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, o.Append(context.Background(), &models.QueuedAction{
			ID: id, Kind: models.ActionCreate, Endpoint: "/trips", Method: http.MethodPost,
			Payload: []byte(fmt.Sprintf(`{"id":%q}`, id)), EnqueuedAt: time.Now(),
		}))
	}
}

func TestEnqueue_RejectsUnknownKind(t *testing.T) {
	s := NewSyncService(okSender(), &fakeProbe{reachable: true}, &memOutbox{}, logging.Discard())

	err := s.Enqueue(context.Background(), models.ActionKind("MERGE"), http.MethodPost, "/trips", nil)
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestDrain_Unreachable_NoOp(t *testing.T) {
	ob := &memOutbox{}
	seedQueue(t, ob, "a", "b")
	sender := okSender()
	s := NewSyncService(sender, &fakeProbe{reachable: false}, ob, logging.Discard())

	summary, err := s.Drain(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Synced)
	assert.Equal(t, 2, summary.Remaining)
	assert.Empty(t, sender.sent(), "unreachable backend must not be poked")
}

func TestDrain_AllSucceed(t *testing.T) {
	ob := &memOutbox{}
	seedQueue(t, ob, "a", "b", "c")
	s := NewSyncService(okSender(), &fakeProbe{reachable: true}, ob, logging.Discard())

	summary, err := s.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Synced)
	assert.Zero(t, summary.Remaining)
}

func TestDrain_NetworkFailureKeepsOrder(t *testing.T) {
	ob := &memOutbox{}
	seedQueue(t, ob, "a", "b", "c")

	// "a" succeeds, "b" hits a dead link.
	sender := &fakeSender{handler: func(_, _ string, payload []byte) (*transport.Response, error) {
		if string(payload) == `{"id":"b"}` {
			return nil, fmt.Errorf("%w: connection refused", common.ErrNetwork)
		}
		return &transport.Response{StatusCode: http.StatusOK}, nil
	}}
	s := NewSyncService(sender, &fakeProbe{reachable: true}, ob, logging.Discard())

	summary, err := s.Drain(context.Background())
	require.NoError(t, err, "connectivity failure is not a drain error")
	assert.Equal(t, 1, summary.Synced)
	assert.Equal(t, 2, summary.Remaining)
	assert.Equal(t, []string{"b", "c"}, ob.ids(), "failed action and everything behind it stay queued in order")
}

func TestDrain_RejectedActionDeadLettered(t *testing.T) {
	ob := &memOutbox{}
	seedQueue(t, ob, "a", "b", "c")

	sender := &fakeSender{handler: func(_, _ string, payload []byte) (*transport.Response, error) {
		if string(payload) == `{"id":"b"}` {
			return &transport.Response{StatusCode: http.StatusBadRequest, Body: []byte(`{"error":"title is required"}`)}, nil
		}
		return &transport.Response{StatusCode: http.StatusOK}, nil
	}}
	s := NewSyncService(sender, &fakeProbe{reachable: true}, ob, logging.Discard())

	summary, err := s.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Synced)
	assert.Equal(t, 1, summary.Failed)
	assert.Zero(t, summary.Remaining, "a durable rejection must not block the queue")

	letters, err := s.DeadLetters(context.Background())
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.Equal(t, "b", letters[0].ActionID)
	assert.Contains(t, letters[0].Reason, "400")
}

func TestDrain_ServerErrorStopsPass(t *testing.T) {
	ob := &memOutbox{}
	seedQueue(t, ob, "a", "b")

	sender := &fakeSender{handler: func(_, _ string, payload []byte) (*transport.Response, error) {
		if string(payload) == `{"id":"a"}` {
			return &transport.Response{StatusCode: http.StatusInternalServerError}, nil
		}
		return &transport.Response{StatusCode: http.StatusOK}, nil
	}}
	s := NewSyncService(sender, &fakeProbe{reachable: true}, ob, logging.Discard())

	summary, err := s.Drain(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Synced)
	assert.Equal(t, 2, summary.Remaining, "5xx is transient, nothing is dropped")
}

func TestDrain_SessionExpiredSurfaces(t *testing.T) {
	ob := &memOutbox{}
	seedQueue(t, ob, "a")

	sender := &fakeSender{handler: func(string, string, []byte) (*transport.Response, error) {
		return nil, common.ErrSessionExpired
	}}
	s := NewSyncService(sender, &fakeProbe{reachable: true}, ob, logging.Discard())

	summary, err := s.Drain(context.Background())
	assert.ErrorIs(t, err, common.ErrSessionExpired)
	assert.Equal(t, 1, summary.Remaining, "queue survives a forced logout")
}

func TestDrain_UnknownKindDeadLettered(t *testing.T) {
	ob := &memOutbox{}
	require.NoError(t, ob.Append(context.Background(), &models.QueuedAction{
		ID: "x", Kind: models.ActionKind("MERGE"), Endpoint: "/trips", Method: http.MethodPost,
		Payload: []byte(`{}`), EnqueuedAt: time.Now(),
	}))
	sender := okSender()
	s := NewSyncService(sender, &fakeProbe{reachable: true}, ob, logging.Discard())

	summary, err := s.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Empty(t, sender.sent(), "an action we cannot interpret is never sent")

	letters, err := s.DeadLetters(context.Background())
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.Contains(t, letters[0].Reason, "unknown action kind")
}

func TestDrain_SecondCallerGetsEmptySummary(t *testing.T) {
	ob := &memOutbox{}
	seedQueue(t, ob, "a")

	started := make(chan struct{})
	release := make(chan struct{})
	sender := &fakeSender{handler: func(string, string, []byte) (*transport.Response, error) {
		close(started)
		<-release
		return &transport.Response{StatusCode: http.StatusOK}, nil
	}}
	s := NewSyncService(sender, &fakeProbe{reachable: true}, ob, logging.Discard())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Drain(context.Background())
	}()

	<-started
	summary, err := s.Drain(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Synced)
	assert.Zero(t, summary.Remaining)

	close(release)
	<-done
	assert.Len(t, sender.sent(), 1, "only the first drain replays")
}

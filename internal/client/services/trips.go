package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/roamsync/roamsync/internal/client/models"
	"github.com/roamsync/roamsync/internal/client/repositories/readcache"
	"github.com/roamsync/roamsync/internal/common"
	"github.com/roamsync/roamsync/internal/logging"
)

const tripsCacheKey = "trips"

// TripService serves trip reads and writes in both connectivity states.
// Online, it talks to the backend and refreshes the read cache; offline,
// reads come from the cache and writes go to the outbox.
type TripService struct {
	transport Sender
	probe     Reachability
	sync      *SyncService
	cache     readcache.Repository
	log       logging.Logger
}

func NewTripService(t Sender, p Reachability, sync *SyncService, cache readcache.Repository, log logging.Logger) *TripService {
	return &TripService{transport: t, probe: p, sync: sync, cache: cache, log: log}
}

// List returns the trips, fresh when the backend answers and cached
// otherwise. The second return value reports whether the data came from the
// cache. With no connectivity and an empty cache it returns
// common.ErrNetwork.
func (s *TripService) List(ctx context.Context) ([]models.Trip, bool, error) {
	if s.probe.IsReachable(ctx) {
		trips, err := s.fetch(ctx)
		if err == nil {
			return trips, false, nil
		}
		if !errors.Is(err, common.ErrNetwork) {
			return nil, false, err
		}
		// Reachability raced the request; fall through to the cache.
	}

	snap, err := s.cache.Get(ctx, tripsCacheKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, false, fmt.Errorf("%w: offline and nothing cached", common.ErrNetwork)
		}
		return nil, false, err
	}

	var trips []models.Trip
	if err := json.Unmarshal(snap.Payload, &trips); err != nil {
		return nil, false, fmt.Errorf("corrupt trips cache: %w", err)
	}
	return trips, true, nil
}

func (s *TripService) fetch(ctx context.Context) ([]models.Trip, error) {
	resp, err := s.transport.Send(ctx, http.MethodGet, "/trips", nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("list trips failed: status %d", resp.StatusCode)
	}

	// The server wraps the collection: {"trips": [...]}. The cache stores the
	// bare array so offline reads decode the same way as online ones.
	var wire struct {
		Trips json.RawMessage `json:"trips"`
	}
	if err := json.Unmarshal(resp.Body, &wire); err != nil {
		return nil, fmt.Errorf("invalid trips response: %w", err)
	}
	if wire.Trips == nil {
		return nil, fmt.Errorf("invalid trips response: missing trips")
	}

	var trips []models.Trip
	if err := json.Unmarshal(wire.Trips, &trips); err != nil {
		return nil, fmt.Errorf("invalid trips response: %w", err)
	}

	// Last-known-good snapshot, replaced wholesale.
	if err := s.cache.Put(ctx, tripsCacheKey, wire.Trips); err != nil {
		s.log.Warn(ctx, "failed to cache trips", "err", err)
	}
	return trips, nil
}

// Create stores a new trip, immediately when online and via the outbox when
// not. The id is assigned here either way, so offline edits to a trip that
// does not exist server-side yet still target a stable id.
func (s *TripService) Create(ctx context.Context, trip *models.Trip) (*models.Trip, bool, error) {
	if trip.ID == "" {
		trip.ID = uuid.NewString()
	}
	payload, err := json.Marshal(trip)
	if err != nil {
		return nil, false, err
	}

	queued, err := s.write(ctx, models.ActionCreate, http.MethodPost, "/trips", payload)
	if err != nil {
		return nil, false, err
	}
	return trip, queued, nil
}

// Update edits an existing trip, queueing the full new state when offline.
func (s *TripService) Update(ctx context.Context, trip *models.Trip) (bool, error) {
	if trip.ID == "" {
		return false, fmt.Errorf("%w: trip id is required", common.ErrorValidation)
	}
	payload, err := json.Marshal(trip)
	if err != nil {
		return false, err
	}
	return s.write(ctx, models.ActionUpdate, http.MethodPut, "/trips/"+trip.ID, payload)
}

// Delete removes a trip, queueing the deletion when offline.
func (s *TripService) Delete(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("%w: trip id is required", common.ErrorValidation)
	}
	return s.write(ctx, models.ActionDelete, http.MethodDelete, "/trips/"+id, nil)
}

// write sends the mutation when the backend is reachable and enqueues it
// otherwise. The bool reports whether it was queued. A send that fails with
// a connectivity error is queued too; any other failure surfaces.
func (s *TripService) write(ctx context.Context, kind models.ActionKind, method, endpoint string, payload []byte) (bool, error) {
	if s.probe.IsReachable(ctx) {
		resp, err := s.transport.Send(ctx, method, endpoint, payload)
		switch {
		case err == nil && resp.OK():
			return false, nil
		case err == nil:
			return false, fmt.Errorf("%s %s failed: status %d: %s", method, endpoint, resp.StatusCode, truncate(resp.Body, 200))
		case !errors.Is(err, common.ErrNetwork):
			return false, err
		}
	}

	if err := s.sync.Enqueue(ctx, kind, method, endpoint, payload); err != nil {
		return false, err
	}
	return true, nil
}

package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roamsync/roamsync/internal/common"
	"github.com/roamsync/roamsync/internal/server/models"
)

// TripService keeps per-user trips in memory. It exists to give the client's
// outbox and cache a real surface to replay against; durable trip storage is
// a separate concern and lives behind the same interface when it arrives.
type TripService struct {
	mu     sync.Mutex
	byUser map[string][]*models.Trip
}

func NewTripService() *TripService {
	return &TripService{byUser: map[string][]*models.Trip{}}
}

func (s *TripService) List(ctx context.Context, userID string) []models.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Trip, 0, len(s.byUser[userID]))
	for _, t := range s.byUser[userID] {
		out = append(out, *t)
	}
	return out
}

// Create stores the trip. A client-supplied id (assigned while offline) is
// kept so queued follow-up edits can still address the resource.
func (s *TripService) Create(ctx context.Context, userID string, trip models.Trip) models.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()

	if trip.ID == "" {
		trip.ID = uuid.NewString()
	}
	now := time.Now()
	trip.CreatedAt = now
	trip.UpdatedAt = now

	s.byUser[userID] = append(s.byUser[userID], &trip)
	return trip
}

func (s *TripService) Update(ctx context.Context, userID, tripID string, in models.Trip) (models.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.byUser[userID] {
		if t.ID == tripID {
			in.ID = t.ID
			in.CreatedAt = t.CreatedAt
			in.UpdatedAt = time.Now()
			*t = in
			return *t, nil
		}
	}
	return models.Trip{}, common.ErrorNotFound
}

func (s *TripService) Delete(ctx context.Context, userID, tripID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trips := s.byUser[userID]
	for i, t := range trips {
		if t.ID == tripID {
			s.byUser[userID] = append(trips[:i], trips[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

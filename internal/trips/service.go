// Package trips orchestrates the trip lifecycle: starting trips, ending them
// and attaching the accumulated great-circle distance on close.
package trips

import (
	"context"
	"errors"
	"time"

	"github.com/ukydev/fleet-track/internal/geo"
	"github.com/ukydev/fleet-track/internal/models"
)

var (
	ErrTripNotFound     = errors.New("trip not found")
	ErrTripAlreadyEnded = errors.New("trip already ended")
	ErrInvalidRange     = errors.New("end time must not be before start time")
)

// PositionStore is the narrow position contract the lifecycle manager needs.
type PositionStore interface {
	FindPositionsByVehicleID(ctx context.Context, vehicleID string) ([]models.Position, error)
}

// TripStore is the narrow trip contract the lifecycle manager needs.
type TripStore interface {
	InsertTrip(ctx context.Context, trip models.Trip) (*models.Trip, error)
	FindTripByID(ctx context.Context, id string) (*models.Trip, error)
	FindActiveTripByVehicleID(ctx context.Context, vehicleID string) (*models.Trip, error)
	SetTripEndTime(ctx context.Context, id string, endTime time.Time) (*models.Trip, error)
	UpdateTrip(ctx context.Context, id string, trip models.Trip) (*models.Trip, error)
}

// Service manages the per-vehicle trip state machine. Stores are injected so
// the service can be exercised against fakes.
type Service struct {
	positions PositionStore
	trips     TripStore
	now       func() time.Time
}

// NewService creates a trip lifecycle service backed by the given stores.
func NewService(positions PositionStore, trips TripStore) *Service {
	return &Service{
		positions: positions,
		trips:     trips,
		now:       time.Now,
	}
}

// StartTrip creates a trip in the active state. If the vehicle already has an
// active trip and the input does not carry an explicit end time, the existing
// trip is returned unchanged; this makes duplicate start requests idempotent.
func (s *Service) StartTrip(ctx context.Context, input models.TripInput) (*models.Trip, error) {
	start := s.now()
	if input.StartTime != nil {
		start = *input.StartTime
	}
	if input.EndTime != nil && input.EndTime.Before(start) {
		return nil, ErrInvalidRange
	}

	active, err := s.trips.FindActiveTripByVehicleID(ctx, input.VehicleID)
	if err != nil {
		return nil, err
	}
	if active != nil && input.EndTime == nil {
		return active, nil
	}

	trip := models.Trip{
		VehicleID: input.VehicleID,
		DriverID:  input.DriverID,
		StartTime: start,
		EndTime:   input.EndTime,
		Distance:  0,
	}
	return s.trips.InsertTrip(ctx, trip)
}

// EndTrip closes a trip and back-fills its distance. The end time is persisted
// first, then all positions of the trip's vehicle are filtered to the trip's
// time window and accumulated. The two writes are not transactional: a crash
// in between leaves the trip closed with distance 0.
//
// Callers are responsible for rejecting a second EndTrip on an already-closed
// trip; this method overwrites end time and distance unconditionally.
func (s *Service) EndTrip(ctx context.Context, tripID string, endTime time.Time) (*models.Trip, error) {
	trip, err := s.trips.FindTripByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}
	if endTime.Before(trip.StartTime) {
		return nil, ErrInvalidRange
	}

	trip, err = s.trips.SetTripEndTime(ctx, tripID, endTime)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}

	positions, err := s.positions.FindPositionsByVehicleID(ctx, trip.VehicleID)
	if err != nil {
		return nil, err
	}

	trip.Distance = geo.AccumulateKm(s.withinWindow(trip, positions))

	updated, err := s.trips.UpdateTrip(ctx, tripID, *trip)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// Lost a race with a delete.
		return nil, ErrTripNotFound
	}
	return updated, nil
}

// withinWindow selects the positions whose timestamp falls inside the trip's
// window, bounds inclusive. The persisted end time is used when present; an
// active trip is bounded by the wall clock instead.
func (s *Service) withinWindow(trip *models.Trip, positions []models.Position) []models.Position {
	end := s.now()
	if trip.EndTime != nil {
		end = *trip.EndTime
	}

	selected := make([]models.Position, 0, len(positions))
	for _, p := range positions {
		t := time.Unix(0, 0).UTC()
		if p.Timestamp != nil {
			t = *p.Timestamp
		}
		if t.Before(trip.StartTime) || t.After(end) {
			continue
		}
		selected = append(selected, p)
	}
	return selected
}

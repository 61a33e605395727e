package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Position represents a single GPS sample reported for a vehicle.
// Positions are append-only; they are never updated in place.
type Position struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID string             `bson:"vehicle_id" json:"vehicle_id"`
	Latitude  float64            `bson:"latitude" json:"latitude"`
	Longitude float64            `bson:"longitude" json:"longitude"`
	Speed     *float64           `bson:"speed,omitempty" json:"speed,omitempty"`       // km/h
	Ignition  *bool              `bson:"ignition,omitempty" json:"ignition,omitempty"`
	Timestamp *time.Time         `bson:"timestamp,omitempty" json:"timestamp,omitempty"`
}

// PositionInput is the payload accepted when a device or client reports a location.
type PositionInput struct {
	VehicleID string     `json:"vehicle_id"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Speed     *float64   `json:"speed,omitempty"`
	Ignition  *bool      `json:"ignition,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

var (
	ErrLatitudeOutOfRange  = errors.New("latitude must be between -90 and 90")
	ErrLongitudeOutOfRange = errors.New("longitude must be between -180 and 180")
	ErrNegativeSpeed       = errors.New("speed must not be negative")
	ErrMissingVehicleID    = errors.New("vehicle_id is required")
)

// Validate checks the input against the coordinate and speed ranges.
func (p *PositionInput) Validate() error {
	if p.VehicleID == "" {
		return ErrMissingVehicleID
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return ErrLatitudeOutOfRange
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return ErrLongitudeOutOfRange
	}
	if p.Speed != nil && *p.Speed < 0 {
		return ErrNegativeSpeed
	}
	return nil
}

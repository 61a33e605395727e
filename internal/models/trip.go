package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trip represents a bounded interval of vehicle use by a driver.
// A nil EndTime means the trip is still active.
type Trip struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID string             `bson:"vehicle_id" json:"vehicle_id"`
	DriverID  string             `bson:"driver_id" json:"driver_id"`
	StartTime time.Time          `bson:"start_time" json:"start_time"`
	EndTime   *time.Time         `bson:"end_time,omitempty" json:"end_time,omitempty"`
	Distance  float64            `bson:"distance" json:"distance"` // in kilometers, authoritative once the trip has ended
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// Active reports whether the trip has not been ended yet.
func (t *Trip) Active() bool {
	return t.EndTime == nil
}

// TripInput is the payload accepted when creating a trip.
type TripInput struct {
	VehicleID string     `json:"vehicle_id"`
	DriverID  string     `json:"driver_id"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

// EndTripRequest is the payload accepted when ending a trip.
type EndTripRequest struct {
	EndTime *time.Time `json:"end_time,omitempty"`
}

// TripDetails is a trip joined with vehicle and driver display fields.
type TripDetails struct {
	Trip            `bson:",inline"`
	LicensePlate    string `bson:"license_plate,omitempty" json:"license_plate,omitempty"`
	DriverFirstName string `bson:"driver_first_name,omitempty" json:"driver_first_name,omitempty"`
	DriverLastName  string `bson:"driver_last_name,omitempty" json:"driver_last_name,omitempty"`
}

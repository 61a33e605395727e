package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// Vehicle represents a fleet vehicle owned by a customer.
type Vehicle struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LicensePlate string             `bson:"license_plate" json:"license_plate"`
	CustomerID   string             `bson:"customer_id" json:"customer_id"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// VehicleInput is the payload accepted when creating or updating a vehicle.
type VehicleInput struct {
	LicensePlate string `json:"license_plate"`
}

package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// Driver represents a driver employed by a customer. A driver may be
// assigned to one of the customer's vehicles.
type Driver struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName  string             `bson:"first_name" json:"first_name"`
	LastName   string             `bson:"last_name" json:"last_name"`
	CustomerID string             `bson:"customer_id" json:"customer_id"`
	VehicleID  *string            `bson:"vehicle_id,omitempty" json:"vehicle_id,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

// DriverInput is the payload accepted when creating or updating a driver.
type DriverInput struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	VehicleID *string `json:"vehicle_id,omitempty"`
}

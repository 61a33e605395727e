package db

import (
	"context"
	"time"

	"github.com/ukydev/fleet-track/internal/models"
)

// CustomerCollection defines the interface for customer data operations.
type CustomerCollection interface {
	InsertCustomer(ctx context.Context, customer models.Customer) (*models.Customer, error)
	FindCustomerByID(ctx context.Context, id string) (*models.Customer, error)
	FindCustomerByEmail(ctx context.Context, email string) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, id string, customer models.Customer) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
}

// DriverCollection defines the interface for driver data operations.
type DriverCollection interface {
	InsertDriver(ctx context.Context, driver models.Driver) (*models.Driver, error)
	FindDriverByID(ctx context.Context, id string) (*models.Driver, error)
	FindDriversByCustomerID(ctx context.Context, customerID string) ([]models.Driver, error)
	UpdateDriver(ctx context.Context, id string, driver models.Driver) (*models.Driver, error)
	DeleteDriver(ctx context.Context, id string) error
}

// VehicleCollection defines the interface for vehicle data operations.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) (*models.Vehicle, error)
	FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
	FindVehiclesByCustomerID(ctx context.Context, customerID string) ([]models.Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) (*models.Vehicle, error)
	DeleteVehicle(ctx context.Context, id string) error
}

// PositionCollection defines the interface for the append-only position store.
type PositionCollection interface {
	InsertPosition(ctx context.Context, input models.PositionInput) (*models.Position, error)
	FindPositionsByVehicleID(ctx context.Context, vehicleID string) ([]models.Position, error)
	FindRecentPositionsByVehicleID(ctx context.Context, vehicleID string, limit int64) ([]models.Position, error)
	DeletePositionsByVehicleID(ctx context.Context, vehicleID string) error
}

// TripCollection defines the interface for trip data operations. Lookups
// signal a missing trip by returning a nil trip and a nil error.
type TripCollection interface {
	InsertTrip(ctx context.Context, trip models.Trip) (*models.Trip, error)
	FindTripByID(ctx context.Context, id string) (*models.Trip, error)
	FindActiveTripByVehicleID(ctx context.Context, vehicleID string) (*models.Trip, error)
	FindTripsByVehicleID(ctx context.Context, vehicleID string) ([]models.Trip, error)
	SetTripEndTime(ctx context.Context, id string, endTime time.Time) (*models.Trip, error)
	UpdateTrip(ctx context.Context, id string, trip models.Trip) (*models.Trip, error)
	DeleteTrip(ctx context.Context, id string) error
	DeleteTripsByVehicleID(ctx context.Context, vehicleID string) error
}

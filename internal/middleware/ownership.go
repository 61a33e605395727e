package middleware

import (
	"context"
	"net/http"

	"github.com/ukydev/fleet-track/internal/db"
)

// OwnershipMiddleware guards entity routes so a customer can only reach
// vehicles, drivers and trips it owns. Trips and positions resolve their
// owner transitively through the vehicle they reference.
type OwnershipMiddleware struct {
	vehicles db.VehicleCollection
	drivers  db.DriverCollection
	trips    db.TripCollection
}

// NewOwnershipMiddleware creates ownership-check middleware backed by the
// given stores.
func NewOwnershipMiddleware(vehicles db.VehicleCollection, drivers db.DriverCollection, trips db.TripCollection) *OwnershipMiddleware {
	return &OwnershipMiddleware{
		vehicles: vehicles,
		drivers:  drivers,
		trips:    trips,
	}
}

// VehicleBelongsToCustomer reports whether the vehicle exists and is owned by
// the customer.
func (m *OwnershipMiddleware) VehicleBelongsToCustomer(ctx context.Context, vehicleID, customerID string) (bool, error) {
	vehicle, err := m.vehicles.FindVehicleByID(ctx, vehicleID)
	if err != nil {
		return false, err
	}
	return vehicle != nil && vehicle.CustomerID == customerID, nil
}

// DriverBelongsToCustomer reports whether the driver exists and is employed
// by the customer.
func (m *OwnershipMiddleware) DriverBelongsToCustomer(ctx context.Context, driverID, customerID string) (bool, error) {
	driver, err := m.drivers.FindDriverByID(ctx, driverID)
	if err != nil {
		return false, err
	}
	return driver != nil && driver.CustomerID == customerID, nil
}

// TripBelongsToCustomer reports whether the trip exists and its vehicle is
// owned by the customer.
func (m *OwnershipMiddleware) TripBelongsToCustomer(ctx context.Context, tripID, customerID string) (bool, error) {
	trip, err := m.trips.FindTripByID(ctx, tripID)
	if err != nil {
		return false, err
	}
	if trip == nil {
		return false, nil
	}
	return m.VehicleBelongsToCustomer(ctx, trip.VehicleID, customerID)
}

// RequireVehicle wraps a handler with a vehicle ownership check on the path
// wildcard named id.
func (m *OwnershipMiddleware) RequireVehicle(next http.HandlerFunc) http.HandlerFunc {
	return m.require(next, func(ctx context.Context, id, customerID string) (bool, error) {
		return m.VehicleBelongsToCustomer(ctx, id, customerID)
	})
}

// RequireDriver wraps a handler with a driver ownership check on the path
// wildcard named id.
func (m *OwnershipMiddleware) RequireDriver(next http.HandlerFunc) http.HandlerFunc {
	return m.require(next, func(ctx context.Context, id, customerID string) (bool, error) {
		return m.DriverBelongsToCustomer(ctx, id, customerID)
	})
}

// RequireTrip wraps a handler with a trip ownership check on the path
// wildcard named id.
func (m *OwnershipMiddleware) RequireTrip(next http.HandlerFunc) http.HandlerFunc {
	return m.require(next, func(ctx context.Context, id, customerID string) (bool, error) {
		return m.TripBelongsToCustomer(ctx, id, customerID)
	})
}

func (m *OwnershipMiddleware) require(next http.HandlerFunc, belongs func(ctx context.Context, id, customerID string) (bool, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetCustomerFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		id := r.PathValue("id")
		if id == "" {
			http.Error(w, "Missing id", http.StatusBadRequest)
			return
		}

		hasAccess, err := belongs(r.Context(), id, claims.CustomerID)
		if err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if !hasAccess {
			http.Error(w, "Access denied", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	}
}

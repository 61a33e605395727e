package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-track/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeVehicleCollection struct {
	vehicles map[string]*models.Vehicle
}

func (f *fakeVehicleCollection) InsertVehicle(ctx context.Context, v models.Vehicle) (*models.Vehicle, error) {
	return &v, nil
}

func (f *fakeVehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	return f.vehicles[id], nil
}

func (f *fakeVehicleCollection) FindVehiclesByCustomerID(ctx context.Context, customerID string) ([]models.Vehicle, error) {
	return nil, nil
}

func (f *fakeVehicleCollection) UpdateVehicle(ctx context.Context, id string, v models.Vehicle) (*models.Vehicle, error) {
	return nil, nil
}

func (f *fakeVehicleCollection) DeleteVehicle(ctx context.Context, id string) error { return nil }

type fakeTripCollection struct {
	trips map[string]*models.Trip
}

func (f *fakeTripCollection) InsertTrip(ctx context.Context, t models.Trip) (*models.Trip, error) {
	return &t, nil
}

func (f *fakeTripCollection) FindTripByID(ctx context.Context, id string) (*models.Trip, error) {
	return f.trips[id], nil
}

func (f *fakeTripCollection) FindActiveTripByVehicleID(ctx context.Context, vehicleID string) (*models.Trip, error) {
	return nil, nil
}

func (f *fakeTripCollection) FindTripsByVehicleID(ctx context.Context, vehicleID string) ([]models.Trip, error) {
	return nil, nil
}

func (f *fakeTripCollection) SetTripEndTime(ctx context.Context, id string, endTime time.Time) (*models.Trip, error) {
	return nil, nil
}

func (f *fakeTripCollection) UpdateTrip(ctx context.Context, id string, t models.Trip) (*models.Trip, error) {
	return nil, nil
}

func (f *fakeTripCollection) DeleteTrip(ctx context.Context, id string) error { return nil }

func (f *fakeTripCollection) DeleteTripsByVehicleID(ctx context.Context, vehicleID string) error {
	return nil
}

func TestVehicleBelongsToCustomer(t *testing.T) {
	vehicleID := primitive.NewObjectID()
	vehicles := &fakeVehicleCollection{vehicles: map[string]*models.Vehicle{
		vehicleID.Hex(): {ID: vehicleID, CustomerID: "cust-1", LicensePlate: "AB-123-CD"},
	}}
	m := NewOwnershipMiddleware(vehicles, nil, nil)

	ok, err := m.VehicleBelongsToCustomer(context.Background(), vehicleID.Hex(), "cust-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.VehicleBelongsToCustomer(context.Background(), vehicleID.Hex(), "cust-2")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = m.VehicleBelongsToCustomer(context.Background(), primitive.NewObjectID().Hex(), "cust-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTripBelongsToCustomer_ResolvesThroughVehicle(t *testing.T) {
	vehicleID := primitive.NewObjectID()
	tripID := primitive.NewObjectID()

	vehicles := &fakeVehicleCollection{vehicles: map[string]*models.Vehicle{
		vehicleID.Hex(): {ID: vehicleID, CustomerID: "cust-1"},
	}}
	trips := &fakeTripCollection{trips: map[string]*models.Trip{
		tripID.Hex(): {ID: tripID, VehicleID: vehicleID.Hex(), DriverID: "drv-1"},
	}}
	m := NewOwnershipMiddleware(vehicles, nil, trips)

	ok, err := m.TripBelongsToCustomer(context.Background(), tripID.Hex(), "cust-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.TripBelongsToCustomer(context.Background(), tripID.Hex(), "cust-2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRequireVehicle_DeniesForeignVehicle(t *testing.T) {
	vehicleID := primitive.NewObjectID()
	vehicles := &fakeVehicleCollection{vehicles: map[string]*models.Vehicle{
		vehicleID.Hex(): {ID: vehicleID, CustomerID: "cust-1"},
	}}
	m := NewOwnershipMiddleware(vehicles, nil, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/vehicles/{id}", m.RequireVehicle(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/vehicles/"+vehicleID.Hex(), nil)
	ctx := context.WithValue(req.Context(), CustomerContextKey, &models.Claims{CustomerID: "cust-2"})
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req.WithContext(ctx))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireVehicle_AllowsOwner(t *testing.T) {
	vehicleID := primitive.NewObjectID()
	vehicles := &fakeVehicleCollection{vehicles: map[string]*models.Vehicle{
		vehicleID.Hex(): {ID: vehicleID, CustomerID: "cust-1"},
	}}
	m := NewOwnershipMiddleware(vehicles, nil, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/vehicles/{id}", m.RequireVehicle(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/vehicles/"+vehicleID.Hex(), nil)
	ctx := context.WithValue(req.Context(), CustomerContextKey, &models.Claims{CustomerID: "cust-1"})
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req.WithContext(ctx))

	assert.Equal(t, http.StatusOK, w.Code)
}

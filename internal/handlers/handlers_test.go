package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ukydev/fleet-track/internal/middleware"
	"github.com/ukydev/fleet-track/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory fakes for the db collection interfaces, shared by the handler
// tests in this package.

type memCustomerCollection struct {
	customers map[string]*models.Customer
}

func newMemCustomerCollection() *memCustomerCollection {
	return &memCustomerCollection{customers: map[string]*models.Customer{}}
}

func (m *memCustomerCollection) InsertCustomer(ctx context.Context, c models.Customer) (*models.Customer, error) {
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.customers[c.ID.Hex()] = &c
	return &c, nil
}

func (m *memCustomerCollection) FindCustomerByID(ctx context.Context, id string) (*models.Customer, error) {
	return m.customers[id], nil
}

func (m *memCustomerCollection) FindCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	for _, c := range m.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

func (m *memCustomerCollection) UpdateCustomer(ctx context.Context, id string, c models.Customer) (*models.Customer, error) {
	existing, ok := m.customers[id]
	if !ok {
		return nil, nil
	}
	c.ID = existing.ID
	m.customers[id] = &c
	return &c, nil
}

func (m *memCustomerCollection) DeleteCustomer(ctx context.Context, id string) error {
	delete(m.customers, id)
	return nil
}

type memVehicleCollection struct {
	vehicles map[string]*models.Vehicle
}

func newMemVehicleCollection() *memVehicleCollection {
	return &memVehicleCollection{vehicles: map[string]*models.Vehicle{}}
}

func (m *memVehicleCollection) InsertVehicle(ctx context.Context, v models.Vehicle) (*models.Vehicle, error) {
	v.ID = primitive.NewObjectID()
	v.CreatedAt = time.Now()
	v.UpdatedAt = v.CreatedAt
	m.vehicles[v.ID.Hex()] = &v
	return &v, nil
}

func (m *memVehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	return m.vehicles[id], nil
}

func (m *memVehicleCollection) FindVehiclesByCustomerID(ctx context.Context, customerID string) ([]models.Vehicle, error) {
	var out []models.Vehicle
	for _, v := range m.vehicles {
		if v.CustomerID == customerID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (m *memVehicleCollection) UpdateVehicle(ctx context.Context, id string, v models.Vehicle) (*models.Vehicle, error) {
	existing, ok := m.vehicles[id]
	if !ok {
		return nil, nil
	}
	existing.LicensePlate = v.LicensePlate
	existing.UpdatedAt = time.Now()
	return existing, nil
}

func (m *memVehicleCollection) DeleteVehicle(ctx context.Context, id string) error {
	delete(m.vehicles, id)
	return nil
}

type memDriverCollection struct {
	drivers map[string]*models.Driver
}

func newMemDriverCollection() *memDriverCollection {
	return &memDriverCollection{drivers: map[string]*models.Driver{}}
}

func (m *memDriverCollection) InsertDriver(ctx context.Context, d models.Driver) (*models.Driver, error) {
	d.ID = primitive.NewObjectID()
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	m.drivers[d.ID.Hex()] = &d
	return &d, nil
}

func (m *memDriverCollection) FindDriverByID(ctx context.Context, id string) (*models.Driver, error) {
	return m.drivers[id], nil
}

func (m *memDriverCollection) FindDriversByCustomerID(ctx context.Context, customerID string) ([]models.Driver, error) {
	var out []models.Driver
	for _, d := range m.drivers {
		if d.CustomerID == customerID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memDriverCollection) UpdateDriver(ctx context.Context, id string, d models.Driver) (*models.Driver, error) {
	existing, ok := m.drivers[id]
	if !ok {
		return nil, nil
	}
	existing.FirstName = d.FirstName
	existing.LastName = d.LastName
	existing.VehicleID = d.VehicleID
	existing.UpdatedAt = time.Now()
	return existing, nil
}

func (m *memDriverCollection) DeleteDriver(ctx context.Context, id string) error {
	delete(m.drivers, id)
	return nil
}

type memPositionCollection struct {
	positions []models.Position
	deleted   []string
}

func newMemPositionCollection() *memPositionCollection {
	return &memPositionCollection{}
}

func (m *memPositionCollection) InsertPosition(ctx context.Context, input models.PositionInput) (*models.Position, error) {
	ts := input.Timestamp
	if ts == nil {
		now := time.Now()
		ts = &now
	}
	p := models.Position{
		ID:        primitive.NewObjectID(),
		VehicleID: input.VehicleID,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Speed:     input.Speed,
		Ignition:  input.Ignition,
		Timestamp: ts,
	}
	m.positions = append(m.positions, p)
	return &p, nil
}

func (m *memPositionCollection) FindPositionsByVehicleID(ctx context.Context, vehicleID string) ([]models.Position, error) {
	var out []models.Position
	for _, p := range m.positions {
		if p.VehicleID == vehicleID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPositionCollection) FindRecentPositionsByVehicleID(ctx context.Context, vehicleID string, limit int64) ([]models.Position, error) {
	all, _ := m.FindPositionsByVehicleID(ctx, vehicleID)
	if int64(len(all)) > limit {
		all = all[int64(len(all))-limit:]
	}
	return all, nil
}

func (m *memPositionCollection) DeletePositionsByVehicleID(ctx context.Context, vehicleID string) error {
	m.deleted = append(m.deleted, vehicleID)
	var kept []models.Position
	for _, p := range m.positions {
		if p.VehicleID != vehicleID {
			kept = append(kept, p)
		}
	}
	m.positions = kept
	return nil
}

type memTripCollection struct {
	trips map[string]*models.Trip
}

func newMemTripCollection() *memTripCollection {
	return &memTripCollection{trips: map[string]*models.Trip{}}
}

func (m *memTripCollection) InsertTrip(ctx context.Context, t models.Trip) (*models.Trip, error) {
	t.ID = primitive.NewObjectID()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	m.trips[t.ID.Hex()] = &t
	return &t, nil
}

func (m *memTripCollection) FindTripByID(ctx context.Context, id string) (*models.Trip, error) {
	return m.trips[id], nil
}

func (m *memTripCollection) FindActiveTripByVehicleID(ctx context.Context, vehicleID string) (*models.Trip, error) {
	for _, t := range m.trips {
		if t.VehicleID == vehicleID && t.Active() {
			return t, nil
		}
	}
	return nil, nil
}

func (m *memTripCollection) FindTripsByVehicleID(ctx context.Context, vehicleID string) ([]models.Trip, error) {
	var out []models.Trip
	for _, t := range m.trips {
		if t.VehicleID == vehicleID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memTripCollection) SetTripEndTime(ctx context.Context, id string, endTime time.Time) (*models.Trip, error) {
	t, ok := m.trips[id]
	if !ok {
		return nil, nil
	}
	end := endTime
	t.EndTime = &end
	t.UpdatedAt = time.Now()
	copied := *t
	return &copied, nil
}

func (m *memTripCollection) UpdateTrip(ctx context.Context, id string, trip models.Trip) (*models.Trip, error) {
	t, ok := m.trips[id]
	if !ok {
		return nil, nil
	}
	trip.ID = t.ID
	trip.UpdatedAt = time.Now()
	m.trips[id] = &trip
	copied := trip
	return &copied, nil
}

func (m *memTripCollection) DeleteTrip(ctx context.Context, id string) error {
	delete(m.trips, id)
	return nil
}

func (m *memTripCollection) DeleteTripsByVehicleID(ctx context.Context, vehicleID string) error {
	for id, t := range m.trips {
		if t.VehicleID == vehicleID {
			delete(m.trips, id)
		}
	}
	return nil
}

// withClaims attaches authenticated-customer claims to a request, the way the
// auth middleware would.
func withClaims(r *http.Request, customerID string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.CustomerContextKey, &models.Claims{CustomerID: customerID})
	return r.WithContext(ctx)
}

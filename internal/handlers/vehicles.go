package handlers

import (
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-track/internal/db"
	"github.com/ukydev/fleet-track/internal/middleware"
	"github.com/ukydev/fleet-track/internal/models"
)

// VehicleHandler handles vehicle CRUD requests.
type VehicleHandler struct {
	vehicles  db.VehicleCollection
	positions db.PositionCollection
	trips     db.TripCollection
}

// NewVehicleHandler creates a new vehicle handler.
func NewVehicleHandler(vehicles db.VehicleCollection, positions db.PositionCollection, trips db.TripCollection) *VehicleHandler {
	return &VehicleHandler{
		vehicles:  vehicles,
		positions: positions,
		trips:     trips,
	}
}

// List returns the vehicles owned by the authenticated customer.
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetCustomerFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vehicles, err := h.vehicles.FindVehiclesByCustomerID(r.Context(), claims.CustomerID)
	if err != nil {
		log.WithError(err).Error("failed to list vehicles")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}
	writeJSON(w, http.StatusOK, vehicles)
}

// Create adds a vehicle for the authenticated customer.
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetCustomerFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input models.VehicleInput
	if err := decodeJSON(r, &input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if input.LicensePlate == "" {
		http.Error(w, "License plate is required", http.StatusBadRequest)
		return
	}

	vehicle, err := h.vehicles.InsertVehicle(r.Context(), models.Vehicle{
		LicensePlate: input.LicensePlate,
		CustomerID:   claims.CustomerID,
	})
	if err != nil {
		log.WithError(err).Error("failed to create vehicle")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, vehicle)
}

// Get returns one vehicle. Ownership has already been checked.
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), r.PathValue("id"))
	if err != nil {
		log.WithError(err).Error("failed to fetch vehicle")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if vehicle == nil {
		http.Error(w, "Vehicle not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

// Update modifies a vehicle. Ownership has already been checked.
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input models.VehicleInput
	if err := decodeJSON(r, &input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if input.LicensePlate == "" {
		http.Error(w, "License plate is required", http.StatusBadRequest)
		return
	}

	vehicle, err := h.vehicles.UpdateVehicle(r.Context(), r.PathValue("id"), models.Vehicle{
		LicensePlate: input.LicensePlate,
	})
	if err != nil {
		log.WithError(err).Error("failed to update vehicle")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if vehicle == nil {
		http.Error(w, "Vehicle not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

// Delete removes a vehicle together with its positions and trips. Ownership
// has already been checked.
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.vehicles.DeleteVehicle(r.Context(), id); err != nil {
		log.WithError(err).Error("failed to delete vehicle")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Cascade. Positions and trips are only reachable through their vehicle.
	if err := h.positions.DeletePositionsByVehicleID(r.Context(), id); err != nil {
		log.WithError(err).WithField("vehicle_id", id).Error("failed to cascade position delete")
	}
	if err := h.trips.DeleteTripsByVehicleID(r.Context(), id); err != nil {
		log.WithError(err).WithField("vehicle_id", id).Error("failed to cascade trip delete")
	}

	w.WriteHeader(http.StatusNoContent)
}

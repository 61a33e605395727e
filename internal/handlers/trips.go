package handlers

import (
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-track/internal/db"
	"github.com/ukydev/fleet-track/internal/events"
	"github.com/ukydev/fleet-track/internal/middleware"
	"github.com/ukydev/fleet-track/internal/models"
	"github.com/ukydev/fleet-track/internal/trips"
)

// TripMetrics is the subset of the collector the trip handler reports to.
type TripMetrics interface {
	TripStartedInc()
	TripEndedInc()
}

// TripHandler handles trip requests. Lifecycle transitions go through the
// trips.Service; plain reads go straight to the store.
type TripHandler struct {
	service   *trips.Service
	store     db.TripCollection
	vehicles  db.VehicleCollection
	ownership *middleware.OwnershipMiddleware
	events    events.Publisher
	metrics   TripMetrics
}

// NewTripHandler creates a new trip handler.
func NewTripHandler(service *trips.Service, store db.TripCollection, vehicles db.VehicleCollection, ownership *middleware.OwnershipMiddleware, publisher events.Publisher, metrics TripMetrics) *TripHandler {
	return &TripHandler{
		service:   service,
		store:     store,
		vehicles:  vehicles,
		ownership: ownership,
		events:    publisher,
		metrics:   metrics,
	}
}

// List returns all trips across the customer's vehicles, newest first per
// vehicle.
func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
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

	all := []models.Trip{}
	for _, v := range vehicles {
		vehicleTrips, err := h.store.FindTripsByVehicleID(r.Context(), v.ID.Hex())
		if err != nil {
			log.WithError(err).Error("failed to list trips")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		all = append(all, vehicleTrips...)
	}
	writeJSON(w, http.StatusOK, all)
}

// Get returns one trip. Ownership has already been checked.
func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	trip, err := h.store.FindTripByID(r.Context(), r.PathValue("id"))
	if err != nil {
		log.WithError(err).Error("failed to fetch trip")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if trip == nil {
		http.Error(w, "Trip not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// ListByVehicle returns the trips of one vehicle. Ownership has already been
// checked.
func (h *TripHandler) ListByVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleTrips, err := h.store.FindTripsByVehicleID(r.Context(), r.PathValue("id"))
	if err != nil {
		log.WithError(err).Error("failed to list trips")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if vehicleTrips == nil {
		vehicleTrips = []models.Trip{}
	}
	writeJSON(w, http.StatusOK, vehicleTrips)
}

// Start creates a trip. Duplicate start requests for a vehicle with an
// active trip return the existing trip.
func (h *TripHandler) Start(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetCustomerFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input models.TripInput
	if err := decodeJSON(r, &input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if input.VehicleID == "" || input.DriverID == "" {
		http.Error(w, "vehicle_id and driver_id are required", http.StatusBadRequest)
		return
	}

	hasAccess, err := h.ownership.VehicleBelongsToCustomer(r.Context(), input.VehicleID, claims.CustomerID)
	if err != nil {
		log.WithError(err).Error("failed to check vehicle ownership")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !hasAccess {
		http.Error(w, "Access denied - vehicle does not belong to customer", http.StatusForbidden)
		return
	}

	hasAccess, err = h.ownership.DriverBelongsToCustomer(r.Context(), input.DriverID, claims.CustomerID)
	if err != nil {
		log.WithError(err).Error("failed to check driver ownership")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !hasAccess {
		http.Error(w, "Access denied - driver does not belong to customer", http.StatusForbidden)
		return
	}

	trip, err := h.service.StartTrip(r.Context(), input)
	if err != nil {
		if errors.Is(err, trips.ErrInvalidRange) {
			http.Error(w, "end_time must not be before start_time", http.StatusBadRequest)
			return
		}
		log.WithError(err).Error("failed to start trip")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if h.metrics != nil {
		h.metrics.TripStartedInc()
	}
	h.events.TripStarted(trip)

	writeJSON(w, http.StatusCreated, trip)
}

// End closes a trip and back-fills its distance. A trip that has already
// been ended is rejected here; the lifecycle service would otherwise
// recompute and overwrite the stored distance.
func (h *TripHandler) End(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	trip, err := h.store.FindTripByID(r.Context(), id)
	if err != nil {
		log.WithError(err).Error("failed to fetch trip")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if trip == nil {
		http.Error(w, "Trip not found", http.StatusNotFound)
		return
	}
	if !trip.Active() {
		http.Error(w, "Trip already ended", http.StatusConflict)
		return
	}

	var req models.EndTripRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	endTime := time.Now()
	if req.EndTime != nil {
		endTime = *req.EndTime
	}

	ended, err := h.service.EndTrip(r.Context(), id, endTime)
	if err != nil {
		switch {
		case errors.Is(err, trips.ErrTripNotFound):
			http.Error(w, "Trip not found", http.StatusNotFound)
		case errors.Is(err, trips.ErrInvalidRange):
			http.Error(w, "end_time must not be before start_time", http.StatusBadRequest)
		default:
			log.WithError(err).Error("failed to end trip")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	if h.metrics != nil {
		h.metrics.TripEndedInc()
	}
	h.events.TripEnded(ended)

	log.WithFields(log.Fields{
		"trip_id":     ended.ID.Hex(),
		"vehicle_id":  ended.VehicleID,
		"distance_km": ended.Distance,
	}).Info("trip ended")

	writeJSON(w, http.StatusOK, ended)
}

// Delete removes a trip. Ownership has already been checked.
func (h *TripHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTrip(r.Context(), r.PathValue("id")); err != nil {
		log.WithError(err).Error("failed to delete trip")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

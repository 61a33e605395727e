package handlers

import (
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-track/internal/db"
	"github.com/ukydev/fleet-track/internal/events"
	"github.com/ukydev/fleet-track/internal/middleware"
	"github.com/ukydev/fleet-track/internal/models"
)

// IngestMetrics is the subset of the collector the position handler reports to.
type IngestMetrics interface {
	PositionIngested(source string)
}

// PositionHandler handles position ingestion and listing over HTTP.
type PositionHandler struct {
	positions db.PositionCollection
	ownership *middleware.OwnershipMiddleware
	events    events.Publisher
	metrics   IngestMetrics
}

// NewPositionHandler creates a new position handler.
func NewPositionHandler(positions db.PositionCollection, ownership *middleware.OwnershipMiddleware, publisher events.Publisher, metrics IngestMetrics) *PositionHandler {
	return &PositionHandler{
		positions: positions,
		ownership: ownership,
		events:    publisher,
		metrics:   metrics,
	}
}

// Create appends a position sample for one of the customer's vehicles.
func (h *PositionHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetCustomerFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input models.PositionInput
	if err := decodeJSON(r, &input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if err := input.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
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

	position, err := h.positions.InsertPosition(r.Context(), input)
	if err != nil {
		log.WithError(err).Error("failed to store position")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if h.metrics != nil {
		h.metrics.PositionIngested("http")
	}
	h.events.PositionStored(position)

	writeJSON(w, http.StatusCreated, position)
}

// ListByVehicle returns recent positions for a vehicle, newest first.
// Ownership has already been checked.
func (h *PositionHandler) ListByVehicle(w http.ResponseWriter, r *http.Request) {
	limit := int64(100)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 || n > 1000 {
			http.Error(w, "Invalid limit parameter. Must be between 1 and 1000.", http.StatusBadRequest)
			return
		}
		limit = n
	}

	positions, err := h.positions.FindRecentPositionsByVehicleID(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		log.WithError(err).Error("failed to list positions")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if positions == nil {
		positions = []models.Position{}
	}
	writeJSON(w, http.StatusOK, positions)
}

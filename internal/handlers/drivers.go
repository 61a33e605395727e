package handlers

import (
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-track/internal/db"
	"github.com/ukydev/fleet-track/internal/middleware"
	"github.com/ukydev/fleet-track/internal/models"
)

// DriverHandler handles driver CRUD requests.
type DriverHandler struct {
	drivers   db.DriverCollection
	ownership *middleware.OwnershipMiddleware
}

// NewDriverHandler creates a new driver handler.
func NewDriverHandler(drivers db.DriverCollection, ownership *middleware.OwnershipMiddleware) *DriverHandler {
	return &DriverHandler{
		drivers:   drivers,
		ownership: ownership,
	}
}

// List returns the drivers employed by the authenticated customer.
func (h *DriverHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetCustomerFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	drivers, err := h.drivers.FindDriversByCustomerID(r.Context(), claims.CustomerID)
	if err != nil {
		log.WithError(err).Error("failed to list drivers")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if drivers == nil {
		drivers = []models.Driver{}
	}
	writeJSON(w, http.StatusOK, drivers)
}

// Create adds a driver for the authenticated customer. An assigned vehicle
// must belong to the same customer.
func (h *DriverHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetCustomerFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input models.DriverInput
	if err := decodeJSON(r, &input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if input.FirstName == "" || input.LastName == "" {
		http.Error(w, "First and last name are required", http.StatusBadRequest)
		return
	}

	if input.VehicleID != nil {
		hasAccess, err := h.ownership.VehicleBelongsToCustomer(r.Context(), *input.VehicleID, claims.CustomerID)
		if err != nil {
			log.WithError(err).Error("failed to check vehicle ownership")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if !hasAccess {
			http.Error(w, "Access denied - vehicle does not belong to customer", http.StatusForbidden)
			return
		}
	}

	driver, err := h.drivers.InsertDriver(r.Context(), models.Driver{
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		CustomerID: claims.CustomerID,
		VehicleID:  input.VehicleID,
	})
	if err != nil {
		log.WithError(err).Error("failed to create driver")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, driver)
}

// Get returns one driver. Ownership has already been checked.
func (h *DriverHandler) Get(w http.ResponseWriter, r *http.Request) {
	driver, err := h.drivers.FindDriverByID(r.Context(), r.PathValue("id"))
	if err != nil {
		log.WithError(err).Error("failed to fetch driver")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if driver == nil {
		http.Error(w, "Driver not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, driver)
}

// Update modifies a driver. Ownership has already been checked.
func (h *DriverHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetCustomerFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input models.DriverInput
	if err := decodeJSON(r, &input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if input.FirstName == "" || input.LastName == "" {
		http.Error(w, "First and last name are required", http.StatusBadRequest)
		return
	}

	if input.VehicleID != nil {
		hasAccess, err := h.ownership.VehicleBelongsToCustomer(r.Context(), *input.VehicleID, claims.CustomerID)
		if err != nil {
			log.WithError(err).Error("failed to check vehicle ownership")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if !hasAccess {
			http.Error(w, "Access denied - vehicle does not belong to customer", http.StatusForbidden)
			return
		}
	}

	driver, err := h.drivers.UpdateDriver(r.Context(), r.PathValue("id"), models.Driver{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		VehicleID: input.VehicleID,
	})
	if err != nil {
		log.WithError(err).Error("failed to update driver")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if driver == nil {
		http.Error(w, "Driver not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, driver)
}

// Delete removes a driver. Ownership has already been checked.
func (h *DriverHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.drivers.DeleteDriver(r.Context(), r.PathValue("id")); err != nil {
		log.WithError(err).Error("failed to delete driver")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-track/internal/auth"
	"github.com/ukydev/fleet-track/internal/db"
	"github.com/ukydev/fleet-track/internal/middleware"
	"github.com/ukydev/fleet-track/internal/models"
)

// AuthHandler handles customer registration and authentication.
type AuthHandler struct {
	authService *auth.Service
	customers   db.CustomerCollection
}

// NewAuthHandler creates a new authentication handler.
func NewAuthHandler(authService *auth.Service, customers db.CustomerCollection) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		customers:   customers,
	}
}

// Register handles customer signup.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}
	if err := h.authService.ValidateEmail(req.Email); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	existing, err := h.customers.FindCustomerByEmail(r.Context(), req.Email)
	if err != nil {
		log.WithError(err).Error("failed to check existing customer")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		http.Error(w, "Email already registered", http.StatusConflict)
		return
	}

	customer := models.Customer{Name: req.Name, Email: req.Email}
	if req.Password != "" {
		if err := h.authService.ValidatePassword(req.Password); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		hash, err := h.authService.HashPassword(req.Password)
		if err != nil {
			log.WithError(err).Error("failed to hash password")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		customer.PasswordHash = hash
	}

	created, err := h.customers.InsertCustomer(r.Context(), customer)
	if err != nil {
		log.WithError(err).Error("failed to create customer")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// Authenticate issues an API token for a customer identified by ID or email.
// Accounts with a password require it; legacy accounts without one do not.
func (h *AuthHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req models.AuthRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.CustomerID == "" && req.Email == "" {
		http.Error(w, "Customer ID or email is required", http.StatusBadRequest)
		return
	}

	var customer *models.Customer
	var err error
	if req.CustomerID != "" {
		customer, err = h.customers.FindCustomerByID(r.Context(), req.CustomerID)
	} else {
		customer, err = h.customers.FindCustomerByEmail(r.Context(), req.Email)
	}
	if err != nil {
		log.WithError(err).Error("failed to look up customer")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if customer == nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if customer.PasswordHash != "" && !h.authService.CheckPassword(req.Password, customer.PasswordHash) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.authService.GenerateToken(customer)
	if err != nil {
		log.WithError(err).Error("failed to generate token")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResponse{
		Token:      token,
		CustomerID: customer.ID.Hex(),
		Customer:   *customer,
	})
}

// Me returns the authenticated customer's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetCustomerFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	customer, err := h.customers.FindCustomerByID(r.Context(), claims.CustomerID)
	if err != nil {
		log.WithError(err).Error("failed to look up customer")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if customer == nil {
		http.Error(w, "Customer not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, customer)
}

// UpdateMe modifies the authenticated customer's name and email.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetCustomerFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}
	if err := h.authService.ValidateEmail(req.Email); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	existing, err := h.customers.FindCustomerByEmail(r.Context(), req.Email)
	if err != nil {
		log.WithError(err).Error("failed to check existing customer")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if existing != nil && existing.ID.Hex() != claims.CustomerID {
		http.Error(w, "Email already registered", http.StatusConflict)
		return
	}

	updated, err := h.customers.UpdateCustomer(r.Context(), claims.CustomerID, models.Customer{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		log.WithError(err).Error("failed to update customer")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if updated == nil {
		http.Error(w, "Customer not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DeleteMe removes the authenticated customer's account. Owned vehicles,
// drivers, positions and trips are left in place; they become unreachable
// without a token for the customer.
func (h *AuthHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetCustomerFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.customers.DeleteCustomer(r.Context(), claims.CustomerID); err != nil {
		log.WithError(err).Error("failed to delete customer")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

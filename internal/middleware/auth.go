package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ukydev/fleet-track/internal/auth"
	"github.com/ukydev/fleet-track/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	CustomerContextKey contextKey = "customer"
)

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authService *auth.Service
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Authenticate validates JWT tokens and adds the customer to the request
// context. Ownership of the individual vehicle/driver/trip is checked
// separately by OwnershipMiddleware.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shouldSkipAuth(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		claims, err := m.authService.ValidateToken(authHeader)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), CustomerContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCustomerFromContext extracts the authenticated customer's claims from a
// request context.
func GetCustomerFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(CustomerContextKey).(*models.Claims)
	return claims, ok
}

// shouldSkipAuth determines if authentication should be skipped for a given path
func shouldSkipAuth(path string) bool {
	skipPaths := []string{
		"/api/auth",
		"/api/customers/register",
		"/health",
		"/metrics",
	}
	for _, skipPath := range skipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	return false
}

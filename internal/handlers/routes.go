package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/ukydev/fleet-track/internal/middleware"
)

// RequestObserver records per-route request durations. Routes are labelled by
// their registered pattern, not the raw URL, to keep label cardinality flat.
type RequestObserver interface {
	ObserveRequest(method, path string, seconds float64)
}

// Router wires the handlers onto method-qualified ServeMux patterns.
type Router struct {
	Auth      *AuthHandler
	Vehicles  *VehicleHandler
	Drivers   *DriverHandler
	Positions *PositionHandler
	Trips     *TripHandler
	Ownership *middleware.OwnershipMiddleware
	Observer  RequestObserver
}

// Mux builds the route table.
func (rt *Router) Mux() *http.ServeMux {
	mux := http.NewServeMux()

	rt.handle(mux, "GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	rt.handle(mux, "POST /api/customers/register", rt.Auth.Register)
	rt.handle(mux, "POST /api/auth", rt.Auth.Authenticate)
	rt.handle(mux, "GET /api/customers/me", rt.Auth.Me)
	rt.handle(mux, "PUT /api/customers/me", rt.Auth.UpdateMe)
	rt.handle(mux, "DELETE /api/customers/me", rt.Auth.DeleteMe)

	rt.handle(mux, "GET /api/vehicles", rt.Vehicles.List)
	rt.handle(mux, "POST /api/vehicles", rt.Vehicles.Create)
	rt.handle(mux, "GET /api/vehicles/{id}", rt.Ownership.RequireVehicle(rt.Vehicles.Get))
	rt.handle(mux, "PUT /api/vehicles/{id}", rt.Ownership.RequireVehicle(rt.Vehicles.Update))
	rt.handle(mux, "DELETE /api/vehicles/{id}", rt.Ownership.RequireVehicle(rt.Vehicles.Delete))
	rt.handle(mux, "GET /api/vehicles/{id}/positions", rt.Ownership.RequireVehicle(rt.Positions.ListByVehicle))
	rt.handle(mux, "GET /api/vehicles/{id}/trips", rt.Ownership.RequireVehicle(rt.Trips.ListByVehicle))

	rt.handle(mux, "GET /api/drivers", rt.Drivers.List)
	rt.handle(mux, "POST /api/drivers", rt.Drivers.Create)
	rt.handle(mux, "GET /api/drivers/{id}", rt.Ownership.RequireDriver(rt.Drivers.Get))
	rt.handle(mux, "PUT /api/drivers/{id}", rt.Ownership.RequireDriver(rt.Drivers.Update))
	rt.handle(mux, "DELETE /api/drivers/{id}", rt.Ownership.RequireDriver(rt.Drivers.Delete))

	rt.handle(mux, "POST /api/positions", rt.Positions.Create)

	rt.handle(mux, "GET /api/trips", rt.Trips.List)
	rt.handle(mux, "POST /api/trips", rt.Trips.Start)
	rt.handle(mux, "GET /api/trips/{id}", rt.Ownership.RequireTrip(rt.Trips.Get))
	rt.handle(mux, "POST /api/trips/{id}/end", rt.Ownership.RequireTrip(rt.Trips.End))
	rt.handle(mux, "DELETE /api/trips/{id}", rt.Ownership.RequireTrip(rt.Trips.Delete))

	return mux
}

func (rt *Router) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	if rt.Observer == nil {
		mux.HandleFunc(pattern, h)
		return
	}

	method, path, _ := strings.Cut(pattern, " ")
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h(w, r)
		rt.Observer.ObserveRequest(method, path, time.Since(start).Seconds())
	})
}

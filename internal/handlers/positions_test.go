package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-track/internal/models"
)

func TestCreatePosition_StoresSample(t *testing.T) {
	env := newTestEnv(t)
	vehicle := env.seedVehicle(t, "cust-1")

	speed := 42.5
	w := env.do(t, http.MethodPost, "/api/positions", "cust-1", models.PositionInput{
		VehicleID: vehicle.ID.Hex(),
		Latitude:  48.137,
		Longitude: 11.575,
		Speed:     &speed,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var stored models.Position
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	assert.Equal(t, vehicle.ID.Hex(), stored.VehicleID)
	assert.NotNil(t, stored.Timestamp)
	require.NotNil(t, stored.Speed)
	assert.Equal(t, speed, *stored.Speed)
}

func TestCreatePosition_RejectsOutOfRangeCoordinates(t *testing.T) {
	env := newTestEnv(t)
	vehicle := env.seedVehicle(t, "cust-1")

	for _, input := range []models.PositionInput{
		{VehicleID: vehicle.ID.Hex(), Latitude: 91, Longitude: 0},
		{VehicleID: vehicle.ID.Hex(), Latitude: 0, Longitude: -181},
		{Latitude: 0, Longitude: 0},
	} {
		w := env.do(t, http.MethodPost, "/api/positions", "cust-1", input)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
	assert.Empty(t, env.positions.positions)
}

func TestCreatePosition_ForeignVehicleForbidden(t *testing.T) {
	env := newTestEnv(t)
	vehicle := env.seedVehicle(t, "cust-1")

	w := env.do(t, http.MethodPost, "/api/positions", "cust-2", models.PositionInput{
		VehicleID: vehicle.ID.Hex(),
		Latitude:  48.137,
		Longitude: 11.575,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, env.positions.positions)
}

func TestListPositions_LimitValidation(t *testing.T) {
	env := newTestEnv(t)
	vehicle := env.seedVehicle(t, "cust-1")
	base := fmt.Sprintf("/api/vehicles/%s/positions", vehicle.ID.Hex())

	for _, limit := range []string{"0", "1001", "abc"} {
		w := env.do(t, http.MethodGet, base+"?limit="+limit, "cust-1", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "limit=%s", limit)
	}

	w := env.do(t, http.MethodGet, base+"?limit=10", "cust-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListPositions_ReturnsStoredSamples(t *testing.T) {
	env := newTestEnv(t)
	vehicle := env.seedVehicle(t, "cust-1")
	vehicleID := vehicle.ID.Hex()

	now := time.Now()
	for i := 0; i < 3; i++ {
		ts := now.Add(time.Duration(i) * time.Minute)
		w := env.do(t, http.MethodPost, "/api/positions", "cust-1", models.PositionInput{
			VehicleID: vehicleID,
			Latitude:  float64(i),
			Longitude: 0,
			Timestamp: &ts,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := env.do(t, http.MethodGet, fmt.Sprintf("/api/vehicles/%s/positions", vehicleID), "cust-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listed []models.Position
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Len(t, listed, 3)
}

func TestListPositions_EmptyVehicleReturnsEmptyList(t *testing.T) {
	env := newTestEnv(t)
	vehicle := env.seedVehicle(t, "cust-1")

	w := env.do(t, http.MethodGet, fmt.Sprintf("/api/vehicles/%s/positions", vehicle.ID.Hex()), "cust-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

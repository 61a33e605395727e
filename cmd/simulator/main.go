package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// Location represents a geographical location with latitude and longitude coordinates.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PositionReport is the payload posted to /api/positions.
type PositionReport struct {
	VehicleID string    `json:"vehicle_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     float64   `json:"speed"`
	Ignition  bool      `json:"ignition"`
	Timestamp time.Time `json:"timestamp"`
}

// Cities for realistic routes
var cities = []Location{
	{Lat: 51.5074, Lon: -0.1278},  // London
	{Lat: 40.7128, Lon: -74.0060}, // New York
	{Lat: 40.4168, Lon: -3.7038},  // Madrid
	{Lat: 35.1856, Lon: 33.3823},  // Nicosia
	{Lat: 48.8566, Lon: 2.3522},   // Paris
	{Lat: 41.0082, Lon: 28.9784},  // Istanbul
	{Lat: 51.4816, Lon: -3.1791},  // Cardiff
	{Lat: 52.5200, Lon: 13.4050},  // Berlin
	{Lat: 43.6532, Lon: -79.3832}, // Toronto
	{Lat: 19.0760, Lon: 72.8777},  // Mumbai
}

func jitterLocation(base Location, meters float64) Location {
	latMetersPerDeg := 111320.0
	lonMetersPerDeg := 111320.0 * math.Cos(base.Lat*math.Pi/180)
	dLat := (rand.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLon := (rand.Float64()*2 - 1) * (meters / lonMetersPerDeg)
	return Location{Lat: base.Lat + dLat, Lon: base.Lon + dLon}
}

func randomLocation() Location {
	base := cities[rand.Intn(len(cities))]
	return jitterLocation(base, 500) // start close to roads
}

var authToken string

func authorizedPost(url string, body *bytes.Buffer) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func postJSON(url string, payload interface{}, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	resp, err := authorizedPost(url, bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%s returned status %d", url, resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// bootstrapAccount registers a throwaway customer and authenticates as it.
// With SIM_AUTH_TOKEN set the existing token is used instead.
func bootstrapAccount(apiURL string) error {
	if token := os.Getenv("SIM_AUTH_TOKEN"); token != "" {
		authToken = token
		return nil
	}

	email := fmt.Sprintf("sim-%d@fleet-track.local", time.Now().UnixNano())
	var customer struct {
		ID string `json:"id"`
	}
	if err := postJSON(apiURL+"/customers/register", map[string]string{
		"name":  "Simulated Fleet",
		"email": email,
	}, &customer); err != nil {
		return fmt.Errorf("failed to register customer: %w", err)
	}

	var auth struct {
		Token string `json:"token"`
	}
	if err := postJSON(apiURL+"/auth", map[string]string{"customer_id": customer.ID}, &auth); err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}
	authToken = auth.Token

	log.WithField("customer_id", customer.ID).Info("Registered simulation customer")
	return nil
}

func createVehicle(apiURL string) (string, error) {
	plate := fmt.Sprintf("SIM-%03d-%c%c", rand.Intn(1000), 'A'+rand.Intn(26), 'A'+rand.Intn(26))
	var created struct {
		ID string `json:"id"`
	}
	if err := postJSON(apiURL+"/vehicles", map[string]string{"license_plate": plate}, &created); err != nil {
		return "", fmt.Errorf("failed to create vehicle: %w", err)
	}
	log.WithFields(log.Fields{"vehicle_id": created.ID, "license_plate": plate}).Info("Created vehicle")
	return created.ID, nil
}

func createDriver(apiURL, vehicleID string) (string, error) {
	firstNames := []string{"Ada", "Grace", "Alan", "Edsger", "Barbara", "Donald"}
	lastNames := []string{"Lovelace", "Hopper", "Turing", "Dijkstra", "Liskov", "Knuth"}
	var created struct {
		ID string `json:"id"`
	}
	if err := postJSON(apiURL+"/drivers", map[string]string{
		"first_name": firstNames[rand.Intn(len(firstNames))],
		"last_name":  lastNames[rand.Intn(len(lastNames))],
		"vehicle_id": vehicleID,
	}, &created); err != nil {
		return "", fmt.Errorf("failed to create driver: %w", err)
	}
	return created.ID, nil
}

// --- Routing & movement ---

type VehicleRoute struct {
	Points    []Location
	SegIndex  int
	SegOffset float64 // km along current segment
}

type VehicleState struct {
	VehicleID string
	DriverID  string
	TripID    string
	TripStart time.Time
	Position  Location
	SpeedKmh  float64
	Route     *VehicleRoute
}

func haversineKm(a, b Location) float64 {
	R := 6371.0
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	s := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))
	return R * c
}

func lerp(a, b Location, t float64) Location {
	return Location{Lat: a.Lat + (b.Lat-a.Lat)*t, Lon: a.Lon + (b.Lon-a.Lon)*t}
}

func fetchOSRMRoute(start, end Location) ([]Location, error) {
	url := fmt.Sprintf("https://router.project-osrm.org/route/v1/driving/%.6f,%.6f;%.6f,%.6f?overview=full&geometries=geojson", start.Lon, start.Lat, end.Lon, end.Lat)
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("osrm status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var obj struct {
		Routes []struct {
			Geometry struct {
				Coordinates [][]float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"routes"`
	}
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, err
	}
	if len(obj.Routes) == 0 || len(obj.Routes[0].Geometry.Coordinates) < 2 {
		return nil, fmt.Errorf("no route")
	}
	coords := obj.Routes[0].Geometry.Coordinates
	pts := make([]Location, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		pts = append(pts, Location{Lat: c[1], Lon: c[0]})
	}
	return pts, nil
}

func planNewRoute(s *VehicleState) {
	start := s.Position
	// pick far city
	var end Location
	for i := 0; i < 10; i++ {
		cand := cities[rand.Intn(len(cities))]
		if haversineKm(start, cand) > 50 {
			end = jitterLocation(cand, 500)
			break
		}
	}
	pts, err := fetchOSRMRoute(start, end)
	if err != nil {
		// fallback small jitter loop
		s.Route = &VehicleRoute{Points: []Location{start, jitterLocation(start, 2000)}, SegIndex: 0, SegOffset: 0}
		return
	}
	s.Route = &VehicleRoute{Points: pts, SegIndex: 0, SegOffset: 0}
}

func stepAlongRoute(s *VehicleState, tickSec float64) {
	if s.Route == nil || len(s.Route.Points) < 2 {
		planNewRoute(s)
	}
	remKm := s.SpeedKmh * (tickSec / 3600.0)
	for remKm > 0 && s.Route.SegIndex < len(s.Route.Points)-1 {
		a := s.Route.Points[s.Route.SegIndex]
		b := s.Route.Points[s.Route.SegIndex+1]
		segLen := haversineKm(a, b)
		leftOnSeg := segLen - s.Route.SegOffset
		if remKm >= leftOnSeg {
			// advance to next segment
			s.Position = b
			s.Route.SegIndex++
			s.Route.SegOffset = 0
			remKm -= leftOnSeg
			continue
		}
		// stay on current segment
		t := (s.Route.SegOffset + remKm) / segLen
		if t < 0 {
			t = 0
		}
		if t > 1 {
			t = 1
		}
		s.Position = lerp(a, b, t)
		s.Route.SegOffset += remKm
		remKm = 0
	}
	// if reached end, plan new
	if s.Route.SegIndex >= len(s.Route.Points)-1 {
		planNewRoute(s)
	}
}

func startTrip(apiURL string, s *VehicleState) {
	var trip struct {
		ID string `json:"id"`
	}
	if err := postJSON(apiURL+"/trips", map[string]string{
		"vehicle_id": s.VehicleID,
		"driver_id":  s.DriverID,
	}, &trip); err != nil {
		log.WithError(err).WithField("vehicle_id", s.VehicleID).Error("Failed to start trip")
		return
	}
	s.TripID = trip.ID
	s.TripStart = time.Now()
	log.WithFields(log.Fields{"trip_id": trip.ID, "vehicle_id": s.VehicleID}).Info("Started trip")
}

func endTrip(apiURL string, s *VehicleState) {
	if s.TripID == "" {
		return
	}
	var trip struct {
		ID       string  `json:"id"`
		Distance float64 `json:"distance"`
	}
	if err := postJSON(fmt.Sprintf("%s/trips/%s/end", apiURL, s.TripID), map[string]string{}, &trip); err != nil {
		log.WithError(err).WithField("trip_id", s.TripID).Error("Failed to end trip")
		return
	}
	log.WithFields(log.Fields{
		"trip_id":     trip.ID,
		"vehicle_id":  s.VehicleID,
		"distance_km": trip.Distance,
	}).Info("Ended trip")
	s.TripID = ""
}

func sendPosition(apiURL string, s *VehicleState) {
	report := PositionReport{
		VehicleID: s.VehicleID,
		Latitude:  s.Position.Lat,
		Longitude: s.Position.Lon,
		Speed:     s.SpeedKmh,
		Ignition:  true,
		Timestamp: time.Now(),
	}
	if err := postJSON(apiURL+"/positions", report, nil); err != nil {
		log.WithError(err).WithField("vehicle_id", s.VehicleID).Error("Failed to send position")
		return
	}
	log.WithFields(log.Fields{
		"vehicle_id": s.VehicleID,
		"lat":        fmt.Sprintf("%.5f", report.Latitude),
		"lon":        fmt.Sprintf("%.5f", report.Longitude),
	}).Debug("Sent position")
}

func simulateVehicle(apiURL string, s *VehicleState, interval, tripLength time.Duration) {
	if s.Route == nil {
		planNewRoute(s)
	}
	startTrip(apiURL, s)

	tick := time.NewTicker(interval)
	defer tick.Stop()
	for range tick.C {
		// small speed noise
		s.SpeedKmh += (rand.Float64()*2 - 1) * 1.5
		if s.SpeedKmh < 15 {
			s.SpeedKmh = 15
		}
		if s.SpeedKmh > 90 {
			s.SpeedKmh = 90
		}

		stepAlongRoute(s, interval.Seconds())
		sendPosition(apiURL, s)

		if s.TripID != "" && time.Since(s.TripStart) >= tripLength {
			endTrip(apiURL, s)
			startTrip(apiURL, s)
		}
	}
}

func main() {
	fleetSize := 10
	if val := os.Getenv("FLEET_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			fleetSize = n
		}
	}

	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}

	interval := 2 * time.Second
	if v := os.Getenv("SIM_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			interval = time.Duration(n) * time.Second
		}
	}

	tripLength := 5 * time.Minute
	if v := os.Getenv("SIM_TRIP_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			tripLength = time.Duration(n) * time.Minute
		}
	}

	log.WithFields(log.Fields{
		"fleet_size":  fleetSize,
		"api_url":     apiURL,
		"interval":    interval,
		"trip_length": tripLength,
	}).Info("Starting fleet simulation")

	if err := bootstrapAccount(apiURL); err != nil {
		log.WithError(err).Error("Failed to bootstrap account. Ensure the API is reachable. Exiting.")
		return
	}

	// Create vehicles, drivers and states
	states := make([]*VehicleState, 0, fleetSize)
	for i := 0; i < fleetSize; i++ {
		vehicleID, err := createVehicle(apiURL)
		if err != nil {
			log.WithError(err).Error("Failed to create vehicle")
			continue
		}
		driverID, err := createDriver(apiURL, vehicleID)
		if err != nil {
			log.WithError(err).Error("Failed to create driver")
			continue
		}
		state := &VehicleState{
			VehicleID: vehicleID,
			DriverID:  driverID,
			Position:  randomLocation(),
			SpeedKmh:  30 + rand.Float64()*30,
		}
		states = append(states, state)
	}

	log.WithField("created_vehicles", len(states)).Info("Vehicle creation completed")
	if len(states) == 0 {
		log.Error("No vehicles created. Exiting.")
		return
	}

	for _, s := range states {
		go simulateVehicle(apiURL, s, interval, tripLength)
	}

	log.Info("Position simulation started")
	select {} // Block forever
}

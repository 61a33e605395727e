// Package geo computes great-circle distances over GPS position samples.
package geo

import (
	"math"
	"sort"
	"time"

	"github.com/ukydev/fleet-track/internal/models"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance in kilometers between two
// coordinates given in degrees. It performs no range validation; callers are
// expected to have validated the coordinates on ingestion.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// AccumulateKm sums the haversine distance between consecutive position
// samples in timestamp order. The input is re-sorted by timestamp ascending
// before accumulating, so callers need not order it. Samples without a
// timestamp sort as the epoch, i.e. before everything else. Fewer than two
// samples yield zero.
func AccumulateKm(positions []models.Position) float64 {
	if len(positions) < 2 {
		return 0
	}

	sorted := make([]models.Position, len(positions))
	copy(sorted, positions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sampleTime(sorted[i]).Before(sampleTime(sorted[j]))
	})

	var total float64
	for i := 1; i < len(sorted); i++ {
		prev, curr := sorted[i-1], sorted[i]
		total += HaversineKm(prev.Latitude, prev.Longitude, curr.Latitude, curr.Longitude)
	}
	return total
}

func sampleTime(p models.Position) time.Time {
	if p.Timestamp == nil {
		return time.Unix(0, 0).UTC()
	}
	return *p.Timestamp
}

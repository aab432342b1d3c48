package domain

import (
	"context"
	"log/slog"
	"math"
)

// earthRadiusKm is the mean Earth radius (IUGG).
const earthRadiusKm = 6371.0088

// Place is the populated place a geocoding provider reports near a position.
type Place struct {
	Name    string // "Malartic"
	Address string // "Malartic, Quebec, Canada"
	// Center is the provider's reference point for the place. Zero when the
	// provider returned none.
	Center    CoordinatePair
	Relevance float64 // 0.0–1.0 provider score
}

// Found reports whether the provider matched a place.
func (p Place) Found() bool { return p.Address != "" }

// Geocoder looks up the place nearest a normalized coordinate pair.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (Place, error)
}

// EnrichWithGeocoding attaches the place found at the record's coordinates
// and its distance from them. Placeholder coordinates are never looked up.
// A nil geocoder leaves the record unchanged; a failed lookup sets GeoSource
// to "failed" and keeps the record.
func EnrichWithGeocoding(ctx context.Context, record MineRecord, geocoder Geocoder, logger *slog.Logger) MineRecord {
	if geocoder == nil || record.Location == nil {
		return record
	}
	loc := *record.Location

	if loc.Placeholders() > 0 {
		record.GeoSource = "skipped"
		return record
	}

	place, err := geocoder.ReverseGeocode(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"record_id", record.ID,
			"lat", loc.Latitude,
			"lon", loc.Longitude,
			"error", err,
		)
		record.GeoSource = "failed"
		return record
	}
	if !place.Found() {
		record.GeoSource = "original"
		return record
	}

	record.FormattedAddress = place.Address
	record.PlaceName = place.Name
	record.GeoConfidence = place.Relevance
	record.GeoSource = "reverse"
	if place.Center != (CoordinatePair{}) {
		record.GeoDistanceKm = math.Round(DistanceKm(loc, place.Center)*100) / 100
	}
	return record
}

// DistanceKm is the great-circle distance between two positions.
func DistanceKm(a, b CoordinatePair) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

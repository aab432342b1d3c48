package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- mock geocoder ---

type mockGeocoder struct {
	reverseResult Place
	reverseErr    error
	reverseCalls  int
}

func (m *mockGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (Place, error) {
	m.reverseCalls++
	return m.reverseResult, m.reverseErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- tests ---

func TestEnrichWithGeocoding_NilGeocoder(t *testing.T) {
	record := MineRecord{ID: testRecordID, Location: &CoordinatePair{Latitude: 48.1, Longitude: -77.8}}

	result := EnrichWithGeocoding(context.Background(), record, nil, discardLogger())

	assert.Empty(t, result.GeoSource)
	assert.Empty(t, result.FormattedAddress)
}

func TestEnrichWithGeocoding_NoLocation(t *testing.T) {
	geo := &mockGeocoder{}
	result := EnrichWithGeocoding(context.Background(), MineRecord{ID: testRecordID}, geo, discardLogger())

	assert.Empty(t, result.GeoSource)
	assert.Equal(t, 0, geo.reverseCalls)
}

func TestEnrichWithGeocoding_Reverse(t *testing.T) {
	geo := &mockGeocoder{
		reverseResult: Place{
			Name:      "Val-d'Or",
			Address:   "Val-d'Or, Quebec, Canada",
			Relevance: 0.9,
		},
	}
	record := MineRecord{ID: testRecordID, Location: &CoordinatePair{Latitude: 48.1, Longitude: -77.8}}

	result := EnrichWithGeocoding(context.Background(), record, geo, discardLogger())

	assert.Equal(t, 1, geo.reverseCalls)
	assert.Equal(t, "reverse", result.GeoSource)
	assert.Equal(t, "Val-d'Or", result.PlaceName)
	assert.Equal(t, "Val-d'Or, Quebec, Canada", result.FormattedAddress)
	assert.InDelta(t, 0.9, result.GeoConfidence, 1e-9)
}

func TestEnrichWithGeocoding_PlaceholderSkipped(t *testing.T) {
	tests := []struct {
		name string
		pair CoordinatePair
	}{
		{name: "latitude placeholder", pair: CoordinatePair{Longitude: -77.42, LatitudePlaceholder: true}},
		{name: "both placeholders", pair: CoordinatePair{LatitudePlaceholder: true, LongitudePlaceholder: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geo := &mockGeocoder{}
			pair := tt.pair
			result := EnrichWithGeocoding(context.Background(), MineRecord{Location: &pair}, geo, discardLogger())

			assert.Equal(t, "skipped", result.GeoSource)
			assert.Equal(t, 0, geo.reverseCalls)
		})
	}
}

func TestEnrichWithGeocoding_Error(t *testing.T) {
	geo := &mockGeocoder{reverseErr: errors.New("timeout")}
	record := MineRecord{ID: testRecordID, Location: &CoordinatePair{Latitude: 48.1, Longitude: -77.8}}

	result := EnrichWithGeocoding(context.Background(), record, geo, discardLogger())

	assert.Equal(t, "failed", result.GeoSource)
	assert.Empty(t, result.PlaceName)
}

func TestEnrichWithGeocoding_EmptyResult(t *testing.T) {
	geo := &mockGeocoder{}
	record := MineRecord{ID: testRecordID, Location: &CoordinatePair{Latitude: 48.1, Longitude: -77.8}}

	result := EnrichWithGeocoding(context.Background(), record, geo, discardLogger())

	assert.Equal(t, "original", result.GeoSource)
}

func TestEnrichWithGeocoding_Distance(t *testing.T) {
	geo := &mockGeocoder{
		reverseResult: Place{
			Name:    "Val-d'Or",
			Address: "Val-d'Or, Quebec, Canada",
			Center:  CoordinatePair{Latitude: 48.0975, Longitude: -77.7828},
		},
	}
	record := MineRecord{ID: testRecordID, Location: &CoordinatePair{Latitude: 48.1, Longitude: -77.8}}

	result := EnrichWithGeocoding(context.Background(), record, geo, discardLogger())

	assert.Equal(t, "reverse", result.GeoSource)
	assert.InDelta(t, 1.31, result.GeoDistanceKm, 1e-9)
}

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name string
		a, b CoordinatePair
		want float64
	}{
		{name: "same point", a: CoordinatePair{Latitude: 52.7, Longitude: -76.1}, b: CoordinatePair{Latitude: 52.7, Longitude: -76.1}, want: 0},
		{name: "one degree on the equator", a: CoordinatePair{}, b: CoordinatePair{Longitude: 1}, want: 111.195},
		{name: "symmetric", a: CoordinatePair{Latitude: 48.1, Longitude: -77.8}, b: CoordinatePair{Latitude: 48.0975, Longitude: -77.7828}, want: 1.307},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DistanceKm(tt.a, tt.b), 1e-3)
			assert.InDelta(t, tt.want, DistanceKm(tt.b, tt.a), 1e-3)
		})
	}
}

package domain

import (
	"context"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// MineRecord is a mine record after normalization.
type MineRecord struct {
	ID       string `json:"id"`
	MineName string `json:"mine_name,omitempty"`

	// Fields is the flat record with normalized values written back into the
	// canonical columns.
	Fields      map[string]string `json:"fields"`
	Conversions []FieldConversion `json:"conversions,omitempty"`

	// Location is the coordinate pair written to the record, if any.
	Location           *CoordinatePair `json:"location,omitempty"`
	LocationConfidence float64         `json:"location_confidence,omitempty"`

	// Geocoding verification fields.
	FormattedAddress string  `json:"formatted_address,omitempty"`
	PlaceName        string  `json:"place_name,omitempty"`
	GeoConfidence    float64 `json:"geo_confidence,omitempty"`
	GeoSource        string  `json:"geo_source,omitempty"` // "reverse", "original", "skipped", "failed"
	// GeoDistanceKm is how far the matched place lies from Location.
	GeoDistanceKm    float64 `json:"geo_distance_km,omitempty"`

	SourceTimestamp time.Time `json:"source_timestamp"`
	RawPayload      []byte    `json:"-"`
	ProcessedAt     time.Time `json:"processed_at"`
}

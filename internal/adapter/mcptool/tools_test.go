package mcptool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/mine-data-normalizer/internal/domain"
)

func TestHandleNormalizeMeasurement(t *testing.T) {
	s := NewServer(nil)

	tests := []struct {
		name      string
		input     MeasurementInput
		category  string
		outcome   string
		formatted string
	}{
		{
			name:      "production",
			input:     MeasurementInput{Category: "production", RawText: "2,4 Mt/Jahr"},
			category:  "production",
			outcome:   string(domain.OutcomeFullMatch),
			formatted: "2400000.0 t/Jahr",
		},
		{
			name:      "area with role",
			input:     MeasurementInput{Category: "area-PAR", RawText: "77,8 ha"},
			category:  "area-PAR",
			outcome:   string(domain.OutcomeFullMatch),
			formatted: "0.7780 km²",
		},
		{
			name:      "unreadable value",
			input:     MeasurementInput{Category: "production", RawText: "keine Angabe"},
			category:  "production",
			outcome:   string(domain.OutcomeNoMatch),
			formatted: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, out, err := s.handleNormalizeMeasurement(context.Background(), nil, tt.input)
			require.NoError(t, err)
			assert.Nil(t, res)
			assert.Equal(t, tt.category, out.Category)
			assert.Equal(t, tt.outcome, out.Outcome)
			assert.Equal(t, tt.formatted, out.Formatted)
			assert.NotEmpty(t, out.Provenance)
		})
	}
}

func TestHandleNormalizeMeasurement_Coordinate(t *testing.T) {
	s := NewServer(nil)

	_, out, err := s.handleNormalizeMeasurement(context.Background(), nil, MeasurementInput{
		Category: "coordinate",
		RawText:  `52°41'58.37" N / 76°05'13.13" O`,
	})
	require.NoError(t, err)
	require.NotNil(t, out.Coordinates)
	assert.Equal(t, "52.699547", out.Coordinates.LatitudeDD)
	assert.Equal(t, "-76.086981", out.Coordinates.LongitudeDD)
	assert.Equal(t, "52.699547, -76.086981", out.Coordinates.Combined)
}

func TestHandleNormalizeMeasurement_UnknownCategory(t *testing.T) {
	s := NewServer(nil)

	_, _, err := s.handleNormalizeMeasurement(context.Background(), nil, MeasurementInput{Category: "depth", RawText: "40 m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "depth")
}

func TestHandleNormalizeRecord(t *testing.T) {
	s := NewServer(nil)

	_, out, err := s.handleNormalizeRecord(context.Background(), nil, RecordInput{Fields: map[string]string{
		domain.FieldMineName: "Éléonore",
		"Produktionsrate":    "2,4 Mt/Jahr",
		"Koordinaten":        `52°41'58.37" N / 76°05'13.13" O`,
	}})
	require.NoError(t, err)

	assert.Equal(t, "2400000.0 t/Jahr", out.Fields["Produktionsrate"])
	assert.Equal(t, "52.699547, -76.086981", out.Fields[domain.FieldLatLong])
	require.NotNil(t, out.Location)
	assert.InDelta(t, 52.699547, out.Location.Latitude, 1e-6)
	assert.Greater(t, out.LocationConfidence, 0.0)

	fields := make([]string, 0, len(out.Conversions))
	for _, c := range out.Conversions {
		fields = append(fields, c.Field)
	}
	assert.Contains(t, fields, "Produktionsrate")
	assert.Contains(t, fields, "Koordinaten")
}

func TestHandleNormalizeRecord_Empty(t *testing.T) {
	s := NewServer(nil)

	_, _, err := s.handleNormalizeRecord(context.Background(), nil, RecordInput{})
	require.EqualError(t, err, "fields is required")
}

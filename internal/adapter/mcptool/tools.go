package mcptool

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/couchcryptid/mine-data-normalizer/internal/domain"
)

// MeasurementInput is the input schema for normalize_measurement.
type MeasurementInput struct {
	Category string `json:"category" jsonschema:"production, area, area-PAR, area-claims, area-total, area-general or coordinate"`
	RawText  string `json:"raw_text" jsonschema:"the field value as written in the source document"`
}

// ConversionOutput is one converted field.
type ConversionOutput struct {
	Category    string             `json:"category"`
	Outcome     string             `json:"outcome"`
	Value       float64            `json:"value"`
	Unit        string             `json:"unit,omitempty"`
	Formatted   string             `json:"formatted,omitempty"`
	Confidence  float64            `json:"confidence"`
	Provenance  string             `json:"provenance"`
	Coordinates *CoordinatesOutput `json:"coordinates,omitempty"`
}

// CoordinatesOutput carries the decimal-degree axes and their column views.
type CoordinatesOutput struct {
	Latitude             float64 `json:"latitude"`
	Longitude            float64 `json:"longitude"`
	LatitudeDD           string  `json:"latitude_dd"`
	LongitudeDD          string  `json:"longitude_dd"`
	Combined             string  `json:"latlong"`
	LatitudePlaceholder  bool    `json:"latitude_placeholder,omitempty"`
	LongitudePlaceholder bool    `json:"longitude_placeholder,omitempty"`
}

// RecordInput is the input schema for normalize_record.
type RecordInput struct {
	Fields map[string]string `json:"fields" jsonschema:"flat mine record keyed by column name"`
}

// FieldOutput pairs a record field with its conversion.
type FieldOutput struct {
	Field  string           `json:"field"`
	Raw    string           `json:"raw"`
	Result ConversionOutput `json:"result"`
}

// RecordOutput is the normalized record.
type RecordOutput struct {
	Fields             map[string]string  `json:"fields"`
	Conversions        []FieldOutput      `json:"conversions"`
	Location           *CoordinatesOutput `json:"location,omitempty"`
	LocationConfidence float64            `json:"location_confidence,omitempty"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "normalize_measurement",
		Description: "Convert one raw measurement to its canonical form: production rates to t/Jahr, " +
			"areas to km², coordinates to decimal degrees. Returns the value with a confidence score " +
			"and a provenance string describing the conversion.",
	}, s.handleNormalizeMeasurement)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "normalize_record",
		Description: "Normalize the production, area and coordinate columns of a flat mine record. " +
			"Original values of rewritten source columns are kept under <column>_ORIGINAL.",
	}, s.handleNormalizeRecord)
}

func (s *Server) handleNormalizeMeasurement(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input MeasurementInput,
) (*mcp.CallToolResult, ConversionOutput, error) {
	category, role, err := domain.ParseCategory(input.Category)
	if err != nil {
		return nil, ConversionOutput{}, err
	}
	r := s.normalizer.Normalize(domain.MeasurementField{Category: category, Role: role, RawText: input.RawText})
	return nil, toConversionOutput(r), nil
}

func (s *Server) handleNormalizeRecord(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input RecordInput,
) (*mcp.CallToolResult, RecordOutput, error) {
	if len(input.Fields) == 0 {
		return nil, RecordOutput{}, errors.New("fields is required")
	}

	res := s.normalizer.NormalizeRecord(input.Fields)
	out := RecordOutput{
		Fields:      res.Fields,
		Conversions: make([]FieldOutput, len(res.Conversions)),
	}
	for i, c := range res.Conversions {
		out.Conversions[i] = FieldOutput{Field: c.Field, Raw: c.Raw, Result: toConversionOutput(c.Result)}
	}
	if res.Location != nil {
		out.Location = toCoordinatesOutput(res.Location.Coordinates)
		out.LocationConfidence = res.Location.Confidence
	}
	return nil, out, nil
}

func toConversionOutput(r domain.ConversionResult) ConversionOutput {
	return ConversionOutput{
		Category:    domain.Label(r.Category, r.Role),
		Outcome:     string(r.Outcome),
		Value:       r.Value,
		Unit:        r.Unit,
		Formatted:   r.Formatted,
		Confidence:  r.Confidence,
		Provenance:  r.Provenance,
		Coordinates: toCoordinatesOutput(r.Coordinates),
	}
}

func toCoordinatesOutput(p *domain.CoordinatePair) *CoordinatesOutput {
	if p == nil {
		return nil
	}
	return &CoordinatesOutput{
		Latitude:             p.Latitude,
		Longitude:            p.Longitude,
		LatitudeDD:           p.LatitudeDD(),
		LongitudeDD:          p.LongitudeDD(),
		Combined:             p.Combined(),
		LatitudePlaceholder:  p.LatitudePlaceholder,
		LongitudePlaceholder: p.LongitudePlaceholder,
	}
}

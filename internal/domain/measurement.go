package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Category is the declared kind of a measurement field.
type Category string

const (
	CategoryProduction Category = "production"
	CategoryArea       Category = "area"
	CategoryCoordinate Category = "coordinate"
)

// FieldRole distinguishes the four area columns. It is empty for other categories.
type FieldRole string

const (
	RoleNone    FieldRole = ""
	RolePAR     FieldRole = "par"
	RoleClaims  FieldRole = "claims"
	RoleTotal   FieldRole = "total"
	RoleGeneral FieldRole = "general"
)

// categoryLabels maps the external category labels to a category and role.
var categoryLabels = map[string]struct {
	category Category
	role     FieldRole
}{
	"production":   {CategoryProduction, RoleNone},
	"area":         {CategoryArea, RoleGeneral},
	"area-par":     {CategoryArea, RolePAR},
	"area-claims":  {CategoryArea, RoleClaims},
	"area-total":   {CategoryArea, RoleTotal},
	"area-general": {CategoryArea, RoleGeneral},
	"coordinate":   {CategoryCoordinate, RoleNone},
}

// ParseCategory resolves a label such as "production", "area-PAR" or
// "coordinate". Labels are case-insensitive.
func ParseCategory(label string) (Category, FieldRole, error) {
	c, ok := categoryLabels[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return "", RoleNone, fmt.Errorf("unknown measurement category %q", label)
	}
	return c.category, c.role, nil
}

// Label renders the category and role in the external label form.
func Label(c Category, r FieldRole) string {
	switch {
	case c != CategoryArea:
		return string(c)
	case r == RolePAR:
		return "area-PAR"
	case r == RoleNone:
		return "area-general"
	default:
		return "area-" + string(r)
	}
}

// MeasurementField is one raw field value with its declared category.
type MeasurementField struct {
	Category Category  `json:"category"`
	Role     FieldRole `json:"role,omitempty"`
	RawText  string    `json:"raw_text"`
}

// Modifier records a qualifier found in front of a number.
type Modifier string

const (
	ModifierGreaterThan Modifier = "greater-than"
	ModifierLessThan    Modifier = "less-than"
	ModifierAtLeast     Modifier = "at-least"
	ModifierAtMost      Modifier = "at-most"
	ModifierApproximate Modifier = "approximate"
)

// Symbol returns the short form used in provenance strings.
func (m Modifier) Symbol() string {
	switch m {
	case ModifierGreaterThan:
		return ">"
	case ModifierLessThan:
		return "<"
	case ModifierAtLeast:
		return "≥"
	case ModifierAtMost:
		return "≤"
	case ModifierApproximate:
		return "~"
	default:
		return ""
	}
}

// Candidate is a single number-plus-unit reading scanned from a raw field.
type Candidate struct {
	Magnitude float64
	// UnitToken is the lower-cased, diacritic-folded text after the number.
	UnitToken string
	// Unit is the same text as written, used for provenance.
	Unit      string
	Modifiers []Modifier
	Text      string
}

// Bounded reports whether the candidate carries a qualifier.
func (c Candidate) Bounded() bool { return len(c.Modifiers) > 0 }

func (c Candidate) describe() string {
	var b strings.Builder
	for _, m := range c.Modifiers {
		b.WriteString(m.Symbol())
	}
	b.WriteString(formatMagnitude(c.Magnitude))
	if c.Unit != "" {
		b.WriteByte(' ')
		b.WriteString(c.Unit)
	}
	return b.String()
}

// Outcome classifies how well a field was converted.
type Outcome string

const (
	OutcomeNoMatch       Outcome = "no_match"
	OutcomePartialMatch  Outcome = "partial_match"
	OutcomeDegradedMatch Outcome = "degraded_match"
	OutcomeFullMatch     Outcome = "full_match"
)

// ConversionResult is the normalized form of one measurement field.
type ConversionResult struct {
	Category    Category        `json:"category"`
	Role        FieldRole       `json:"role,omitempty"`
	Outcome     Outcome         `json:"outcome"`
	Value       float64         `json:"value"`
	Unit        string          `json:"unit,omitempty"`
	Confidence  float64         `json:"confidence"`
	Provenance  string          `json:"provenance"`
	Formatted   string          `json:"formatted,omitempty"`
	Coordinates *CoordinatePair `json:"coordinates,omitempty"`
}

// HasValue reports whether the result carries a usable value.
func (r ConversionResult) HasValue() bool {
	return r.Outcome == OutcomeFullMatch || r.Outcome == OutcomeDegradedMatch
}

// CoordinatePair holds a latitude and longitude in signed decimal degrees.
// An axis that could not be resolved is 0 and flagged as a placeholder.
type CoordinatePair struct {
	Latitude             float64 `json:"latitude"`
	Longitude            float64 `json:"longitude"`
	LatitudePlaceholder  bool    `json:"latitude_placeholder,omitempty"`
	LongitudePlaceholder bool    `json:"longitude_placeholder,omitempty"`
}

// Placeholders counts the unresolved axes.
func (p CoordinatePair) Placeholders() int {
	n := 0
	if p.LatitudePlaceholder {
		n++
	}
	if p.LongitudePlaceholder {
		n++
	}
	return n
}

// LatitudeDD renders the Latitude_dd column.
func (p CoordinatePair) LatitudeDD() string { return formatDegrees(p.Latitude) }

// LongitudeDD renders the Longitude_dd column.
func (p CoordinatePair) LongitudeDD() string { return formatDegrees(p.Longitude) }

// Combined renders the LatLong_Koordinaten column: "lat, lon".
func (p CoordinatePair) Combined() string {
	return p.LatitudeDD() + ", " + p.LongitudeDD()
}

// XAxis renders the legacy x-Koordinate column, which mirrors latitude.
func (p CoordinatePair) XAxis() string { return p.LatitudeDD() }

// YAxis renders the legacy y-Koordinate column, which mirrors longitude.
func (p CoordinatePair) YAxis() string { return p.LongitudeDD() }

// MarshalJSON adds the rendered column views next to the numeric axes.
func (p CoordinatePair) MarshalJSON() ([]byte, error) {
	type plain CoordinatePair
	return json.Marshal(struct {
		plain
		LatitudeDD  string `json:"Latitude_dd"`
		LongitudeDD string `json:"Longitude_dd"`
		Combined    string `json:"LatLong_Koordinaten"`
		XAxis       string `json:"x-Koordinate"`
		YAxis       string `json:"y-Koordinate"`
	}{
		plain:       plain(p),
		LatitudeDD:  p.LatitudeDD(),
		LongitudeDD: p.LongitudeDD(),
		Combined:    p.Combined(),
		XAxis:       p.XAxis(),
		YAxis:       p.YAxis(),
	})
}

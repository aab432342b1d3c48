package domain

import (
	"regexp"
	"sort"
	"strings"
)

// Record field names used by the downstream table.
const (
	FieldLatitudeDD   = "Latitude_dd"
	FieldLongitudeDD  = "Longitude_dd"
	FieldLatLong      = "LatLong_Koordinaten"
	FieldXCoordinate  = "x-Koordinate"
	FieldYCoordinate  = "y-Koordinate"
	FieldMineName     = "Name der Mine"
	originalSuffix    = "_ORIGINAL"
	coordinateJoinSep = "; "
)

// productionFields are the record fields holding a production rate.
var productionFields = []string{"Fördermenge", "Durchsatz", "Produktionsrate", "Kapazität"}

// areaColumns maps each area role to its canonical column.
var areaColumns = map[FieldRole]string{
	RolePAR:     "PAR Fläche der Mine in qkm",
	RoleClaims:  "Claims Fläche der Mine in qkm",
	RoleTotal:   "Gesamtfläche der Mine in qkm",
	RoleGeneral: "Fläche der Mine in qkm",
}

// coordinateSources are the record fields that may hold a full position, in
// tie-break order. x-Koordinate and y-Koordinate are tried last as one pair.
var coordinateSources = []string{"Koordinaten", "Standort", "Position"}

var (
	// areaHintRe marks a field name as an area column.
	areaHintRe = regexp.MustCompile(`flache|area|superficie|qkm|km2|km²|hektar|\bha\b`)

	// areaRolePatterns classify folded area field names, checked in order.
	areaRolePatterns = []struct {
		role FieldRole
		re   *regexp.Regexp
	}{
		{RolePAR, regexp.MustCompile(`\bpar\b|plan d'amenagement et de restauration|restaurationsplan`)},
		{RoleClaims, regexp.MustCompile(`claims?|konzession|concession|lizenzgebiet`)},
		{RoleTotal, regexp.MustCompile(`gesamtflache|total area|genutzte bereiche|utilisee`)},
		{RoleGeneral, regexp.MustCompile(`flache der mine|mine area|betriebsflache`)},
	}
)

// FieldConversion is the conversion of one named record field.
type FieldConversion struct {
	Field  string           `json:"field"`
	Raw    string           `json:"raw"`
	Result ConversionResult `json:"result"`
}

// RecordResult is a normalized mine record.
type RecordResult struct {
	Fields      map[string]string
	Conversions []FieldConversion
	// Location is the coordinate conversion written to the record, if any.
	Location *ConversionResult
}

// NormalizeRecord normalizes the production, area and coordinate fields of a
// flat mine record. The input map is not modified.
func (n *Normalizer) NormalizeRecord(fields map[string]string) RecordResult {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	res := RecordResult{Fields: out}

	n.normalizeProduction(fields, &res)
	n.normalizeAreas(fields, &res)
	n.normalizeCoordinates(fields, &res)
	return res
}

// NormalizeRecord normalizes a record with the built-in rules.
func NormalizeRecord(fields map[string]string) RecordResult {
	return defaultNormalizer.NormalizeRecord(fields)
}

func (n *Normalizer) normalizeProduction(fields map[string]string, res *RecordResult) {
	for _, name := range productionFields {
		raw := strings.TrimSpace(fields[name])
		if raw == "" {
			continue
		}
		r := n.Normalize(MeasurementField{Category: CategoryProduction, RawText: raw})
		res.Conversions = append(res.Conversions, FieldConversion{Field: name, Raw: raw, Result: r})
		if r.HasValue() {
			res.Fields[name] = r.Formatted
		}
	}
}

func (n *Normalizer) normalizeAreas(fields map[string]string, res *RecordResult) {
	best := make(map[FieldRole]float64)
	for _, name := range areaFieldOrder(fields) {
		raw := strings.TrimSpace(fields[name])
		role, ok := AreaRole(name)
		if raw == "" || !ok {
			continue
		}
		r := n.Normalize(MeasurementField{Category: CategoryArea, Role: role, RawText: raw})
		res.Conversions = append(res.Conversions, FieldConversion{Field: name, Raw: raw, Result: r})
		if !r.HasValue() {
			continue
		}

		column := areaColumns[role]
		if name != column {
			res.Fields[name+originalSuffix] = fields[name]
			delete(res.Fields, name)
		}
		if prev, seen := best[role]; seen && r.Confidence <= prev {
			continue
		}
		best[role] = r.Confidence
		res.Fields[column] = r.Formatted
	}
}

// areaFieldOrder lists canonical area columns first, then other field names
// in sorted order, so results do not depend on map iteration.
func areaFieldOrder(fields map[string]string) []string {
	var canonical, other []string
	for _, role := range []FieldRole{RolePAR, RoleClaims, RoleTotal, RoleGeneral} {
		if _, ok := fields[areaColumns[role]]; ok {
			canonical = append(canonical, areaColumns[role])
		}
	}
	for name := range fields {
		if strings.HasSuffix(name, originalSuffix) || isAreaColumn(name) {
			continue
		}
		other = append(other, name)
	}
	sort.Strings(other)
	return append(canonical, other...)
}

func isAreaColumn(name string) bool {
	for _, c := range areaColumns {
		if c == name {
			return true
		}
	}
	return false
}

// AreaRole classifies a record field name as one of the area roles. Names
// that only hint at an area fall back to the general role.
func AreaRole(name string) (FieldRole, bool) {
	for role, column := range areaColumns {
		if name == column {
			return role, true
		}
	}
	folded := FoldText(name)
	if !areaHintRe.MatchString(folded) {
		return RoleNone, false
	}
	for _, p := range areaRolePatterns {
		if p.re.MatchString(folded) {
			return p.role, true
		}
	}
	return RoleGeneral, true
}

// normalizeCoordinates converts every coordinate source and writes the
// best one to the coordinate columns, all rendered from one pair.
func (n *Normalizer) normalizeCoordinates(fields map[string]string, res *RecordResult) {
	type source struct{ name, raw string }
	var sources []source
	for _, name := range coordinateSources {
		if raw := strings.TrimSpace(fields[name]); raw != "" {
			sources = append(sources, source{name, raw})
		}
	}
	x := strings.TrimSpace(fields[FieldXCoordinate])
	y := strings.TrimSpace(fields[FieldYCoordinate])
	if x != "" && y != "" {
		sources = append(sources, source{FieldXCoordinate + "/" + FieldYCoordinate, x + coordinateJoinSep + y})
	}

	var (
		winner  *ConversionResult
		fromSrc string
	)
	for _, s := range sources {
		r := n.Normalize(MeasurementField{Category: CategoryCoordinate, RawText: s.raw})
		res.Conversions = append(res.Conversions, FieldConversion{Field: s.name, Raw: s.raw, Result: r})
		if !r.HasValue() {
			continue
		}
		if winner == nil || r.Confidence > winner.Confidence {
			winner, fromSrc = &r, s.name
		}
	}
	if winner == nil {
		return
	}

	if _, ok := fields[fromSrc]; ok {
		res.Fields[fromSrc+originalSuffix] = fields[fromSrc]
		delete(res.Fields, fromSrc)
	}
	p := winner.Coordinates
	res.Fields[FieldLatitudeDD] = p.LatitudeDD()
	res.Fields[FieldLongitudeDD] = p.LongitudeDD()
	res.Fields[FieldLatLong] = p.Combined()
	res.Fields[FieldXCoordinate] = p.XAxis()
	res.Fields[FieldYCoordinate] = p.YAxis()
	res.Location = winner
}

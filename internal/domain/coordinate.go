package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// dmsRe matches one DMS component: 52°41'58.37" N. Seconds are optional
	// and the hemisphere letter may be lower case.
	dmsRe = regexp.MustCompile(`(?i)(\d{1,3})\s*°\s*(\d{1,2}(?:[.,]\d+)?)\s*['′’]\s*(?:(\d{1,2}(?:[.,]\d+)?)\s*(?:"|″|”|''|′′)\s*)?([NSEOW])\b`)

	// decimalPairRe matches "lat, lon" with "." decimals; the pair may be
	// separated by ",", ";", "/" or whitespace.
	decimalPairRe = regexp.MustCompile(`(?:^|[^\d.,])([+-]?\d{1,3}\.\d+)\s*(?:[,;/]\s*|\s+)([+-]?\d{1,3}\.\d+)(?:$|[^\d.])`)

	// decimalCommaPairRe matches "lat; lon" with "," decimals.
	decimalCommaPairRe = regexp.MustCompile(`(?:^|[^\d.,])([+-]?\d{1,3},\d+)\s*(?:[;/]\s*|\s+)([+-]?\d{1,3},\d+)(?:$|[^\d,])`)

	// integerPairRe matches a comma-separated pair where either axis may be
	// whole degrees: "45, -75".
	integerPairRe = regexp.MustCompile(`(?:^|[^\d.,])([+-]?\d{1,3}(?:\.\d+)?)\s*,\s*([+-]?\d{1,3}(?:\.\d+)?)(?:$|[^\d.,])`)

	// utmLabeledRe matches "UTM E=426542 / N=5838234", "E 426542 N 5838234"
	// and the space-grouped "UTM E=426 542 / N=5 839 397".
	utmLabeledRe = regexp.MustCompile(`(?i)\bE(?:asting)?\s*[=:]?\s*(` + groupedInt + `|\d{5,7})(?:[.,]\d+)?\s*m?\s*[/,;]?\s*N(?:orthing)?\s*[=:]?\s*(` + groupedInt + `|\d{6,8})(?:[.,]\d+)?`)

	// mixedRe matches an easting-sized integer followed by a second number,
	// which is either a northing or a bare longitude.
	mixedRe = regexp.MustCompile(`(?:^|[^\d.,])(` + groupedInt + `|\d{5,7})(?:[.,]\d+)?\s*(?:[;,/]\s*|\s+)([+-]?(?:` + groupedInt + `|\d+)(?:\.\d+)?)(?:$|[^\d.])`)
)

// groupedInt is an integer written in space-separated thousands groups.
const groupedInt = `\d{1,3}(?:[ \x{00a0}]\d{3})+`

const (
	minEastingDigits  = 5
	maxEastingDigits  = 7
	minNorthingDigits = 6
	maxNorthingDigits = 8
)

// coordinateMatch is what a coordinate shape produces.
type coordinateMatch struct {
	pair       CoordinatePair
	provenance string
}

// convertCoordinate tries each coordinate shape in priority order on the
// whole field; the first structural match wins.
func convertCoordinate(t *RuleTable, f MeasurementField) ConversionResult {
	res := ConversionResult{Category: CategoryCoordinate}
	raw := strings.TrimSpace(f.RawText)
	if raw == "" {
		return noMatch(res, "unparsed")
	}

	for _, shape := range t.shapes {
		m, ok := shape.Parse(raw)
		if !ok {
			continue
		}
		pair := m.pair
		res.Outcome = OutcomeFullMatch
		if pair.Placeholders() > 0 {
			res.Outcome = OutcomeDegradedMatch
		}
		res.Unit = UnitDecimalDegrees
		res.Confidence = score(baseConfidence(CategoryCoordinate, SpecificityExact), false, pair.Placeholders())
		res.Provenance = m.provenance
		res.Formatted = pair.Combined()
		res.Coordinates = &pair
		return res
	}

	if strings.ContainsFunc(raw, isASCIIDigit) {
		res.Outcome = OutcomePartialMatch
		res.Confidence = partialConfidence
		res.Provenance = "unrecognized coordinate format: " + raw
		return res
	}
	return noMatch(res, "unparsed")
}

// parseDMS reads degrees-minutes-seconds components. N/E are positive,
// S/W are negative, and O is read as negative like W.
func parseDMS(raw string) (coordinateMatch, bool) {
	matches := dmsRe.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return coordinateMatch{}, false
	}

	var (
		lat, lon       float64
		hasLat, hasLon bool
		parts          []string
	)
	for _, m := range matches {
		v := dmsToDecimal(parseDecimal(m[1]), parseDecimal(m[2]), parseDecimal(m[3]))
		hemisphere := strings.ToUpper(m[4])
		switch hemisphere {
		case "N", "S":
			if hasLat || v > 90 {
				continue
			}
			if hemisphere == "S" {
				v = -v
			}
			lat, hasLat = v, true
		default:
			if hasLon || v > 180 {
				continue
			}
			if hemisphere != "E" {
				v = -v
			}
			lon, hasLon = v, true
		}
		parts = append(parts, strings.TrimSpace(m[0]))
	}
	if !hasLat && !hasLon {
		return coordinateMatch{}, false
	}

	pair := CoordinatePair{
		Latitude:             lat,
		Longitude:            lon,
		LatitudePlaceholder:  !hasLat,
		LongitudePlaceholder: !hasLon,
	}
	return coordinateMatch{
		pair:       pair,
		provenance: "DMS " + strings.Join(parts, " / ") + " → " + pair.Combined(),
	}, true
}

func dmsToDecimal(deg, minutes, seconds float64) float64 {
	return deg + minutes/60 + seconds/3600
}

// parseDecimalPair reads two signed decimals as latitude, longitude.
func parseDecimalPair(raw string) (coordinateMatch, bool) {
	for _, re := range []*regexp.Regexp{decimalPairRe, decimalCommaPairRe, integerPairRe} {
		m := re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		lat, lon := parseDecimal(m[1]), parseDecimal(m[2])
		if math.Abs(lat) > 90 || math.Abs(lon) > 180 {
			continue
		}
		pair := CoordinatePair{Latitude: lat, Longitude: lon}
		return coordinateMatch{
			pair:       pair,
			provenance: "decimal pair " + m[1] + ", " + m[2] + " → " + pair.Combined(),
		}, true
	}
	return coordinateMatch{}, false
}

// parseUTM recognizes easting/northing pairs and easting-plus-longitude
// pairs. No projection is performed: unresolved axes are placeholders.
func parseUTM(raw string) (coordinateMatch, bool) {
	if m := utmLabeledRe.FindStringSubmatch(raw); m != nil {
		easting, northing := ungroup(m[1]), ungroup(m[2])
		if digitsIn(easting, minEastingDigits, maxEastingDigits) && digitsIn(northing, minNorthingDigits, maxNorthingDigits) {
			return utmPlaceholder(easting, northing), true
		}
	}

	m := mixedRe.FindStringSubmatch(raw)
	if m == nil {
		return coordinateMatch{}, false
	}
	easting, second := ungroup(m[1]), ungroup(m[2])
	if !digitsIn(easting, minEastingDigits, maxEastingDigits) {
		return coordinateMatch{}, false
	}
	intPart, _, _ := strings.Cut(strings.TrimLeft(second, "+-"), ".")
	if len(intPart) >= minNorthingDigits {
		return utmPlaceholder(easting, intPart), true
	}

	lon := parseDecimal(second)
	if math.Abs(lon) > 180 {
		return coordinateMatch{}, false
	}
	return coordinateMatch{
		pair:       CoordinatePair{Longitude: lon, LatitudePlaceholder: true},
		provenance: "UTM Easting " + easting + " + Longitude " + second + " → Lat/Long (latitude is a placeholder)",
	}, true
}

func utmPlaceholder(easting, northing string) coordinateMatch {
	return coordinateMatch{
		pair: CoordinatePair{LatitudePlaceholder: true, LongitudePlaceholder: true},
		provenance: "UTM " + easting + "E " + northing + "N → Lat/Long (projection not performed, " +
			"both axes are placeholders)",
	}
}

// ungroup drops thousands-group spaces: "5 839 397" becomes "5839397".
func ungroup(s string) string {
	return strings.NewReplacer(" ", "", "\u00a0", "").Replace(s)
}

func digitsIn(s string, lo, hi int) bool {
	return len(s) >= lo && len(s) <= hi
}

// parseDecimal parses a regex-validated number that may use "," as decimal
// point. An empty string is 0.
func parseDecimal(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0
	}
	return v
}

// Package domain normalizes free-text mine measurements (production rates,
// areas, coordinates) into canonical units.
//
// # Data Source
//
// Mine records are produced upstream by an extraction agent that reads
// technical reports, permits and company filings and emits one flat JSON object
// per mine. Keys are the German column names of the downstream table
// ("Fördermenge", "Fläche der Mine in qkm", "Koordinaten", ...). Values are
// the raw strings as they appeared in the source document.
//
// # Measurement Conventions
//
// Number formatting:
//
//	Both decimal separators occur: "2,4 Mt" and "2.4 Mt" mean the same thing.
//	Thousands are grouped with spaces, narrow spaces or apostrophes:
//	"18 984,96 ha", "400 000 oz", "1'250 t".
//	When "," and "." both appear, the last one is the decimal point.
//	A separator that repeats ("1.234.567") is grouping.
//	A single separator is always the decimal point, so "2,848" is 2.848.
//
// Multi-valued fields:
//
//	Alternative readings are separated by ";" (as written in the source) or by
//	" | " (inserted when the extractor de-duplicates). Each piece becomes one
//	[Candidate]; only one value is emitted per field.
//
// Qualifiers:
//
//	">", "<", "≥", "≤", "~", "≈" and "ca." bound the value rather than state it.
//	The stated magnitude is converted unchanged; the qualifier lowers confidence.
//
// Canonical units:
//
//	Production: t/Jahr, formatted "%.1f t/Jahr".
//	Area:       km², formatted "%.4f km²".
//	Coordinate: signed decimal degrees, formatted "%.6f" per axis.
//
// Coordinate shapes (first structural match wins):
//
//	DMS:      52°41'58.37" N / 76°05'13.13" O
//	Decimal:  52.6996, -76.0870
//	UTM:      426542; 5838234   or   UTM E=426542 / N=5838234
//	Mixed:    426542; -77.42    (easting plus a bare longitude)
//
//	The hemisphere letter "O" (Ost) produces a negative longitude, the same as
//	"W". Source data relies on this reading and it is kept as is.
//	UTM eastings and northings are never projected. The unresolved axis is set
//	to 0.000000 and flagged as a placeholder.
//
// # Outcomes
//
// Conversions never fail with an error. Each field yields a [ConversionResult]
// whose [Outcome] is one of no_match, partial_match, degraded_match or
// full_match. Only degraded and full matches carry a value.
//
// # ID Generation
//
// Record IDs are deterministic SHA-256 hashes of the mine name and the sorted
// raw fields, so replaying the same extraction yields the same ID downstream.
// See [generateID].
package domain

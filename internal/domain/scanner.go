package domain

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// candidateSepRe splits alternative readings: ";" from the source text and
	// " | " from the extractor's de-duplication step.
	candidateSepRe = regexp.MustCompile(`;|\s\|\s`)

	// approxPrefixRe matches word qualifiers directly in front of a number.
	approxPrefixRe = regexp.MustCompile(`(?i)(?:^|[\s(])(?:ca\.?|approx\.?|env\.?|etwa|about)\s*$`)

	spaceRunRe = regexp.MustCompile(`\s+`)
)

// ScanCandidates splits a raw field into candidates. Pieces without a number
// are dropped; a field with no numbers yields an empty slice.
func ScanCandidates(raw string) []Candidate {
	var out []Candidate
	for _, piece := range candidateSepRe.Split(raw, -1) {
		if c, ok := scanPiece(piece); ok {
			out = append(out, c)
		}
	}
	return out
}

func scanPiece(piece string) (Candidate, bool) {
	piece = strings.TrimSpace(piece)
	start := strings.IndexFunc(piece, isASCIIDigit)
	if start < 0 {
		return Candidate{}, false
	}

	digits, end := readNumber(piece[start:])
	magnitude, ok := parseLocaleNumber(digits)
	if !ok {
		return Candidate{}, false
	}

	unit := cleanUnit(piece[start+end:])
	return Candidate{
		Magnitude: magnitude,
		UnitToken: FoldText(unit),
		Unit:      unit,
		Modifiers: scanModifiers(piece[:start]),
		Text:      piece,
	}, true
}

// scanModifiers reads the qualifier written immediately before the number.
func scanModifiers(prefix string) []Modifier {
	trimmed := strings.TrimRightFunc(prefix, unicode.IsSpace)
	if trimmed == "" {
		return nil
	}
	r, _ := utf8.DecodeLastRuneInString(trimmed)
	switch r {
	case '>':
		return []Modifier{ModifierGreaterThan}
	case '<':
		return []Modifier{ModifierLessThan}
	case '≥':
		return []Modifier{ModifierAtLeast}
	case '≤':
		return []Modifier{ModifierAtMost}
	case '~', '≈':
		return []Modifier{ModifierApproximate}
	}
	if approxPrefixRe.MatchString(trimmed) {
		return []Modifier{ModifierApproximate}
	}
	return nil
}

// readNumber consumes a number at the start of s, following space-grouped
// thousands. Each group after the first must have exactly three digits.
// It returns the number with grouping spaces removed and the bytes consumed.
func readNumber(s string) (string, int) {
	end := chunkEnd(s, 0)
	var b strings.Builder
	b.WriteString(s[:end])

	for !strings.ContainsAny(s[:end], ".,") {
		r, size := utf8.DecodeRuneInString(s[end:])
		if size == 0 || !isGroupSeparator(r) {
			break
		}
		next := end + size
		if leadingDigits(s[next:]) != 3 {
			break
		}
		chunk := chunkEnd(s, next)
		b.WriteString(s[next:chunk])
		end = chunk
	}
	return b.String(), end
}

// chunkEnd returns the end of the digit run starting at i, including embedded
// "." or "," separators that are followed by another digit.
func chunkEnd(s string, i int) int {
	for i < len(s) {
		switch {
		case isASCIIDigit(rune(s[i])):
			i++
		case (s[i] == '.' || s[i] == ',') && i+1 < len(s) && isASCIIDigit(rune(s[i+1])):
			i++
		default:
			return i
		}
	}
	return i
}

func leadingDigits(s string) int {
	n := 0
	for n < len(s) && isASCIIDigit(rune(s[n])) {
		n++
	}
	return n
}

// parseLocaleNumber resolves decimal and grouping separators:
// with both "," and "." the last one is the decimal point, a repeated
// separator is grouping, and a single separator is the decimal point.
func parseLocaleNumber(s string) (float64, bool) {
	commas := strings.Count(s, ",")
	dots := strings.Count(s, ".")

	switch {
	case commas > 0 && dots > 0:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case commas > 1:
		s = strings.ReplaceAll(s, ",", "")
	case dots > 1:
		s = strings.ReplaceAll(s, ".", "")
	case commas == 1:
		// German source data writes "2,848 km²" for 2.848, so a lone comma is
		// a decimal point even before exactly three digits.
		s = strings.Replace(s, ",", ".", 1)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// cleanUnit trims the text after a number down to a unit phrase.
func cleanUnit(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, " .,:;()[]")
	return spaceRunRe.ReplaceAllString(s, " ")
}

// FoldText lower-cases s and strips combining marks, so "Fläche" and
// "flache" compare equal. Superscripts such as "²" are kept.
func FoldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

func isASCIIDigit(r rune) bool { return r >= '0' && r <= '9' }

func isGroupSeparator(r rune) bool {
	switch r {
	case ' ', '\u00a0', '\u202f', '\'', '\u2019':
		return true
	}
	return false
}

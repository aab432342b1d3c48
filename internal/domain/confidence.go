package domain

import "math"

const (
	// partialConfidence is reported when a number was found but no unit rule
	// matched it.
	partialConfidence = 0.2

	// modifierPenalty scales the score of a bounded value ("> 400 000 oz").
	modifierPenalty = 0.9

	placeholderPenalty     = 0.2
	fullPlaceholderPenalty = 0.6
)

// baseConfidence is the score of an unqualified match by category and
// specificity.
func baseConfidence(c Category, s Specificity) float64 {
	switch c {
	case CategoryProduction:
		switch s {
		case SpecificityCanonical:
			return 0.9
		case SpecificityExact:
			return 0.8
		default:
			return 0.6
		}
	case CategoryArea:
		switch s {
		case SpecificityCanonical:
			return 0.95
		case SpecificityExact:
			return 0.9
		default:
			return 0.7
		}
	case CategoryCoordinate:
		return 0.9
	}
	return 0
}

// score applies the qualifier and placeholder penalties to a base score and
// rounds to two decimals.
func score(base float64, bounded bool, placeholders int) float64 {
	s := base
	if bounded {
		s *= modifierPenalty
	}
	switch {
	case placeholders == 1:
		s -= placeholderPenalty
	case placeholders >= 2:
		s -= fullPlaceholderPenalty
	}
	return roundScore(s)
}

func roundScore(s float64) float64 {
	s = math.Round(s*100) / 100
	return math.Max(0, math.Min(1, s))
}

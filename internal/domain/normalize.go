package domain

// Normalizer converts measurement fields using a fixed rule table.
// A Normalizer holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	rules *RuleTable
}

// NewNormalizer creates a Normalizer. A nil table selects [DefaultRules].
func NewNormalizer(rules *RuleTable) *Normalizer {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Normalizer{rules: rules}
}

// Rules returns the table the Normalizer converts with.
func (n *Normalizer) Rules() *RuleTable { return n.rules }

// Normalize converts one field to its canonical form. It never fails: fields
// that cannot be read produce a no_match or partial_match result.
func (n *Normalizer) Normalize(f MeasurementField) ConversionResult {
	switch f.Category {
	case CategoryProduction:
		f.Role = RoleNone
		return convertProduction(n.rules, f)
	case CategoryArea:
		return convertArea(n.rules, f)
	case CategoryCoordinate:
		return convertCoordinate(n.rules, f)
	default:
		return noMatch(ConversionResult{Category: f.Category, Role: f.Role}, "unsupported category")
	}
}

var defaultNormalizer = NewNormalizer(nil)

// Normalize converts one field with the built-in rules.
func Normalize(f MeasurementField) ConversionResult {
	return defaultNormalizer.Normalize(f)
}

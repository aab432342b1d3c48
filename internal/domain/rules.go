package domain

import (
	"errors"
	"fmt"
	"regexp"
)

// Canonical target units.
const (
	UnitTonnesPerYear  = "t/Jahr"
	UnitSquareKm       = "km²"
	UnitDecimalDegrees = "decimal-degrees"
)

// Specificity ranks how directly a unit token names the canonical unit.
type Specificity int

const (
	// SpecificityInferred matches a unit that needs an assumption, such as a
	// production quantity without a period.
	SpecificityInferred Specificity = iota
	// SpecificityExact matches a fully specified non-canonical unit.
	SpecificityExact
	// SpecificityCanonical matches the canonical unit itself.
	SpecificityCanonical
)

// ParseSpecificity reads "inferred", "exact" or "canonical".
func ParseSpecificity(s string) (Specificity, error) {
	switch s {
	case "inferred":
		return SpecificityInferred, nil
	case "exact", "":
		return SpecificityExact, nil
	case "canonical":
		return SpecificityCanonical, nil
	}
	return 0, fmt.Errorf("unknown specificity %q", s)
}

func (s Specificity) String() string {
	switch s {
	case SpecificityInferred:
		return "inferred"
	case SpecificityCanonical:
		return "canonical"
	default:
		return "exact"
	}
}

// UnitRule converts a matched unit token to the canonical unit of its category
// by a constant factor.
type UnitRule struct {
	Name        string
	Category    Category
	Pattern     *regexp.Regexp
	Factor      float64
	TargetUnit  string
	Specificity Specificity
	// RateImplied is set when the token carries an annual period ("/Jahr").
	RateImplied bool
}

// Apply converts a magnitude into the canonical unit.
func (r UnitRule) Apply(magnitude float64) float64 { return magnitude * r.Factor }

// CoordinateShape recognizes one surface form of a coordinate pair and
// converts it to decimal degrees.
type CoordinateShape struct {
	Name  string
	Parse func(raw string) (coordinateMatch, bool)
}

// CompileUnitPattern anchors a unit expression at the start of a folded unit
// token. The expression must be followed by the end of the token or by a
// character that is neither a letter, a digit nor "/".
func CompileUnitPattern(expr string) (*regexp.Regexp, error) {
	return regexp.Compile(`^(?:` + expr + `)(?:$|[^\pL\pN/])`)
}

func mustUnitPattern(expr string) *regexp.Regexp {
	re, err := CompileUnitPattern(expr)
	if err != nil {
		panic(err)
	}
	return re
}

// RuleTable is an ordered, read-only set of unit rules and coordinate shapes.
// It is safe for concurrent use.
type RuleTable struct {
	units  map[Category][]UnitRule
	shapes []CoordinateShape
}

// NewRuleTable validates and indexes rules. Order within a category is match
// priority.
func NewRuleTable(rules []UnitRule, shapes []CoordinateShape) (*RuleTable, error) {
	t := &RuleTable{
		units:  make(map[Category][]UnitRule),
		shapes: append([]CoordinateShape(nil), shapes...),
	}
	for _, r := range rules {
		if err := validateRule(r); err != nil {
			return nil, err
		}
		t.units[r.Category] = append(t.units[r.Category], r)
	}
	return t, nil
}

func validateRule(r UnitRule) error {
	switch {
	case r.Category != CategoryProduction && r.Category != CategoryArea:
		return fmt.Errorf("rule %q: category %q has no unit rules", r.Name, r.Category)
	case r.Pattern == nil:
		return fmt.Errorf("rule %q: missing pattern", r.Name)
	case !(r.Factor > 0):
		return fmt.Errorf("rule %q: factor must be positive, got %g", r.Name, r.Factor)
	case r.TargetUnit == "":
		return fmt.Errorf("rule %q: missing target unit", r.Name)
	}
	return nil
}

// With returns a new table in which extra rules take priority over the
// existing rules of their category.
func (t *RuleTable) With(extra ...UnitRule) (*RuleTable, error) {
	if len(extra) == 0 {
		return t, nil
	}
	var rules []UnitRule
	rules = append(rules, extra...)
	for _, c := range []Category{CategoryProduction, CategoryArea} {
		rules = append(rules, t.units[c]...)
	}
	return NewRuleTable(rules, t.shapes)
}

// Match returns the first rule of the category whose pattern matches the
// folded unit token.
func (t *RuleTable) Match(c Category, unitToken string) (UnitRule, bool) {
	for _, r := range t.units[c] {
		if r.Pattern.MatchString(unitToken) {
			return r, true
		}
	}
	return UnitRule{}, false
}

// Rules returns a copy of the rules of one category in priority order.
func (t *RuleTable) Rules(c Category) []UnitRule {
	return append([]UnitRule(nil), t.units[c]...)
}

// Shapes returns the coordinate shapes in priority order.
func (t *RuleTable) Shapes() []CoordinateShape {
	return append([]CoordinateShape(nil), t.shapes...)
}

// ErrNoRules is returned when a rule overlay defines nothing.
var ErrNoRules = errors.New("no rules defined")

const (
	// period is an annual period marker following a quantity unit.
	period = `(?:\s*(?:/|per\b|pro\b|par\b)\s*(?:jahr|j|a|year|yr|an|annum)|\s+p\.\s*a\.?)`

	tonnes  = `(?:t|tonnes?|tons?|tonnen)`
	million = `(?:million|millionen|mio\.?)\s*`
	ounces  = `(?:oz|ounces?|unzen)(?:\s*(?:au|gold))?`
	kilos   = `(?:kg|kilogramm|kilograms?)`
	grams   = `(?:g|gramm|grams?)`

	ozToTonnes = 31.1035e-6
)

func productionRule(name, expr string, factor float64, spec Specificity, rate bool) UnitRule {
	return UnitRule{
		Name:        name,
		Category:    CategoryProduction,
		Pattern:     mustUnitPattern(expr),
		Factor:      factor,
		TargetUnit:  UnitTonnesPerYear,
		Specificity: spec,
		RateImplied: rate,
	}
}

func areaRule(name, expr string, factor float64, spec Specificity) UnitRule {
	return UnitRule{
		Name:        name,
		Category:    CategoryArea,
		Pattern:     mustUnitPattern(expr),
		Factor:      factor,
		TargetUnit:  UnitSquareKm,
		Specificity: spec,
	}
}

func defaultUnitRules() []UnitRule {
	return []UnitRule{
		productionRule("t/Jahr", `t\s*/\s*jahr`, 1, SpecificityCanonical, true),
		productionRule("million tonnes/year", million+tonnes+period, 1e6, SpecificityExact, true),
		productionRule("million tonnes", million+tonnes, 1e6, SpecificityInferred, false),
		productionRule("Mt/year", `mt`+period, 1e6, SpecificityExact, true),
		productionRule("Mt", `mt`, 1e6, SpecificityInferred, false),
		productionRule("oz/year", ounces+period, ozToTonnes, SpecificityExact, true),
		productionRule("oz", ounces, ozToTonnes, SpecificityInferred, false),
		productionRule("kg/year", kilos+period, 1e-3, SpecificityExact, true),
		productionRule("kg", kilos, 1e-3, SpecificityInferred, false),
		productionRule("g/year", grams+period, 1e-6, SpecificityExact, true),
		productionRule("g", grams, 1e-6, SpecificityInferred, false),
		productionRule("t/year", tonnes+period, 1, SpecificityExact, true),
		productionRule("t", tonnes, 1, SpecificityInferred, false),

		areaRule("km²", `km²|km2|qkm|sq\.?\s*km|square\s+kilomet(?:re|er)s?|quadratkilometer`, 1, SpecificityCanonical),
		areaRule("ha", `ha|hectares?|hektar`, 0.01, SpecificityExact),
		areaRule("m²", `m²|m2|qm|sq\.?\s*m|square\s+met(?:re|er)s?|quadratmeter`, 1e-6, SpecificityExact),
		areaRule("ft²", `ft²|ft2|sq\.?\s*ft|square\s+f(?:oo|ee)t`, 9.2903e-8, SpecificityExact),
	}
}

func defaultShapes() []CoordinateShape {
	return []CoordinateShape{
		{Name: "dms", Parse: parseDMS},
		{Name: "decimal", Parse: parseDecimalPair},
		{Name: "utm", Parse: parseUTM},
	}
}

var defaultRules = mustDefaultRules()

func mustDefaultRules() *RuleTable {
	t, err := NewRuleTable(defaultUnitRules(), defaultShapes())
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultRules returns the built-in rule table.
func DefaultRules() *RuleTable { return defaultRules }

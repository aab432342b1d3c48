// Package rulefile loads extra unit rules from a YAML overlay file.
//
// An overlay lists linear synonyms the built-in table does not know:
//
//	rules:
//	  - name: acre
//	    category: area
//	    pattern: 'acres?|ac'
//	    factor: 0.00404686
//	    specificity: exact
//
// Overlay rules are checked before the built-in rules of their category.
package rulefile

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/couchcryptid/mine-data-normalizer/internal/domain"
)

// File is the YAML document layout.
type File struct {
	Rules []Rule `yaml:"rules"`
}

// Rule is one overlay unit rule. Pattern is matched against the folded
// (lower-case, diacritic-free) unit token.
type Rule struct {
	Name        string  `yaml:"name"`
	Category    string  `yaml:"category"`
	Pattern     string  `yaml:"pattern"`
	Factor      float64 `yaml:"factor"`
	TargetUnit  string  `yaml:"target_unit,omitempty"`
	Specificity string  `yaml:"specificity,omitempty"`
	RateImplied bool    `yaml:"rate_implied,omitempty"`
}

// Load reads the overlay at path and returns base extended with its rules.
func Load(path string, base *domain.RuleTable) (*domain.RuleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	rules, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rule file %s: %w", path, err)
	}
	if base == nil {
		base = domain.DefaultRules()
	}
	return base.With(rules...)
}

// Parse decodes and validates an overlay document.
func Parse(data []byte) ([]domain.UnitRule, error) {
	var f File
	if err := yaml.UnmarshalWithOptions(data, &f, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, domain.ErrNoRules
	}

	out := make([]domain.UnitRule, 0, len(f.Rules))
	for i, r := range f.Rules {
		rule, err := r.compile()
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i+1, r.Name, err)
		}
		out = append(out, rule)
	}
	return out, nil
}

func (r Rule) compile() (domain.UnitRule, error) {
	category, _, err := domain.ParseCategory(r.Category)
	if err != nil {
		return domain.UnitRule{}, err
	}
	if defaultTarget(category) == "" {
		return domain.UnitRule{}, fmt.Errorf("category %s takes no unit rules", category)
	}
	if r.Pattern == "" {
		return domain.UnitRule{}, errors.New("missing pattern")
	}
	if !(r.Factor > 0) {
		return domain.UnitRule{}, fmt.Errorf("factor must be positive, got %g", r.Factor)
	}
	pattern, err := domain.CompileUnitPattern(r.Pattern)
	if err != nil {
		return domain.UnitRule{}, fmt.Errorf("pattern: %w", err)
	}
	spec, err := domain.ParseSpecificity(r.Specificity)
	if err != nil {
		return domain.UnitRule{}, err
	}

	target := r.TargetUnit
	if target == "" {
		target = defaultTarget(category)
	}
	if target != defaultTarget(category) {
		return domain.UnitRule{}, fmt.Errorf("target unit %q does not match category %s", target, category)
	}

	return domain.UnitRule{
		Name:        r.Name,
		Category:    category,
		Pattern:     pattern,
		Factor:      r.Factor,
		TargetUnit:  target,
		Specificity: spec,
		RateImplied: r.RateImplied,
	}, nil
}

func defaultTarget(c domain.Category) string {
	switch c {
	case domain.CategoryProduction:
		return domain.UnitTonnesPerYear
	case domain.CategoryArea:
		return domain.UnitSquareKm
	}
	return ""
}

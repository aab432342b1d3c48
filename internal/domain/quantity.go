package domain

import "strings"

// matchedCandidate is a candidate resolved against a unit rule.
type matchedCandidate struct {
	Candidate
	rule  UnitRule
	value float64
	rank  float64
}

// convertQuantity runs the shared production/area conversion: scan, match
// each candidate, keep the best-scoring match and mention the rest in the
// provenance only.
func convertQuantity(t *RuleTable, f MeasurementField, describe func(matchedCandidate) string) ConversionResult {
	res := ConversionResult{Category: f.Category, Role: f.Role}

	cands := ScanCandidates(f.RawText)
	if len(cands) == 0 {
		return noMatch(res, "unparsed")
	}

	var (
		matched   []matchedCandidate
		unmatched []string
		bounded   bool
	)
	for _, c := range cands {
		bounded = bounded || c.Bounded()
		rule, ok := t.Match(f.Category, c.UnitToken)
		if !ok {
			unmatched = append(unmatched, c.describe())
			continue
		}
		matched = append(matched, matchedCandidate{
			Candidate: c,
			rule:      rule,
			value:     rule.Apply(c.Magnitude),
			rank:      score(baseConfidence(f.Category, selectionTier(rule.Specificity)), c.Bounded(), 0),
		})
	}

	if len(matched) == 0 {
		res.Outcome = OutcomePartialMatch
		res.Confidence = partialConfidence
		res.Provenance = "unrecognized unit: " + strings.Join(unmatched, ", ")
		return res
	}

	best := 0
	for i := range matched {
		if matched[i].rank > matched[best].rank {
			best = i
		}
	}
	chosen := matched[best]

	prov := []string{describe(chosen)}
	var alternatives []string
	for i := range matched {
		if i != best {
			alternatives = append(alternatives, describe(matched[i]))
		}
	}
	if len(alternatives) > 0 {
		prov = append(prov, "alternatives: "+strings.Join(alternatives, ", "))
	}
	if len(unmatched) > 0 {
		prov = append(prov, "unrecognized: "+strings.Join(unmatched, ", "))
	}

	res.Outcome = OutcomeFullMatch
	if chosen.rule.Specificity == SpecificityInferred {
		res.Outcome = OutcomeDegradedMatch
	}
	res.Value = chosen.value
	res.Unit = chosen.rule.TargetUnit
	res.Confidence = score(baseConfidence(f.Category, chosen.rule.Specificity), bounded, 0)
	res.Provenance = strings.Join(prov, "; ")
	res.Formatted = formatCanonical(f.Category, chosen.value)
	return res
}

// selectionTier ranks a canonical token alongside exact compounds when
// choosing between candidates, so "2,4 Mt/Jahr; 6 600 t/Jahr" keeps the
// first figure. The canonical tier still sets the reported confidence.
func selectionTier(s Specificity) Specificity {
	if s == SpecificityCanonical {
		return SpecificityExact
	}
	return s
}

func noMatch(res ConversionResult, provenance string) ConversionResult {
	res.Outcome = OutcomeNoMatch
	res.Value = 0
	res.Confidence = 0
	res.Provenance = provenance
	return res
}

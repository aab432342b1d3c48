package domain

// convertProduction normalizes a production rate to t/Jahr.
func convertProduction(t *RuleTable, f MeasurementField) ConversionResult {
	return convertQuantity(t, f, describeProduction)
}

// describeProduction renders "2.4 Mt/Jahr → 2400000.0 t/Jahr". Quantities
// without a period are read as annual and flagged.
func describeProduction(m matchedCandidate) string {
	s := m.describe() + " → " + formatProduction(m.value)
	if !m.rule.RateImplied {
		s += " (rate unit mismatch: no period given, read as per year)"
	}
	return s
}

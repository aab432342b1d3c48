package domain

// convertArea normalizes an area figure to km². Each field role is converted
// on its own.
func convertArea(t *RuleTable, f MeasurementField) ConversionResult {
	if f.Role == RoleNone {
		f.Role = RoleGeneral
	}
	return convertQuantity(t, f, describeArea)
}

// describeArea renders "77.8 ha → 0.7780 km²".
func describeArea(m matchedCandidate) string {
	return m.describe() + " → " + formatArea(m.value)
}

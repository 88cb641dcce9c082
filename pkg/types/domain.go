// Package types holds the JSON shapes exchanged over the HTTP API.
package types

// Map returns the request as the loosely typed payload the server decodes.
func (r PredictRequest) Map() map[string]any {
	m := map[string]any{
		"cEE":      r.CEE,
		"cH2":      r.CH2,
		"cNG":      r.CNG,
		"cbioCH4":  r.CBioCH4,
		"cbiomass": r.CBiomass,
		"cCoal":    r.CCoal,
		"cMSW":     r.CMSW,
		"cCO2":     r.CCO2,
		"cCO2TnS":  r.CCO2TnS,
	}
	if r.EmissionScenario != "" {
		m["emission_scenario"] = r.EmissionScenario
	}
	return m
}

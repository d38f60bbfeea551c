package model

// Actor represents a national or subnational government entity
type Actor struct {
	ID   string `json:"actor"` // ISO-style code, e.g. "CA" or "CA-ON"
	Name string `json:"name"`  // Display name, e.g. "Canada"
}

// EmissionsRecord is a single fact row from an emissions inventory
type EmissionsRecord struct {
	Actor          string  `json:"actor"`           // Actor code
	Year           int     `json:"year"`            // Reporting year
	TotalEmissions float64 `json:"total_emissions"` // Tonnes CO2e
}

// Pledge is a stated emissions-reduction commitment
type Pledge struct {
	BaselineYear int     `json:"baseline_year"` // Reference year for the reduction
	TargetValue  float64 `json:"target_value"`  // Percentage reduction, 0-100
	TargetType   string  `json:"target_type,omitempty"`
	TargetYear   int     `json:"target_year,omitempty"`
}

// Target is the absolute emissions level implied by a pledge.
// Derived on demand from a pledge and the actor's historical series,
// never persisted.
type Target struct {
	Actor         string  `json:"actor"`
	BaselineYear  int     `json:"baseline_year"`
	TargetPercent float64 `json:"target_percent"`
	Baseline      float64 `json:"baseline"` // Emissions in the baseline year
	Level         float64 `json:"level"`    // Baseline * (100 - TargetPercent) / 100
}

// TonnesToGigatonnes converts inventory values (tonnes CO2e) to the
// gigatonnes used on chart axes.
const TonnesToGigatonnes = 1e-9

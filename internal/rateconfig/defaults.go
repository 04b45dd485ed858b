package rateconfig

// DefaultRateTable is the hardcoded fallback used whenever no active
// definition resolves for a category and date. It keeps payroll computable
// before administrative seeding and is the single source of the default
// literals for every calculator.
type DefaultRateTable struct {
	PAYE         GraduatedParams
	HealthLevy   PercentageParams
	PensionTier1 TieredParams
	PensionTier2 TieredParams
	HousingLevy  PercentageParams
}

// Defaults mirrors the rates in force as of February 2025. Percentages are
// fractions, amounts are KES.
func Defaults() DefaultRateTable {
	return DefaultRateTable{
		PAYE: GraduatedParams{
			Brackets: []Bracket{
				{From: 0, To: f64(24000), Rate: 0.10},
				{From: 24001, To: f64(32333), Rate: 0.25},
				{From: 32334, To: f64(500000), Rate: 0.30},
				{From: 500001, To: f64(800000), Rate: 0.325},
				{From: 800001, To: nil, Rate: 0.35},
			},
			PersonalRelief: 2400,
		},
		HealthLevy: PercentageParams{
			Percentage: 0.0275,
			MinAmount:  f64(300),
		},
		PensionTier1: TieredParams{
			Tiers: []Tier{{Name: "Tier I", SalaryFrom: 0, SalaryTo: 8000, Rate: 0.06}},
		},
		PensionTier2: TieredParams{
			Tiers: []Tier{{Name: "Tier II", SalaryFrom: 8001, SalaryTo: 72000, Rate: 0.06}},
		},
		HousingLevy: PercentageParams{
			Percentage: 0.015,
		},
	}
}

func f64(v float64) *float64 {
	return &v
}

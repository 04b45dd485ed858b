package tax

import (
	"math"

	"go-payroll/internal/rateconfig"
)

// CalculateHealthLevy applies the SHIF percentage with its minimum floor and,
// when configured, a maximum cap. Current rules carry no cap. A zero salary
// owes nothing; the floor binds only earners.
func CalculateHealthLevy(grossSalary float64, params rateconfig.PercentageParams) float64 {
	if grossSalary <= 0 {
		return 0
	}
	amount := grossSalary * params.Percentage
	if params.MinAmount != nil {
		amount = math.Max(amount, *params.MinAmount)
	}
	if params.MaxAmount != nil {
		amount = math.Min(amount, *params.MaxAmount)
	}
	return Round2(amount)
}

// CalculateHousingLevy is a flat percentage of gross salary with no floor or
// cap under current rules.
func CalculateHousingLevy(grossSalary float64, params rateconfig.PercentageParams) float64 {
	return Round2(grossSalary * params.Percentage)
}

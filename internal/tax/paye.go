package tax

import (
	"math"

	"go-payroll/internal/rateconfig"
)

// CalculatePAYE walks the graduated brackets over salary net of the pension
// deduction, each bracket taxing only the income inside it, then subtracts
// personal relief and floors at zero.
//
// Tracking previousLimit from each bracket's upper bound keeps boundary
// salaries from being double-counted or gapped by a shilling.
func CalculatePAYE(grossSalary, pensionDeduction float64, params rateconfig.GraduatedParams) float64 {
	taxableIncome := grossSalary - pensionDeduction

	var tax float64
	remainingIncome := taxableIncome
	previousLimit := 0.0

	for _, bracket := range params.Brackets {
		if remainingIncome <= 0 {
			break
		}

		var taxableAmount float64
		if bracket.To == nil {
			taxableAmount = remainingIncome
		} else {
			taxableAmount = math.Min(remainingIncome, *bracket.To-previousLimit)
		}

		tax += taxableAmount * bracket.Rate
		remainingIncome -= taxableAmount
		if bracket.To != nil {
			previousLimit = *bracket.To
		}
	}

	return Round2(math.Max(0, tax-params.PersonalRelief))
}

package tax

import (
	"math"

	"go-payroll/internal/rateconfig"
)

// CalculatePension sums the two NSSF tiers. Tier I taxes salary up to its
// band limit; Tier II applies only to salary above that limit and is capped
// by its own band width no matter how far salary exceeds it.
//
// Each tier category carries a single band under current rules; the first
// entry governs.
func CalculatePension(grossSalary float64, tier1, tier2 rateconfig.TieredParams) float64 {
	var total float64

	tier1Limit := 0.0
	if len(tier1.Tiers) > 0 {
		t := tier1.Tiers[0]
		tier1Limit = t.SalaryTo
		total += math.Min(grossSalary, t.SalaryTo) * t.Rate
	}

	if len(tier2.Tiers) > 0 && grossSalary > tier1Limit {
		t := tier2.Tiers[0]
		total += math.Min(grossSalary-tier1Limit, t.SalaryTo-t.SalaryFrom) * t.Rate
	}

	return Round2(total)
}

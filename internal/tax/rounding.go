package tax

import "math"

// Round2 rounds to two decimals, half away from zero, matching standard
// currency rounding. Every deduction leg is rounded with this before the
// legs are summed, and the sum is rounded again.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// sanitizeSalary clamps invalid input to zero so one bad record never fails
// a whole payroll batch. Validation belongs to the calling layer.
func sanitizeSalary(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

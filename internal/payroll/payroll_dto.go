package payroll

import "go-payroll/internal/tax"

type SalaryEntry struct {
	Label       string  `json:"label"`
	GrossSalary float64 `json:"gross_salary"`
}

type CalculatePayrollRequest struct {
	Salaries []SalaryEntry `json:"salaries" binding:"required,min=1,dive"`
	Date     *string       `json:"date"`
}

type CalculateWorkersRequest struct {
	Date *string `json:"date"`
}

// PayrollLine is one worker's computed payroll for the period.
type PayrollLine struct {
	WorkerID     string        `json:"workerId,omitempty"`
	WorkerName   string        `json:"workerName"`
	PhoneNumber  string        `json:"phoneNumber,omitempty"`
	GrossSalary  float64       `json:"grossSalary"`
	TaxBreakdown tax.Breakdown `json:"taxBreakdown"`
	NetPay       float64       `json:"netPay"`
}

// BatchSummary totals are sums of the already-rounded per-line values,
// re-rounded once.
type BatchSummary struct {
	TotalGross      float64 `json:"totalGross"`
	TotalDeductions float64 `json:"totalDeductions"`
	TotalNetPay     float64 `json:"totalNetPay"`
	WorkerCount     int     `json:"workerCount"`
}

type BatchPayrollResponse struct {
	Date    string        `json:"date"`
	Lines   []PayrollLine `json:"lines"`
	Summary BatchSummary  `json:"summary"`
}

package tax

type CalculateTaxesRequest struct {
	// Negative or non-finite salaries compute as zero rather than failing;
	// strict validation belongs to the caller.
	GrossSalary float64 `json:"gross_salary"`
	Date        *string `json:"date"`
}

type CalculateTaxesResponse struct {
	GrossSalary float64   `json:"gross_salary"`
	Date        string    `json:"date"`
	Breakdown   Breakdown `json:"breakdown"`
	NetPay      float64   `json:"net_pay"`
}

package rateconfig

// ParametersPayload carries the flat shape-specific document accepted by the
// admin API; field names match the persisted jsonb document.
type ParametersPayload struct {
	Brackets           []Bracket `json:"brackets,omitempty"`
	PersonalRelief     *float64  `json:"personalRelief,omitempty"`
	InsuranceRelief    *float64  `json:"insuranceRelief,omitempty"`
	MaxInsuranceRelief *float64  `json:"maxInsuranceRelief,omitempty"`
	Percentage         *float64  `json:"percentage,omitempty"`
	MinAmount          *float64  `json:"minAmount,omitempty"`
	MaxAmount          *float64  `json:"maxAmount,omitempty"`
	Tiers              []Tier    `json:"tiers,omitempty"`
}

type CreateRateDefinitionRequest struct {
	Category        string            `json:"category" binding:"required,oneof=PAYE HEALTH_LEVY PENSION_TIER1 PENSION_TIER2 HOUSING_LEVY"`
	RateShape       string            `json:"rate_shape" binding:"required,oneof=GRADUATED PERCENTAGE TIERED"`
	EffectiveFrom   string            `json:"effective_from" binding:"required"`
	EffectiveTo     *string           `json:"effective_to"`
	Parameters      ParametersPayload `json:"parameters" binding:"required"`
	PaymentDeadline *string           `json:"payment_deadline"`
	Notes           *string           `json:"notes"`
}

type RateDefinitionResponse struct {
	ID              string     `json:"id"`
	Category        string     `json:"category"`
	RateShape       string     `json:"rate_shape"`
	EffectiveFrom   string     `json:"effective_from"`
	EffectiveTo     *string    `json:"effective_to,omitempty"`
	Parameters      Parameters `json:"parameters"`
	PaymentDeadline string     `json:"payment_deadline"`
	IsActive        bool       `json:"is_active"`
	Notes           *string    `json:"notes,omitempty"`
}

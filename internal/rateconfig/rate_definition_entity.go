package rateconfig

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryPAYE         Category = "PAYE"
	CategoryHealthLevy   Category = "HEALTH_LEVY"
	CategoryPensionTier1 Category = "PENSION_TIER1"
	CategoryPensionTier2 Category = "PENSION_TIER2"
	CategoryHousingLevy  Category = "HOUSING_LEVY"
)

// Categories lists every statutory deduction category in computation order.
func Categories() []Category {
	return []Category{
		CategoryPAYE,
		CategoryHealthLevy,
		CategoryPensionTier1,
		CategoryPensionTier2,
		CategoryHousingLevy,
	}
}

type RateShape string

const (
	ShapeGraduated  RateShape = "GRADUATED"
	ShapePercentage RateShape = "PERCENTAGE"
	ShapeTiered     RateShape = "TIERED"
)

// Bracket is one graduated income band. To == nil means unbounded; only the
// last bracket of a definition may be unbounded.
type Bracket struct {
	From float64  `json:"from"`
	To   *float64 `json:"to"`
	Rate float64  `json:"rate"`
}

// Tier taxes only the portion of salary between SalaryFrom and SalaryTo.
type Tier struct {
	Name       string  `json:"name,omitempty"`
	SalaryFrom float64 `json:"salaryFrom"`
	SalaryTo   float64 `json:"salaryTo"`
	Rate       float64 `json:"rate"`
}

type GraduatedParams struct {
	Brackets       []Bracket `json:"brackets"`
	PersonalRelief float64   `json:"personalRelief"`
	// Insurance relief is informational only; it is not applied in the
	// main computation.
	InsuranceRelief    *float64 `json:"insuranceRelief,omitempty"`
	MaxInsuranceRelief *float64 `json:"maxInsuranceRelief,omitempty"`
}

type PercentageParams struct {
	Percentage float64  `json:"percentage"`
	MinAmount  *float64 `json:"minAmount,omitempty"`
	MaxAmount  *float64 `json:"maxAmount,omitempty"`
}

type TieredParams struct {
	Tiers []Tier `json:"tiers"`
}

// Parameters is the shape-tagged payload of a rate definition. Exactly one
// variant is set, matching the definition's RateShape. It persists as the
// same flat jsonb document the admin API accepts.
type Parameters struct {
	Graduated  *GraduatedParams
	Percentage *PercentageParams
	Tiered     *TieredParams
}

// parametersDoc is the flat wire/storage form of Parameters.
type parametersDoc struct {
	Brackets           []Bracket `json:"brackets,omitempty"`
	PersonalRelief     *float64  `json:"personalRelief,omitempty"`
	InsuranceRelief    *float64  `json:"insuranceRelief,omitempty"`
	MaxInsuranceRelief *float64  `json:"maxInsuranceRelief,omitempty"`
	Percentage         *float64  `json:"percentage,omitempty"`
	MinAmount          *float64  `json:"minAmount,omitempty"`
	MaxAmount          *float64  `json:"maxAmount,omitempty"`
	Tiers              []Tier    `json:"tiers,omitempty"`
}

func (p Parameters) MarshalJSON() ([]byte, error) {
	doc := parametersDoc{}
	switch {
	case p.Graduated != nil:
		doc.Brackets = p.Graduated.Brackets
		relief := p.Graduated.PersonalRelief
		doc.PersonalRelief = &relief
		doc.InsuranceRelief = p.Graduated.InsuranceRelief
		doc.MaxInsuranceRelief = p.Graduated.MaxInsuranceRelief
	case p.Percentage != nil:
		pct := p.Percentage.Percentage
		doc.Percentage = &pct
		doc.MinAmount = p.Percentage.MinAmount
		doc.MaxAmount = p.Percentage.MaxAmount
	case p.Tiered != nil:
		doc.Tiers = p.Tiered.Tiers
	}
	return json.Marshal(doc)
}

func (p *Parameters) UnmarshalJSON(data []byte) error {
	var doc parametersDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	*p = Parameters{}
	switch {
	case len(doc.Brackets) > 0:
		g := &GraduatedParams{
			Brackets:           doc.Brackets,
			InsuranceRelief:    doc.InsuranceRelief,
			MaxInsuranceRelief: doc.MaxInsuranceRelief,
		}
		if doc.PersonalRelief != nil {
			g.PersonalRelief = *doc.PersonalRelief
		}
		p.Graduated = g
	case len(doc.Tiers) > 0:
		p.Tiered = &TieredParams{Tiers: doc.Tiers}
	case doc.Percentage != nil:
		p.Percentage = &PercentageParams{
			Percentage: *doc.Percentage,
			MinAmount:  doc.MinAmount,
			MaxAmount:  doc.MaxAmount,
		}
	}
	return nil
}

func (p Parameters) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *Parameters) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		*p = Parameters{}
		return nil
	default:
		return fmt.Errorf("unsupported parameters column type %T", value)
	}
}

// RateDefinition is one tax category's rule for one effective window.
// Superseded rows are never mutated or deleted so that historical payroll
// stays reproducible.
type RateDefinition struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Category        Category   `gorm:"type:varchar(20);not null;index:idx_category_effective,unique"`
	RateShape       RateShape  `gorm:"type:varchar(20);not null"`
	EffectiveFrom   time.Time  `gorm:"type:date;not null;index:idx_category_effective,unique"`
	EffectiveTo     *time.Time `gorm:"type:date"`
	Parameters      Parameters `gorm:"type:jsonb;not null"`
	PaymentDeadline string     `gorm:"type:varchar(60);not null;default:'9th of following month'"`
	IsActive        bool       `gorm:"not null;default:true"`
	Notes           *string    `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (RateDefinition) TableName() string {
	return "rate_definitions"
}

// Day truncates t to calendar-day granularity in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Covers reports whether the definition's effective window includes date,
// compared at day granularity. Both window bounds are inclusive.
func (r *RateDefinition) Covers(date time.Time) bool {
	d := Day(date)
	if d.Before(Day(r.EffectiveFrom)) {
		return false
	}
	if r.EffectiveTo != nil && d.After(Day(*r.EffectiveTo)) {
		return false
	}
	return true
}

// Validate checks that the parameters variant matches the declared shape and
// that bracket/tier lists are well formed. A violation here is a
// configuration bug needing operator attention, not a user-facing condition.
func (r *RateDefinition) Validate() error {
	if r.EffectiveTo != nil && Day(*r.EffectiveTo).Before(Day(r.EffectiveFrom)) {
		return errors.New("effective_to precedes effective_from")
	}

	switch r.RateShape {
	case ShapeGraduated:
		if r.Parameters.Graduated == nil {
			return fmt.Errorf("%s definition carries no graduated brackets", r.Category)
		}
		return validateBrackets(r.Parameters.Graduated.Brackets)
	case ShapePercentage:
		p := r.Parameters.Percentage
		if p == nil {
			return fmt.Errorf("%s definition carries no percentage", r.Category)
		}
		if p.Percentage < 0 {
			return fmt.Errorf("%s percentage is negative", r.Category)
		}
		return nil
	case ShapeTiered:
		if r.Parameters.Tiered == nil {
			return fmt.Errorf("%s definition carries no tiers", r.Category)
		}
		return validateTiers(r.Parameters.Tiered.Tiers)
	default:
		return fmt.Errorf("unknown rate shape %q", r.RateShape)
	}
}

func validateBrackets(brackets []Bracket) error {
	if len(brackets) == 0 {
		return errors.New("bracket list is empty")
	}
	prevFrom := -1.0
	for i, b := range brackets {
		if b.From <= prevFrom {
			return fmt.Errorf("bracket %d out of order", i)
		}
		if b.To == nil {
			if i != len(brackets)-1 {
				return fmt.Errorf("bracket %d is unbounded but not last", i)
			}
		} else if *b.To < b.From {
			return fmt.Errorf("bracket %d has to < from", i)
		}
		if b.Rate < 0 {
			return fmt.Errorf("bracket %d has negative rate", i)
		}
		prevFrom = b.From
	}
	return nil
}

func validateTiers(tiers []Tier) error {
	if len(tiers) == 0 {
		return errors.New("tier list is empty")
	}
	prevFrom := -1.0
	for i, t := range tiers {
		if t.SalaryFrom <= prevFrom {
			return fmt.Errorf("tier %d out of order", i)
		}
		if t.SalaryTo < t.SalaryFrom {
			return fmt.Errorf("tier %d has salaryTo < salaryFrom", i)
		}
		if t.Rate < 0 {
			return fmt.Errorf("tier %d has negative rate", i)
		}
		prevFrom = t.SalaryFrom
	}
	return nil
}

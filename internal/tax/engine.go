package tax

import (
	"context"
	"fmt"
	"time"

	"go-payroll/internal/rateconfig"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Breakdown is the computed statutory deduction set for one salary and date.
// TotalDeductions equals the sum of the four legs, re-rounded to 2dp.
type Breakdown struct {
	Pension         float64 `json:"pension"`
	HealthLevy      float64 `json:"healthLevy"`
	HousingLevy     float64 `json:"housingLevy"`
	IncomeTax       float64 `json:"incomeTax"`
	TotalDeductions float64 `json:"totalDeductions"`
}

// RateSource resolves the rate definition governing a category on a date.
// nil means no definition is configured; the engine then falls back to the
// default rate table.
type RateSource interface {
	GetActiveRate(ctx context.Context, category rateconfig.Category, date time.Time) (*rateconfig.RateDefinition, error)
}

type Engine struct {
	rates    RateSource
	defaults rateconfig.DefaultRateTable
	logger   *zap.Logger
}

func NewEngine(rates RateSource) *Engine {
	return &Engine{
		rates:    rates,
		defaults: rateconfig.Defaults(),
		logger:   zap.L().Named("tax.engine"),
	}
}

// ComputeBreakdown runs the four calculators for one gross salary and date.
// Pension is computed first because PAYE is levied on income net of pension;
// the health levy, housing levy and PAYE legs are independent and fan out
// concurrently.
//
// A missing or unreachable rate configuration degrades silently to the
// default table so that payroll always computes. Only a present-but-malformed
// definition returns an error: that is a configuration bug needing operator
// attention.
func (e *Engine) ComputeBreakdown(ctx context.Context, grossSalary float64, date time.Time) (Breakdown, error) {
	gross := sanitizeSalary(grossSalary)

	tier1, err := e.resolveTiered(ctx, rateconfig.CategoryPensionTier1, date, e.defaults.PensionTier1)
	if err != nil {
		return Breakdown{}, err
	}
	tier2, err := e.resolveTiered(ctx, rateconfig.CategoryPensionTier2, date, e.defaults.PensionTier2)
	if err != nil {
		return Breakdown{}, err
	}
	pension := CalculatePension(gross, tier1, tier2)

	var healthLevy, housingLevy, incomeTax float64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		params, err := e.resolvePercentage(gctx, rateconfig.CategoryHealthLevy, date, e.defaults.HealthLevy)
		if err != nil {
			return err
		}
		healthLevy = CalculateHealthLevy(gross, params)
		return nil
	})
	g.Go(func() error {
		params, err := e.resolvePercentage(gctx, rateconfig.CategoryHousingLevy, date, e.defaults.HousingLevy)
		if err != nil {
			return err
		}
		housingLevy = CalculateHousingLevy(gross, params)
		return nil
	})
	g.Go(func() error {
		params, err := e.resolveGraduated(gctx, rateconfig.CategoryPAYE, date, e.defaults.PAYE)
		if err != nil {
			return err
		}
		incomeTax = CalculatePAYE(gross, pension, params)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Breakdown{}, err
	}

	return Breakdown{
		Pension:         pension,
		HealthLevy:      healthLevy,
		HousingLevy:     housingLevy,
		IncomeTax:       incomeTax,
		TotalDeductions: Round2(pension + healthLevy + housingLevy + incomeTax),
	}, nil
}

// NetPay is gross minus total deductions, rounded to 2dp.
func (e *Engine) NetPay(ctx context.Context, grossSalary float64, date time.Time) (float64, error) {
	breakdown, err := e.ComputeBreakdown(ctx, grossSalary, date)
	if err != nil {
		return 0, err
	}
	return Round2(sanitizeSalary(grossSalary) - breakdown.TotalDeductions), nil
}

func (e *Engine) resolveGraduated(
	ctx context.Context,
	category rateconfig.Category,
	date time.Time,
	fallback rateconfig.GraduatedParams,
) (rateconfig.GraduatedParams, error) {
	def := e.lookup(ctx, category, date)
	if def == nil {
		return fallback, nil
	}
	if err := def.Validate(); err != nil {
		return rateconfig.GraduatedParams{}, err
	}
	if def.Parameters.Graduated == nil {
		return rateconfig.GraduatedParams{}, fmt.Errorf("%s definition is not graduated", category)
	}
	return *def.Parameters.Graduated, nil
}

func (e *Engine) resolvePercentage(
	ctx context.Context,
	category rateconfig.Category,
	date time.Time,
	fallback rateconfig.PercentageParams,
) (rateconfig.PercentageParams, error) {
	def := e.lookup(ctx, category, date)
	if def == nil {
		return fallback, nil
	}
	if err := def.Validate(); err != nil {
		return rateconfig.PercentageParams{}, err
	}
	if def.Parameters.Percentage == nil {
		return rateconfig.PercentageParams{}, fmt.Errorf("%s definition is not a percentage", category)
	}
	return *def.Parameters.Percentage, nil
}

func (e *Engine) resolveTiered(
	ctx context.Context,
	category rateconfig.Category,
	date time.Time,
	fallback rateconfig.TieredParams,
) (rateconfig.TieredParams, error) {
	def := e.lookup(ctx, category, date)
	if def == nil {
		return fallback, nil
	}
	if err := def.Validate(); err != nil {
		return rateconfig.TieredParams{}, err
	}
	if def.Parameters.Tiered == nil {
		return rateconfig.TieredParams{}, fmt.Errorf("%s definition is not tiered", category)
	}
	return *def.Parameters.Tiered, nil
}

// lookup treats store failures the same as missing configuration: payroll
// must stay computable when the database or cache is down.
func (e *Engine) lookup(ctx context.Context, category rateconfig.Category, date time.Time) *rateconfig.RateDefinition {
	def, err := e.rates.GetActiveRate(ctx, category, date)
	if err != nil {
		e.logger.Warn("rate lookup failed, falling back to defaults",
			zap.String("category", string(category)),
			zap.Time("date", date),
			zap.Error(err),
		)
		return nil
	}
	return def
}

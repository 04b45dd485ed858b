package rateconfig

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Seed inserts the statutory rate definitions the service ships with.
// Idempotent: rows whose category+effective_from already exist are skipped,
// so it runs safely on every startup and across concurrent instances.
func (s *service) Seed(ctx context.Context) error {
	for _, def := range seedDefinitions() {
		exists, err := s.repo.ExistsAt(ctx, def.Category, def.EffectiveFrom)
		if err != nil {
			return err
		}
		if exists {
			s.logger.Debug("rate definition already seeded",
				zap.String("category", string(def.Category)),
				zap.Time("effective_from", def.EffectiveFrom),
			)
			continue
		}

		if err := s.repo.Create(ctx, &def); err != nil {
			if isUniqueRateViolation(err) {
				// Another instance won the race; same outcome.
				continue
			}
			return err
		}

		s.logger.Info("seeded rate definition",
			zap.String("category", string(def.Category)),
			zap.Time("effective_from", def.EffectiveFrom),
		)
	}
	return nil
}

func isUniqueRateViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func seedDefinitions() []RateDefinition {
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	return []RateDefinition{
		{
			Category:      CategoryPAYE,
			RateShape:     ShapeGraduated,
			EffectiveFrom: date(2023, time.July, 1),
			Parameters: Parameters{Graduated: &GraduatedParams{
				Brackets: []Bracket{
					{From: 0, To: f64(24000), Rate: 0.10},
					{From: 24001, To: f64(32333), Rate: 0.25},
					{From: 32334, To: f64(500000), Rate: 0.30},
					{From: 500001, To: f64(800000), Rate: 0.325},
					{From: 800001, To: nil, Rate: 0.35},
				},
				PersonalRelief:     2400,
				InsuranceRelief:    f64(0.15),
				MaxInsuranceRelief: f64(5000),
			}},
			PaymentDeadline: "9th of following month",
			IsActive:        true,
			Notes:           notes("PAYE rates effective July 1, 2023"),
		},
		{
			Category:      CategoryHealthLevy,
			RateShape:     ShapePercentage,
			EffectiveFrom: date(2024, time.October, 1),
			Parameters: Parameters{Percentage: &PercentageParams{
				Percentage: 0.0275,
				MinAmount:  f64(300),
			}},
			PaymentDeadline: "9th of following month",
			IsActive:        true,
			Notes:           notes("SHIF 2.75% of gross salary, min KES 300, no cap. Replaced NHIF Oct 1, 2024"),
		},
		{
			Category:      CategoryPensionTier1,
			RateShape:     ShapeTiered,
			EffectiveFrom: date(2025, time.February, 1),
			Parameters: Parameters{Tiered: &TieredParams{
				Tiers: []Tier{{Name: "Tier I", SalaryFrom: 0, SalaryTo: 8000, Rate: 0.06}},
			}},
			PaymentDeadline: "9th of following month",
			IsActive:        true,
			Notes:           notes("NSSF Tier I: 6% of first KES 8,000 (KES 480 each party)"),
		},
		{
			Category:      CategoryPensionTier2,
			RateShape:     ShapeTiered,
			EffectiveFrom: date(2025, time.February, 1),
			Parameters: Parameters{Tiered: &TieredParams{
				Tiers: []Tier{{Name: "Tier II", SalaryFrom: 8001, SalaryTo: 72000, Rate: 0.06}},
			}},
			PaymentDeadline: "9th of following month",
			IsActive:        true,
			Notes:           notes("NSSF Tier II: 6% of KES 8,001-72,000 (max KES 3,840 each party)"),
		},
		{
			Category:      CategoryHousingLevy,
			RateShape:     ShapePercentage,
			EffectiveFrom: date(2025, time.February, 1),
			Parameters: Parameters{Percentage: &PercentageParams{
				Percentage: 0.015,
			}},
			PaymentDeadline: "9th of following month",
			IsActive:        true,
			Notes:           notes("Housing Levy: 1.5% of gross salary (employer matches 1.5%)"),
		},
	}
}

func notes(s string) *string {
	return &s
}

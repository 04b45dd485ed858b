package rateconfig

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	rateconfigerrors "go-payroll/internal/rateconfig/errors"
	"go-payroll/internal/shared/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=rate_config_service.go -destination=mock/rate_config_service_mock.go -package=mock
type Service interface {
	// GetActiveRate resolves the definition governing category on date.
	// Returns nil (not an error) when no definition is configured.
	GetActiveRate(ctx context.Context, category Category, date time.Time) (*RateDefinition, error)
	ActiveSet(ctx context.Context, date time.Time) ([]RateDefinition, error)
	History(ctx context.Context, category Category) ([]RateDefinition, error)
	Create(ctx context.Context, actorID string, req CreateRateDefinitionRequest) (RateDefinitionResponse, error)
	Deactivate(ctx context.Context, id string) (RateDefinitionResponse, error)
	Seed(ctx context.Context) error
}

type service struct {
	db     *gorm.DB
	repo   Repository
	cache  *Cache
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, cache *Cache) Service {
	return NewServiceWithOutbox(db, repo, cache, nil)
}

func NewServiceWithOutbox(db *gorm.DB, repo Repository, cache *Cache, outbox kafka.OutboxRepository) Service {
	return &service{
		db:     db,
		repo:   repo,
		cache:  cache,
		outbox: outbox,
		logger: zap.L().Named("rateconfig.service"),
	}
}

func (s *service) GetActiveRate(ctx context.Context, category Category, date time.Time) (*RateDefinition, error) {
	load := func(ctx context.Context) (*RateDefinition, error) {
		return s.repo.FindActive(ctx, category, date)
	}

	if s.cache == nil {
		return load(ctx)
	}
	return s.cache.GetOrLoad(ctx, category, date, load)
}

func (s *service) ActiveSet(ctx context.Context, date time.Time) ([]RateDefinition, error) {
	defs := make([]RateDefinition, 0, len(Categories()))
	for _, category := range Categories() {
		def, err := s.GetActiveRate(ctx, category, date)
		if err != nil {
			return nil, err
		}
		if def != nil {
			defs = append(defs, *def)
		}
	}
	return defs, nil
}

func (s *service) History(ctx context.Context, category Category) ([]RateDefinition, error) {
	return s.repo.History(ctx, category)
}

func (s *service) Create(
	ctx context.Context,
	actorID string,
	req CreateRateDefinitionRequest,
) (RateDefinitionResponse, error) {
	def, err := buildDefinition(req)
	if err != nil {
		return RateDefinitionResponse{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		exists, err := qtx.ExistsAt(ctx, def.Category, def.EffectiveFrom)
		if err != nil {
			return err
		}
		if exists {
			return rateconfigerrors.ErrDuplicateRate
		}

		overlaps, err := qtx.HasWindowFrom(ctx, def.Category, def.EffectiveFrom)
		if err != nil {
			return err
		}
		if overlaps {
			return rateconfigerrors.ErrOverlappingWindow
		}

		// Close the currently open-ended window the day before the new
		// definition takes effect. Superseded rows are never mutated beyond
		// this and never deleted.
		current, err := qtx.FindOpenEnded(ctx, def.Category)
		if err != nil {
			return err
		}
		if current != nil && Day(current.EffectiveFrom).Before(Day(def.EffectiveFrom)) {
			dayBefore := Day(def.EffectiveFrom).AddDate(0, 0, -1)
			if err := qtx.SetEffectiveTo(ctx, current.ID.String(), dayBefore); err != nil {
				return err
			}
		}

		if err := qtx.Create(ctx, def); err != nil {
			return err
		}

		return s.enqueueRateChanged(ctx, tx, def, actorID)
	})
	if err != nil {
		return RateDefinitionResponse{}, err
	}

	return mapToResponse(*def), nil
}

func (s *service) Deactivate(ctx context.Context, id string) (RateDefinitionResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return RateDefinitionResponse{}, apperror.ErrInvalidInput
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RateDefinitionResponse{}, rateconfigerrors.ErrRateNotFound
		}
		return RateDefinitionResponse{}, err
	}

	def, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return RateDefinitionResponse{}, err
	}
	if def == nil {
		return RateDefinitionResponse{}, rateconfigerrors.ErrRateNotFound
	}

	return mapToResponse(*def), nil
}

func (s *service) enqueueRateChanged(ctx context.Context, tx *gorm.DB, def *RateDefinition, actorID string) error {
	if s.outbox == nil {
		return nil
	}

	sqlTx, ok := tx.Statement.ConnPool.(*sql.Tx)
	if !ok {
		return errors.New("transaction does not expose sql.Tx for outbox")
	}

	event := events.TaxRateChangedEvent{
		EventType:     "tax_rate_changed",
		RateID:        def.ID.String(),
		Category:      string(def.Category),
		EffectiveFrom: Day(def.EffectiveFrom).Format("2006-01-02"),
		ChangedBy:     actorID,
		OccurredAt:    time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(sqlTx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		AggregateType: "rate_definition",
		AggregateID:   def.ID.String(),
		EventType:     event.EventType,
		Topic:         events.TaxRatesChangedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func buildDefinition(req CreateRateDefinitionRequest) (*RateDefinition, error) {
	effectiveFrom, err := parseDate(req.EffectiveFrom)
	if err != nil {
		return nil, err
	}

	var effectiveTo *time.Time
	if req.EffectiveTo != nil && *req.EffectiveTo != "" {
		to, err := parseDate(*req.EffectiveTo)
		if err != nil {
			return nil, err
		}
		effectiveTo = &to
	}

	def := &RateDefinition{
		ID:              uuid.New(),
		Category:        Category(req.Category),
		RateShape:       RateShape(req.RateShape),
		EffectiveFrom:   effectiveFrom,
		EffectiveTo:     effectiveTo,
		Parameters:      payloadToParameters(RateShape(req.RateShape), req.Parameters),
		PaymentDeadline: "9th of following month",
		IsActive:        true,
		Notes:           req.Notes,
	}
	if req.PaymentDeadline != nil && *req.PaymentDeadline != "" {
		def.PaymentDeadline = *req.PaymentDeadline
	}

	if err := def.Validate(); err != nil {
		return nil, apperror.Wrap(
			err,
			rateconfigerrors.ErrMalformedParameters.Code,
			rateconfigerrors.ErrMalformedParameters.Message,
			rateconfigerrors.ErrMalformedParameters.HTTPStatus,
		)
	}

	return def, nil
}

func payloadToParameters(shape RateShape, payload ParametersPayload) Parameters {
	switch shape {
	case ShapeGraduated:
		g := &GraduatedParams{
			Brackets:           payload.Brackets,
			InsuranceRelief:    payload.InsuranceRelief,
			MaxInsuranceRelief: payload.MaxInsuranceRelief,
		}
		if payload.PersonalRelief != nil {
			g.PersonalRelief = *payload.PersonalRelief
		}
		return Parameters{Graduated: g}
	case ShapePercentage:
		p := &PercentageParams{
			MinAmount: payload.MinAmount,
			MaxAmount: payload.MaxAmount,
		}
		if payload.Percentage != nil {
			p.Percentage = *payload.Percentage
		}
		return Parameters{Percentage: p}
	case ShapeTiered:
		return Parameters{Tiered: &TieredParams{Tiers: payload.Tiers}}
	default:
		return Parameters{}
	}
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, apperror.Wrap(
			err,
			apperror.CodeInvalidInput,
			"invalid date format, expected YYYY-MM-DD",
			http.StatusBadRequest,
		)
	}
	return t, nil
}

func mapToResponse(def RateDefinition) RateDefinitionResponse {
	resp := RateDefinitionResponse{
		ID:              def.ID.String(),
		Category:        string(def.Category),
		RateShape:       string(def.RateShape),
		EffectiveFrom:   Day(def.EffectiveFrom).Format("2006-01-02"),
		Parameters:      def.Parameters,
		PaymentDeadline: def.PaymentDeadline,
		IsActive:        def.IsActive,
		Notes:           def.Notes,
	}
	if def.EffectiveTo != nil {
		v := Day(*def.EffectiveTo).Format("2006-01-02")
		resp.EffectiveTo = &v
	}
	return resp
}

func mapToListResponse(defs []RateDefinition) []RateDefinitionResponse {
	resp := make([]RateDefinitionResponse, len(defs))
	for i, def := range defs {
		resp[i] = mapToResponse(def)
	}
	return resp
}

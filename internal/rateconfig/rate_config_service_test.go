package rateconfig_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/rateconfig"
	rateconfigerrors "go-payroll/internal/rateconfig/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type fakeRateRepository struct {
	withTxFn         func(tx *gorm.DB) rateconfig.Repository
	createFn         func(ctx context.Context, def *rateconfig.RateDefinition) error
	findActiveFn     func(ctx context.Context, category rateconfig.Category, date time.Time) (*rateconfig.RateDefinition, error)
	findByIDFn       func(ctx context.Context, id string) (*rateconfig.RateDefinition, error)
	findOpenEndedFn  func(ctx context.Context, category rateconfig.Category) (*rateconfig.RateDefinition, error)
	historyFn        func(ctx context.Context, category rateconfig.Category) ([]rateconfig.RateDefinition, error)
	existsAtFn       func(ctx context.Context, category rateconfig.Category, effectiveFrom time.Time) (bool, error)
	hasWindowFromFn  func(ctx context.Context, category rateconfig.Category, effectiveFrom time.Time) (bool, error)
	setEffectiveToFn func(ctx context.Context, id string, effectiveTo time.Time) error
	deactivateFn     func(ctx context.Context, id string) error
}

func (f *fakeRateRepository) WithTx(tx *gorm.DB) rateconfig.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeRateRepository) Create(ctx context.Context, def *rateconfig.RateDefinition) error {
	if f.createFn != nil {
		return f.createFn(ctx, def)
	}
	return nil
}

func (f *fakeRateRepository) FindActive(ctx context.Context, category rateconfig.Category, date time.Time) (*rateconfig.RateDefinition, error) {
	if f.findActiveFn != nil {
		return f.findActiveFn(ctx, category, date)
	}
	return nil, nil
}

func (f *fakeRateRepository) FindByID(ctx context.Context, id string) (*rateconfig.RateDefinition, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeRateRepository) FindOpenEnded(ctx context.Context, category rateconfig.Category) (*rateconfig.RateDefinition, error) {
	if f.findOpenEndedFn != nil {
		return f.findOpenEndedFn(ctx, category)
	}
	return nil, nil
}

func (f *fakeRateRepository) History(ctx context.Context, category rateconfig.Category) ([]rateconfig.RateDefinition, error) {
	if f.historyFn != nil {
		return f.historyFn(ctx, category)
	}
	return nil, nil
}

func (f *fakeRateRepository) ExistsAt(ctx context.Context, category rateconfig.Category, effectiveFrom time.Time) (bool, error) {
	if f.existsAtFn != nil {
		return f.existsAtFn(ctx, category, effectiveFrom)
	}
	return false, nil
}

func (f *fakeRateRepository) HasWindowFrom(ctx context.Context, category rateconfig.Category, effectiveFrom time.Time) (bool, error) {
	if f.hasWindowFromFn != nil {
		return f.hasWindowFromFn(ctx, category, effectiveFrom)
	}
	return false, nil
}

func (f *fakeRateRepository) SetEffectiveTo(ctx context.Context, id string, effectiveTo time.Time) error {
	if f.setEffectiveToFn != nil {
		return f.setEffectiveToFn(ctx, id, effectiveTo)
	}
	return nil
}

func (f *fakeRateRepository) Deactivate(ctx context.Context, id string) error {
	if f.deactivateFn != nil {
		return f.deactivateFn(ctx, id)
	}
	return nil
}

type fakeOutboxRepository struct {
	withTxFn func(tx *sql.Tx) kafka.OutboxRepository
	createFn func(ctx context.Context, event kafka.OutboxEvent) error
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	if f.createFn != nil {
		return f.createFn(ctx, event)
	}
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error {
	return nil
}

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type rateServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	repo    *fakeRateRepository
	outbox  *fakeOutboxRepository
	service rateconfig.Service
}

func setupRateServiceTest(t *testing.T) *rateServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	assert.NoError(t, err)

	repo := &fakeRateRepository{}
	outbox := &fakeOutboxRepository{}
	svc := rateconfig.NewServiceWithOutbox(gormDB, repo, nil, outbox)

	return &rateServiceDeps{db: db, sqlMock: sqlMock, repo: repo, outbox: outbox, service: svc}
}

func percentageCreateRequest() rateconfig.CreateRateDefinitionRequest {
	pct := 0.03
	return rateconfig.CreateRateDefinitionRequest{
		Category:      string(rateconfig.CategoryHousingLevy),
		RateShape:     string(rateconfig.ShapePercentage),
		EffectiveFrom: "2025-07-01",
		Parameters:    rateconfig.ParametersPayload{Percentage: &pct},
	}
}

func TestRateConfigService_Create(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()

	t.Run("supersedes open ended window and enqueues event", func(t *testing.T) {
		deps := setupRateServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		currentID := uuid.New()
		deps.repo.findOpenEndedFn = func(ctx context.Context, category rateconfig.Category) (*rateconfig.RateDefinition, error) {
			return &rateconfig.RateDefinition{
				ID:            currentID,
				Category:      category,
				EffectiveFrom: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			}, nil
		}

		var closedID string
		var closedAt time.Time
		deps.repo.setEffectiveToFn = func(ctx context.Context, id string, effectiveTo time.Time) error {
			closedID = id
			closedAt = effectiveTo
			return nil
		}

		var enqueued *kafka.OutboxEvent
		deps.outbox.createFn = func(ctx context.Context, event kafka.OutboxEvent) error {
			enqueued = &event
			return nil
		}

		resp, err := deps.service.Create(ctx, actorID, percentageCreateRequest())

		assert.NoError(t, err)
		assert.Equal(t, "2025-07-01", resp.EffectiveFrom)
		assert.True(t, resp.IsActive)

		assert.Equal(t, currentID.String(), closedID)
		assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), closedAt)

		if assert.NotNil(t, enqueued) {
			assert.Equal(t, events.TaxRatesChangedTopic, enqueued.Topic)
			assert.Equal(t, kafka.OutboxStatusPending, enqueued.Status)

			var payload events.TaxRateChangedEvent
			assert.NoError(t, json.Unmarshal(enqueued.Payload, &payload))
			assert.Equal(t, string(rateconfig.CategoryHousingLevy), payload.Category)
			assert.Equal(t, actorID, payload.ChangedBy)
			assert.Equal(t, "2025-07-01", payload.EffectiveFrom)
		}

		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("duplicate effective_from is rejected", func(t *testing.T) {
		deps := setupRateServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.existsAtFn = func(ctx context.Context, category rateconfig.Category, effectiveFrom time.Time) (bool, error) {
			return true, nil
		}

		_, err := deps.service.Create(ctx, actorID, percentageCreateRequest())

		assert.ErrorIs(t, err, rateconfigerrors.ErrDuplicateRate)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("later window blocks backdated insert", func(t *testing.T) {
		deps := setupRateServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.hasWindowFromFn = func(ctx context.Context, category rateconfig.Category, effectiveFrom time.Time) (bool, error) {
			return true, nil
		}

		_, err := deps.service.Create(ctx, actorID, percentageCreateRequest())

		assert.ErrorIs(t, err, rateconfigerrors.ErrOverlappingWindow)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("malformed parameters are rejected before any write", func(t *testing.T) {
		deps := setupRateServiceTest(t)
		defer deps.db.Close()

		req := percentageCreateRequest()
		req.RateShape = string(rateconfig.ShapeGraduated)
		req.Parameters = rateconfig.ParametersPayload{}

		_, err := deps.service.Create(ctx, actorID, req)

		assert.Error(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("open ended window starting later is left alone", func(t *testing.T) {
		deps := setupRateServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		deps.repo.findOpenEndedFn = func(ctx context.Context, category rateconfig.Category) (*rateconfig.RateDefinition, error) {
			return &rateconfig.RateDefinition{
				ID:            uuid.New(),
				Category:      category,
				EffectiveFrom: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			}, nil
		}
		deps.repo.setEffectiveToFn = func(ctx context.Context, id string, effectiveTo time.Time) error {
			t.Fatal("should not close a window that does not precede the new one")
			return nil
		}

		_, err := deps.service.Create(ctx, actorID, percentageCreateRequest())

		assert.NoError(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestRateConfigService_GetActiveRate(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	deps := setupRateServiceTest(t)
	defer deps.db.Close()

	want := &rateconfig.RateDefinition{
		ID:            uuid.New(),
		Category:      rateconfig.CategoryPAYE,
		EffectiveFrom: time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	deps.repo.findActiveFn = func(ctx context.Context, category rateconfig.Category, d time.Time) (*rateconfig.RateDefinition, error) {
		assert.Equal(t, rateconfig.CategoryPAYE, category)
		return want, nil
	}

	got, err := deps.service.GetActiveRate(ctx, rateconfig.CategoryPAYE, date)

	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRateConfigService_ActiveSet(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	deps := setupRateServiceTest(t)
	defer deps.db.Close()

	// Only PAYE and HOUSING_LEVY configured; the others resolve to nothing.
	deps.repo.findActiveFn = func(ctx context.Context, category rateconfig.Category, d time.Time) (*rateconfig.RateDefinition, error) {
		switch category {
		case rateconfig.CategoryPAYE, rateconfig.CategoryHousingLevy:
			return &rateconfig.RateDefinition{ID: uuid.New(), Category: category}, nil
		default:
			return nil, nil
		}
	}

	defs, err := deps.service.ActiveSet(ctx, date)

	assert.NoError(t, err)
	assert.Len(t, defs, 2)
	assert.Equal(t, rateconfig.CategoryPAYE, defs[0].Category)
	assert.Equal(t, rateconfig.CategoryHousingLevy, defs[1].Category)
}

func TestRateConfigService_Deactivate(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid id", func(t *testing.T) {
		deps := setupRateServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Deactivate(ctx, "not-a-uuid")
		assert.Error(t, err)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupRateServiceTest(t)
		defer deps.db.Close()

		deps.repo.deactivateFn = func(ctx context.Context, id string) error {
			return gorm.ErrRecordNotFound
		}

		_, err := deps.service.Deactivate(ctx, uuid.New().String())
		assert.ErrorIs(t, err, rateconfigerrors.ErrRateNotFound)
	})

	t.Run("success", func(t *testing.T) {
		deps := setupRateServiceTest(t)
		defer deps.db.Close()

		id := uuid.New()
		deps.repo.findByIDFn = func(ctx context.Context, got string) (*rateconfig.RateDefinition, error) {
			return &rateconfig.RateDefinition{ID: id, Category: rateconfig.CategoryPAYE, IsActive: false}, nil
		}

		resp, err := deps.service.Deactivate(ctx, id.String())

		assert.NoError(t, err)
		assert.False(t, resp.IsActive)
	})
}

func TestRateConfigService_Seed(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts all categories when table is empty", func(t *testing.T) {
		deps := setupRateServiceTest(t)
		defer deps.db.Close()

		var created []rateconfig.Category
		deps.repo.createFn = func(ctx context.Context, def *rateconfig.RateDefinition) error {
			created = append(created, def.Category)
			return nil
		}

		assert.NoError(t, deps.service.Seed(ctx))
		assert.ElementsMatch(t, rateconfig.Categories(), created)
	})

	t.Run("skips categories already seeded", func(t *testing.T) {
		deps := setupRateServiceTest(t)
		defer deps.db.Close()

		deps.repo.existsAtFn = func(ctx context.Context, category rateconfig.Category, effectiveFrom time.Time) (bool, error) {
			return true, nil
		}
		deps.repo.createFn = func(ctx context.Context, def *rateconfig.RateDefinition) error {
			t.Fatal("should not insert over existing definitions")
			return nil
		}

		assert.NoError(t, deps.service.Seed(ctx))
	})
}

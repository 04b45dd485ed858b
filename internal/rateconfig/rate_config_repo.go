package rateconfig

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=rate_config_repo.go -destination=mock/rate_config_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, def *RateDefinition) error
	// FindActive resolves the definition governing category on date:
	// effective_from <= date, window open-ended or closing on/after date,
	// active, newest effective_from first. Returns nil when absent.
	FindActive(ctx context.Context, category Category, date time.Time) (*RateDefinition, error)
	FindByID(ctx context.Context, id string) (*RateDefinition, error)
	FindOpenEnded(ctx context.Context, category Category) (*RateDefinition, error)
	History(ctx context.Context, category Category) ([]RateDefinition, error)
	ExistsAt(ctx context.Context, category Category, effectiveFrom time.Time) (bool, error)
	HasWindowFrom(ctx context.Context, category Category, effectiveFrom time.Time) (bool, error)
	SetEffectiveTo(ctx context.Context, id string, effectiveTo time.Time) error
	Deactivate(ctx context.Context, id string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, def *RateDefinition) error {
	return r.db.WithContext(ctx).Create(def).Error
}

func (r *repository) FindActive(ctx context.Context, category Category, date time.Time) (*RateDefinition, error) {
	day := Day(date)

	var def RateDefinition
	err := r.db.WithContext(ctx).
		Where("category = ?", category).
		Where("effective_from <= ?", day).
		Where("effective_to IS NULL OR effective_to >= ?", day).
		Where("is_active = ?", true).
		Order("effective_from DESC").
		First(&def).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &def, nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*RateDefinition, error) {
	var def RateDefinition
	err := r.db.WithContext(ctx).First(&def, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &def, nil
}

func (r *repository) FindOpenEnded(ctx context.Context, category Category) (*RateDefinition, error) {
	var def RateDefinition
	err := r.db.WithContext(ctx).
		Where("category = ?", category).
		Where("effective_to IS NULL").
		Where("is_active = ?", true).
		Order("effective_from DESC").
		First(&def).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &def, nil
}

func (r *repository) History(ctx context.Context, category Category) ([]RateDefinition, error) {
	var defs []RateDefinition
	err := r.db.WithContext(ctx).
		Where("category = ?", category).
		Order("effective_from DESC").
		Find(&defs).Error
	return defs, err
}

func (r *repository) ExistsAt(ctx context.Context, category Category, effectiveFrom time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&RateDefinition{}).
		Where("category = ?", category).
		Where("effective_from = ?", Day(effectiveFrom)).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) HasWindowFrom(ctx context.Context, category Category, effectiveFrom time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&RateDefinition{}).
		Where("category = ?", category).
		Where("is_active = ?", true).
		Where("effective_from >= ?", Day(effectiveFrom)).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) SetEffectiveTo(ctx context.Context, id string, effectiveTo time.Time) error {
	return r.db.WithContext(ctx).
		Model(&RateDefinition{}).
		Where("id = ?", id).
		Update("effective_to", Day(effectiveTo)).Error
}

func (r *repository) Deactivate(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&RateDefinition{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

package payroll

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

//go:generate mockgen -source=worker_repo.go -destination=mock/worker_repo_mock.go -package=mock
type WorkerRepository interface {
	FindActiveByUser(ctx context.Context, userID string) ([]Worker, error)
	FindByIDAndUser(ctx context.Context, userID, workerID string) (*Worker, error)
}

type gormWorkerRepository struct {
	db *gorm.DB
}

func NewWorkerRepository(db *gorm.DB) WorkerRepository {
	return &gormWorkerRepository{db: db}
}

func (r *gormWorkerRepository) FindActiveByUser(ctx context.Context, userID string) ([]Worker, error) {
	var workers []Worker
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("name ASC").
		Find(&workers).Error
	if err != nil {
		return nil, err
	}
	return workers, nil
}

func (r *gormWorkerRepository) FindByIDAndUser(ctx context.Context, userID, workerID string) (*Worker, error) {
	var worker Worker
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", workerID, userID).
		First(&worker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &worker, nil
}

package payroll

import (
	"time"

	"github.com/google/uuid"
)

// Worker is a read model over the workers table. Payroll only reads it;
// worker lifecycle is owned by the workforce service.
type Worker struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"not null"`
	PhoneNumber string
	SalaryGross float64   `gorm:"not null"`
	IsActive    bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Worker) TableName() string {
	return "workers"
}

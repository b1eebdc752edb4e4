package repository

import (
	"context"
	"time"

	"hr-ops-bot/internal/models"

	"gorm.io/gorm"
)

type NonWorkingDayRepository interface {
	GetBetween(ctx context.Context, from, to time.Time) ([]models.NonWorkingDay, error)
	GetAll(ctx context.Context) ([]models.NonWorkingDay, error)
	BulkCreate(ctx context.Context, days []models.NonWorkingDay) error
	DeleteAll(ctx context.Context) error
}

type GormNonWorkingDayRepository struct {
	db *gorm.DB
}

func NewGormNonWorkingDayRepository(db *gorm.DB) (*GormNonWorkingDayRepository, error) {
	if err := db.AutoMigrate(&models.NonWorkingDay{}); err != nil {
		return nil, err
	}

	return &GormNonWorkingDayRepository{db: db}, nil
}

func (r *GormNonWorkingDayRepository) BulkCreate(ctx context.Context, days []models.NonWorkingDay) error {
	if len(days) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&days).Error
}

// GetBetween returns the non-working days with from <= date <= to.
func (r *GormNonWorkingDayRepository) GetBetween(ctx context.Context, from, to time.Time) ([]models.NonWorkingDay, error) {
	var days []models.NonWorkingDay
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date < ?", truncateDay(from), truncateDay(to).AddDate(0, 0, 1)).
		Order("date").
		Find(&days).Error
	return days, err
}

func (r *GormNonWorkingDayRepository) GetAll(ctx context.Context) ([]models.NonWorkingDay, error) {
	var days []models.NonWorkingDay
	err := r.db.WithContext(ctx).Order("date").Find(&days).Error
	return days, err
}

func (r *GormNonWorkingDayRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Exec("DELETE FROM non_working_days").Error
}

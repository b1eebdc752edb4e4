package service

import (
	"context"
	"fmt"

	"hr-ops-bot/internal/models"
	"hr-ops-bot/internal/repository"
	"hr-ops-bot/pkg/weekends"

	"github.com/sirupsen/logrus"
)

type NonWorkingDayService struct {
	repo repository.NonWorkingDayRepository
}

func NewNonWorkingDayService(repo repository.NonWorkingDayRepository) *NonWorkingDayService {
	return &NonWorkingDayService{repo: repo}
}

// LoadFromJSON replaces the stored holidays with the ones of the calendar file.
func (s *NonWorkingDayService) LoadFromJSON(ctx context.Context, filePath string) (int, error) {
	holidays, err := weekends.ParseFile(filePath)
	if err != nil {
		return 0, err
	}

	days := make([]models.NonWorkingDay, 0, len(holidays))
	for _, h := range holidays {
		days = append(days, models.NonWorkingDay{
			Date:  h.Date,
			Year:  h.Year,
			Month: h.Month,
			Day:   h.Day,
		})
	}

	if err := s.repo.DeleteAll(ctx); err != nil {
		logrus.Warnf("Failed to delete old non-working days: %v", err)
	}

	if err := s.repo.BulkCreate(ctx, days); err != nil {
		return 0, fmt.Errorf("%w: store non-working days: %v", ErrPersistence, err)
	}

	return len(days), nil
}

func (s *NonWorkingDayService) GetNonWorkingDays(ctx context.Context) ([]models.NonWorkingDay, error) {
	return s.repo.GetAll(ctx)
}

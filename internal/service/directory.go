package service

import (
	"context"
	"fmt"
	"time"

	"hr-ops-bot/internal/models"
	"hr-ops-bot/internal/repository"

	"golang.org/x/sync/singleflight"
)

// Directory answers who a Discord user is and when they punched the clock.
type Directory interface {
	LookupPerson(ctx context.Context, discordID string) (*models.EmployeeProfile, error)
	LookupPunches(ctx context.Context, discordID string, from, to time.Time) ([]models.Punch, error)
}

// DirectoryService collapses concurrent identical lookups into one query and wraps
// failures with ErrDataSource.
type DirectoryService struct {
	portal repository.PortalRepository
	sf     singleflight.Group
}

func NewDirectoryService(portal repository.PortalRepository) *DirectoryService {
	return &DirectoryService{portal: portal}
}

func (s *DirectoryService) LookupPerson(ctx context.Context, discordID string) (*models.EmployeeProfile, error) {
	v, err, _ := s.sf.Do("person:"+discordID, func() (interface{}, error) {
		return s.portal.LookupPerson(ctx, discordID)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: look up person %s: %v", ErrDataSource, discordID, err)
	}

	profile, _ := v.(*models.EmployeeProfile)
	if profile == nil {
		return nil, nil
	}

	copied := *profile
	return &copied, nil
}

func (s *DirectoryService) LookupPunches(ctx context.Context, discordID string, from, to time.Time) ([]models.Punch, error) {
	key := fmt.Sprintf("punches:%s:%s:%s", discordID, models.DateKey(from), models.DateKey(to))
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		return s.portal.LookupPunches(ctx, discordID, from, to)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: look up punches of %s: %v", ErrDataSource, discordID, err)
	}

	punches, _ := v.([]models.Punch)
	return append([]models.Punch(nil), punches...), nil
}

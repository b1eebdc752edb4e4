package repository

import (
	"context"
	"errors"
	"time"

	"hr-ops-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TeamApproverRepository interface {
	Set(ctx context.Context, teamID uint, approverID string) error
	Remove(ctx context.Context, teamID uint) (bool, error)
	GetByTeam(ctx context.Context, teamID uint) (*models.TeamApprover, error)
	List(ctx context.Context) ([]models.TeamApprover, error)
}

type GormTeamApproverRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormTeamApproverRepository(db *gorm.DB) (*GormTeamApproverRepository, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.GetLevel())

	if err := db.AutoMigrate(&models.TeamApprover{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate team_approvers table")
		return nil, err
	}

	return &GormTeamApproverRepository{
		db:     db,
		logger: logger,
	}, nil
}

// Set creates or replaces the approver of a team.
func (r *GormTeamApproverRepository) Set(ctx context.Context, teamID uint, approverID string) error {
	if approverID == "" {
		return errors.New("approver id is required")
	}

	assignment := &models.TeamApprover{
		TeamID:     teamID,
		ApproverID: approverID,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "team_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"approver_id": approverID,
			"updated_at":  time.Now(),
		}),
	}).Create(assignment).Error
	if err != nil {
		r.logger.WithError(err).WithField("team_id", teamID).Error("Failed to set team approver")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"team_id":     teamID,
		"approver_id": approverID,
	}).Info("Team approver set")

	return nil
}

func (r *GormTeamApproverRepository) Remove(ctx context.Context, teamID uint) (bool, error) {
	result := r.db.WithContext(ctx).Where("team_id = ?", teamID).Delete(&models.TeamApprover{})
	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("team_id", teamID).Error("Failed to remove team approver")
		return false, result.Error
	}

	r.logger.WithFields(logrus.Fields{
		"team_id":       teamID,
		"rows_affected": result.RowsAffected,
	}).Info("Team approver removed")

	return result.RowsAffected > 0, nil
}

func (r *GormTeamApproverRepository) GetByTeam(ctx context.Context, teamID uint) (*models.TeamApprover, error) {
	var assignment models.TeamApprover
	result := r.db.WithContext(ctx).Where("team_id = ?", teamID).First(&assignment)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		r.logger.WithField("team_id", teamID).Debug("No approver assigned to team")
		return nil, nil
	}

	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("team_id", teamID).Error("Failed to get team approver")
		return nil, result.Error
	}

	return &assignment, nil
}

func (r *GormTeamApproverRepository) List(ctx context.Context) ([]models.TeamApprover, error) {
	var assignments []models.TeamApprover
	err := r.db.WithContext(ctx).Order("team_id").Find(&assignments).Error
	return assignments, err
}

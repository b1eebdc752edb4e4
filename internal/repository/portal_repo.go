package repository

import (
	"context"
	"errors"
	"time"

	"hr-ops-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PortalRepository reads the corporate directory and time-clock tables.
type PortalRepository interface {
	LookupPerson(ctx context.Context, discordID string) (*models.EmployeeProfile, error)
	LookupPunches(ctx context.Context, discordID string, from, to time.Time) ([]models.Punch, error)
}

type GormPortalRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewGormPortalRepository does not migrate: the directory schema belongs to the portal.
func NewGormPortalRepository(db *gorm.DB) *GormPortalRepository {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.GetLevel())

	return &GormPortalRepository{
		db:     db,
		logger: logger,
	}
}

// LookupPerson returns the active employee linked to the Discord account, or nil.
func (r *GormPortalRepository) LookupPerson(ctx context.Context, discordID string) (*models.EmployeeProfile, error) {
	var employee models.PortalEmployee
	result := r.db.WithContext(ctx).
		Where("id_discord = ? AND desligamento_data IS NULL", discordID).
		First(&employee)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		r.logger.WithField("discord_id", discordID).Debug("Employee not found in directory")
		return nil, nil
	}

	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("discord_id", discordID).Error("Failed to look up employee")
		return nil, result.Error
	}

	profile := employee.Profile()
	return &profile, nil
}

// LookupPunches returns the punches between from and to (inclusive dates), ordered
// by date and time.
func (r *GormPortalRepository) LookupPunches(ctx context.Context, discordID string, from, to time.Time) ([]models.Punch, error) {
	var rows []models.PortalPunch

	start := truncateDay(from)
	end := truncateDay(to).AddDate(0, 0, 1)

	err := r.db.WithContext(ctx).
		Table("ponto_marcacoes AS pm").
		Select("pm.id, pm.pis, pm.data, pm.hora").
		Joins("JOIN colaboradores AS c ON pm.pis = c.pis_numero").
		Where("c.id_discord = ? AND pm.data >= ? AND pm.data < ?", discordID, start, end).
		Order("pm.data, pm.hora").
		Scan(&rows).Error
	if err != nil {
		r.logger.WithError(err).WithField("discord_id", discordID).Error("Failed to look up punches")
		return nil, err
	}

	punches := make([]models.Punch, 0, len(rows))
	for _, row := range rows {
		punches = append(punches, models.Punch{Date: truncateDay(row.Date), Time: row.Time})
	}

	r.logger.WithFields(logrus.Fields{
		"discord_id": discordID,
		"from":       start.Format(models.DateLayout),
		"to":         to.Format(models.DateLayout),
		"count":      len(punches),
	}).Debug("Retrieved punches")

	return punches, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

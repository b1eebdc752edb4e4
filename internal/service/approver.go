package service

import (
	"context"
	"fmt"
	"strings"

	"hr-ops-bot/internal/models"
	"hr-ops-bot/internal/repository"

	"github.com/sirupsen/logrus"
)

// ApproverService manages which Discord user decides the requests of each team.
type ApproverService struct {
	repo   repository.TeamApproverRepository
	logger *logrus.Logger
}

func NewApproverService(repo repository.TeamApproverRepository) *ApproverService {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.GetLevel())

	return &ApproverService{repo: repo, logger: logger}
}

func (s *ApproverService) Assign(ctx context.Context, actorID string, teamID uint, approverID string) error {
	approverID = strings.TrimSpace(approverID)
	if teamID == 0 || approverID == "" {
		return fmt.Errorf("%w: team and approver are required", ErrUserInput)
	}

	if err := s.repo.Set(ctx, teamID, approverID); err != nil {
		return fmt.Errorf("%w: assign approver: %v", ErrPersistence, err)
	}

	s.logger.WithFields(logrus.Fields{
		"actor_id":    actorID,
		"team_id":     teamID,
		"approver_id": approverID,
	}).Info("Team approver assigned")

	return nil
}

// Unassign reports whether the team had an approver.
func (s *ApproverService) Unassign(ctx context.Context, actorID string, teamID uint) (bool, error) {
	removed, err := s.repo.Remove(ctx, teamID)
	if err != nil {
		return false, fmt.Errorf("%w: remove approver: %v", ErrPersistence, err)
	}

	s.logger.WithFields(logrus.Fields{
		"actor_id": actorID,
		"team_id":  teamID,
		"removed":  removed,
	}).Info("Team approver removed")

	return removed, nil
}

func (s *ApproverService) List(ctx context.Context) ([]models.TeamApprover, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list approvers: %v", ErrPersistence, err)
	}
	return list, nil
}

// ApproverFor returns the approver id of the team or ErrNoApprover.
func (s *ApproverService) ApproverFor(ctx context.Context, teamID uint) (string, error) {
	assignment, err := s.repo.GetByTeam(ctx, teamID)
	if err != nil {
		return "", fmt.Errorf("%w: look up approver: %v", ErrPersistence, err)
	}

	if assignment == nil {
		return "", fmt.Errorf("%w: team %d", ErrNoApprover, teamID)
	}

	return assignment.ApproverID, nil
}

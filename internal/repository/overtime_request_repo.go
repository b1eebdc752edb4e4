package repository

import (
	"context"
	"errors"
	"time"

	"hr-ops-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OvertimeRequestRepository interface {
	Create(ctx context.Context, submitterID string, form models.OvertimeForm) (uint, error)
	GetByID(ctx context.Context, id uint) (*models.OvertimeRequest, error)
	ListBySubmitter(ctx context.Context, submitterID string, limit int) ([]*models.OvertimeRequest, error)
	SetStatus(ctx context.Context, id uint, status models.RequestStatus, actorID string, decidedAt time.Time) error
	TransitionFromPending(ctx context.Context, id uint, status models.RequestStatus, actorID string, decidedAt time.Time) (bool, error)
	Cancel(ctx context.Context, id uint, requesterID string) (bool, error)
	MarkForwarded(ctx context.Context, id uint, approverID string, at time.Time) (bool, error)
	ClearForwarded(ctx context.Context, id uint) error
	BlockedDates(ctx context.Context, submitterID string) (map[string]struct{}, error)
}

type GormOvertimeRequestRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormOvertimeRequestRepository(db *gorm.DB) (*GormOvertimeRequestRepository, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.GetLevel())

	if err := db.AutoMigrate(&models.OvertimeRequest{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate overtime_requests table")
		return nil, err
	}

	logger.Info("Overtime request repository initialized")

	return &GormOvertimeRequestRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *GormOvertimeRequestRepository) Create(ctx context.Context, submitterID string, form models.OvertimeForm) (uint, error) {
	if submitterID == "" {
		return 0, errors.New("submitter id is required")
	}

	if len(form.Days) == 0 {
		return 0, errors.New("request must contain at least one day")
	}

	request := &models.OvertimeRequest{
		SubmitterID: submitterID,
		Status:      models.StatusPendingApproval,
		Payload:     datatypes.NewJSONType(form),
	}

	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		r.logger.WithError(err).WithField("submitter_id", submitterID).Error("Failed to create overtime request")
		return 0, err
	}

	r.logger.WithFields(logrus.Fields{
		"request_id":   request.ID,
		"submitter_id": submitterID,
		"days":         len(form.Days),
	}).Info("Overtime request created")

	return request.ID, nil
}

func (r *GormOvertimeRequestRepository) GetByID(ctx context.Context, id uint) (*models.OvertimeRequest, error) {
	var request models.OvertimeRequest
	result := r.db.WithContext(ctx).First(&request, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		r.logger.WithField("request_id", id).Debug("Overtime request not found")
		return nil, nil
	}

	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("request_id", id).Error("Failed to get overtime request")
		return nil, result.Error
	}

	return &request, nil
}

func (r *GormOvertimeRequestRepository) ListBySubmitter(ctx context.Context, submitterID string, limit int) ([]*models.OvertimeRequest, error) {
	var requests []*models.OvertimeRequest

	query := r.db.WithContext(ctx).Where("submitter_id = ?", submitterID).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&requests).Error; err != nil {
		r.logger.WithError(err).WithField("submitter_id", submitterID).Error("Failed to list overtime requests")
		return nil, err
	}

	return requests, nil
}

// SetStatus writes the decision unconditionally. Callers that need the
// "only once" guarantee use TransitionFromPending.
func (r *GormOvertimeRequestRepository) SetStatus(ctx context.Context, id uint, status models.RequestStatus, actorID string, decidedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.OvertimeRequest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"approver_id": actorID,
			"decided_at":  decidedAt,
		})

	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("request_id", id).Error("Failed to set overtime request status")
		return result.Error
	}

	r.logger.WithFields(logrus.Fields{
		"request_id": id,
		"status":     status,
		"actor_id":   actorID,
	}).Info("Overtime request status set")

	return nil
}

// TransitionFromPending moves a pending request to status. It reports false when
// the request is missing or already left PENDING_APPROVAL.
func (r *GormOvertimeRequestRepository) TransitionFromPending(ctx context.Context, id uint, status models.RequestStatus, actorID string, decidedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.OvertimeRequest{}).
		Where("id = ? AND status = ?", id, models.StatusPendingApproval).
		Updates(map[string]interface{}{
			"status":      status,
			"approver_id": actorID,
			"decided_at":  decidedAt,
		})

	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("request_id", id).Error("Failed to transition overtime request")
		return false, result.Error
	}

	if result.RowsAffected == 0 {
		r.logger.WithFields(logrus.Fields{
			"request_id": id,
			"status":     status,
			"actor_id":   actorID,
		}).Warn("Overtime request is no longer pending")
		return false, nil
	}

	r.logger.WithFields(logrus.Fields{
		"request_id": id,
		"status":     status,
		"actor_id":   actorID,
	}).Info("Overtime request transitioned")

	return true, nil
}

// Cancel cancels a pending request on behalf of its submitter. Any other requester,
// a request already forwarded to its approver, or one already resolved yields false
// without an error.
func (r *GormOvertimeRequestRepository) Cancel(ctx context.Context, id uint, requesterID string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.OvertimeRequest{}).
		Where("id = ? AND submitter_id = ? AND status = ? AND forwarded_at IS NULL", id, requesterID, models.StatusPendingApproval).
		Updates(map[string]interface{}{
			"status":     models.StatusCancelled,
			"decided_at": time.Now(),
		})

	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("request_id", id).Error("Failed to cancel overtime request")
		return false, result.Error
	}

	if result.RowsAffected == 0 {
		r.logger.WithFields(logrus.Fields{
			"request_id":   id,
			"requester_id": requesterID,
		}).Warn("Overtime request not cancelled")
		return false, nil
	}

	r.logger.WithFields(logrus.Fields{
		"request_id":   id,
		"requester_id": requesterID,
	}).Info("Overtime request cancelled")

	return true, nil
}

// MarkForwarded records the hand-off to an approver. It succeeds once per request.
func (r *GormOvertimeRequestRepository) MarkForwarded(ctx context.Context, id uint, approverID string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.OvertimeRequest{}).
		Where("id = ? AND status = ? AND forwarded_at IS NULL", id, models.StatusPendingApproval).
		Updates(map[string]interface{}{
			"assigned_approver_id": approverID,
			"forwarded_at":         at,
		})

	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("request_id", id).Error("Failed to mark overtime request as forwarded")
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// ClearForwarded undoes MarkForwarded after a failed delivery to the approver.
func (r *GormOvertimeRequestRepository) ClearForwarded(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.OvertimeRequest{}).
		Where("id = ? AND status = ?", id, models.StatusPendingApproval).
		Updates(map[string]interface{}{
			"assigned_approver_id": nil,
			"forwarded_at":         nil,
		})

	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("request_id", id).Error("Failed to clear forward marker")
		return result.Error
	}

	return nil
}

// BlockedDates returns the dates already claimed by a pending or approved request
// of the submitter. The payload is decoded here so the query stays portable.
func (r *GormOvertimeRequestRepository) BlockedDates(ctx context.Context, submitterID string) (map[string]struct{}, error) {
	var requests []models.OvertimeRequest

	err := r.db.WithContext(ctx).
		Where("submitter_id = ? AND status IN ?", submitterID,
			[]models.RequestStatus{models.StatusPendingApproval, models.StatusApproved}).
		Find(&requests).Error
	if err != nil {
		r.logger.WithError(err).WithField("submitter_id", submitterID).Error("Failed to load blocked dates")
		return nil, err
	}

	blocked := make(map[string]struct{})
	for i := range requests {
		for _, date := range requests[i].Form().Dates() {
			blocked[date] = struct{}{}
		}
	}

	r.logger.WithFields(logrus.Fields{
		"submitter_id": submitterID,
		"requests":     len(requests),
		"dates":        len(blocked),
	}).Debug("Retrieved blocked dates")

	return blocked, nil
}

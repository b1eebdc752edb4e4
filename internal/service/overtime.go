package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hr-ops-bot/internal/models"
	"hr-ops-bot/internal/repository"
	"hr-ops-bot/internal/workflow"

	"github.com/sirupsen/logrus"
)

type CandidateSource interface {
	Candidates(ctx context.Context, submitterID string) ([]models.OvertimeCandidate, error)
}

type ProfileSource interface {
	LookupPerson(ctx context.Context, discordID string) (*models.EmployeeProfile, error)
}

type ApproverLookup interface {
	ApproverFor(ctx context.Context, teamID uint) (string, error)
}

type DocumentComposer interface {
	Compose(form models.OvertimeForm) ([]byte, error)
	Stamp(doc []byte, stamp models.ApprovalStamp) []byte
}

// Attachment is a file sent along with a direct message.
type Attachment struct {
	Name string
	Data []byte
}

// Notifier delivers a view as a direct message. Implementations return an error
// wrapping ErrDeliveryForbidden when the recipient does not accept messages.
type Notifier interface {
	Deliver(ctx context.Context, recipientID string, view workflow.View, doc *Attachment) error
}

type Mailer interface {
	SendApproved(ctx context.Context, form models.OvertimeForm, pdf []byte) error
}

// Alerter tells the operators about failures nobody else will see.
type Alerter interface {
	Alert(ctx context.Context, text string)
}

type OvertimeDeps struct {
	Sessions   *workflow.SessionStore
	Candidates CandidateSource
	Profiles   ProfileSource
	Requests   repository.OvertimeRequestRepository
	Approvers  ApproverLookup
	Composer   DocumentComposer
	Notifier   Notifier
	Mailer     Mailer
	Alerter    Alerter
}

// OvertimeService drives the overtime workflow: it feeds events to the stages and
// performs the effects they ask for.
type OvertimeService struct {
	sessions   *workflow.SessionStore
	candidates CandidateSource
	profiles   ProfileSource
	requests   repository.OvertimeRequestRepository
	approvers  ApproverLookup
	composer   DocumentComposer
	notifier   Notifier
	mailer     Mailer
	alerter    Alerter
	now        func() time.Time
	logger     *logrus.Logger
}

func NewOvertimeService(deps OvertimeDeps) *OvertimeService {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.GetLevel())

	return &OvertimeService{
		sessions:   deps.Sessions,
		candidates: deps.Candidates,
		profiles:   deps.Profiles,
		requests:   deps.Requests,
		approvers:  deps.Approvers,
		composer:   deps.Composer,
		notifier:   deps.Notifier,
		mailer:     deps.Mailer,
		alerter:    deps.Alerter,
		now:        time.Now,
		logger:     logger,
	}
}

// Start opens a workflow session for the submitter.
func (s *OvertimeService) Start(ctx context.Context, submitterID string) (string, []workflow.View) {
	sess := s.sessions.Start(submitterID)

	s.logger.WithFields(logrus.Fields{
		"actor_id":   submitterID,
		"session_id": sess.ID,
	}).Info("Overtime request started")

	return sess.ID, []workflow.View{workflow.ChoicePrompt{}}
}

// HandleSessionEvent applies an interaction to an in-memory session. Only the
// submitter who started the session may drive it.
func (s *OvertimeService) HandleSessionEvent(ctx context.Context, sessionID, actorID string, ev workflow.Event) []workflow.View {
	sess := s.sessions.Get(sessionID)
	if sess == nil {
		return []workflow.View{workflow.Notice{Code: workflow.SessionExpired}}
	}

	sess.Lock()
	defer sess.Unlock()

	if workflow.IsTerminal(sess.Stage) {
		return []workflow.View{workflow.Notice{Code: workflow.SessionExpired}}
	}

	if actorID != sess.SubmitterID {
		return []workflow.View{workflow.Notice{Code: workflow.NotAuthorized}}
	}

	from := sess.Stage.Name()
	next, views := s.run(ctx, sess.SubmitterID, sess.Stage, ev)
	s.sessions.Advance(sess, next)

	s.logger.WithFields(logrus.Fields{
		"actor_id":   actorID,
		"session_id": sessionID,
		"from":       from,
		"to":         next.Name(),
	}).Debug("Workflow session advanced")

	return views
}

// HandleRecordEvent applies an interaction to a persisted request.
func (s *OvertimeService) HandleRecordEvent(ctx context.Context, requestID uint, ev workflow.Event) []workflow.View {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		s.logger.WithError(err).WithField("request_id", requestID).Error("Failed to load overtime request")
		return []workflow.View{workflow.Notice{Code: workflow.StoreUnavailable, RequestID: requestID}}
	}

	if req == nil {
		return []workflow.View{workflow.Notice{Code: workflow.RequestNotFound, RequestID: requestID}}
	}

	_, views := s.run(ctx, req.SubmitterID, workflow.StageForRecord(req), ev)
	return views
}

// ListRequests returns the latest requests of the submitter.
func (s *OvertimeService) ListRequests(ctx context.Context, submitterID string, limit int) ([]*models.OvertimeRequest, error) {
	requests, err := s.requests.ListBySubmitter(ctx, submitterID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list requests: %v", ErrPersistence, err)
	}
	return requests, nil
}

// run transitions until no effect feeds an event back.
func (s *OvertimeService) run(ctx context.Context, submitterID string, stage workflow.Stage, ev workflow.Event) (workflow.Stage, []workflow.View) {
	var views []workflow.View

	for ev != nil {
		next, effects := workflow.Transition(stage, ev)
		stage, ev = next, nil

		for _, effect := range effects {
			if v, ok := effect.(workflow.View); ok {
				views = append(views, v)
				continue
			}

			followUp, produced := s.execute(ctx, submitterID, effect)
			views = append(views, produced...)
			if followUp != nil {
				ev = followUp
			}
		}
	}

	return stage, views
}

func (s *OvertimeService) execute(ctx context.Context, submitterID string, effect workflow.Effect) (workflow.Event, []workflow.View) {
	switch e := effect.(type) {
	case workflow.LoadCandidates:
		candidates, err := s.candidates.Candidates(ctx, submitterID)
		if err != nil {
			s.logger.WithError(err).WithField("actor_id", submitterID).Error("Failed to resolve overtime candidates")
			return workflow.CandidatesFailed{Err: err}, nil
		}
		return workflow.CandidatesLoaded{Choice: e.Choice, Candidates: candidates}, nil

	case workflow.LoadProfile:
		profile, err := s.profiles.LookupPerson(ctx, submitterID)
		if err != nil {
			s.logger.WithError(err).WithField("actor_id", submitterID).Error("Failed to load employee profile")
			return workflow.ProfileFailed{Err: err}, nil
		}
		if profile == nil {
			s.logger.WithField("actor_id", submitterID).Warn("Employee profile not found")
			return workflow.ProfileMissing{}, nil
		}
		return workflow.ProfileLoaded{Profile: *profile}, nil

	case workflow.CreateRequest:
		return nil, s.createRequest(ctx, submitterID, e.Form)

	case workflow.ForwardRequest:
		return nil, s.forwardRequest(ctx, e.Request)

	case workflow.CancelRequest:
		return nil, s.cancelRequest(ctx, e.Request, e.ActorID)

	case workflow.ResendDocument:
		return nil, s.resendDocument(ctx, e.Request)

	case workflow.ApplyDecision:
		return nil, s.applyDecision(ctx, e)
	}

	s.logger.Errorf("Unhandled workflow effect %T", effect)
	return nil, []workflow.View{workflow.Notice{Code: workflow.InternalError}}
}

func notice(code workflow.NoticeCode, requestID uint) []workflow.View {
	return []workflow.View{workflow.Notice{Code: code, RequestID: requestID}}
}

func attachmentFor(requestID uint, form models.OvertimeForm, doc []byte) *Attachment {
	name := strings.Join(strings.Fields(form.Employee.Name), "")
	if name == "" {
		name = "Colaborador"
	}
	return &Attachment{
		Name: fmt.Sprintf("Solicitacao_%s_%d.pdf", name, requestID),
		Data: doc,
	}
}

func (s *OvertimeService) createRequest(ctx context.Context, submitterID string, form models.OvertimeForm) []workflow.View {
	form.GeneratedOn = models.DateKey(s.now())

	id, err := s.requests.Create(ctx, submitterID, form)
	if err != nil {
		s.logger.WithError(fmt.Errorf("%w: %v", ErrPersistence, err)).WithField("actor_id", submitterID).Error("Failed to create overtime request")
		return notice(workflow.PersistenceFailed, 0)
	}

	return s.sendForReview(ctx, submitterID, id, form)
}

// resendDocument repeats the review message of a request whose first delivery
// never reached the submitter.
func (s *OvertimeService) resendDocument(ctx context.Context, req *models.OvertimeRequest) []workflow.View {
	s.logger.WithFields(logrus.Fields{
		"actor_id":   req.SubmitterID,
		"request_id": req.ID,
	}).Info("Resending overtime document to submitter")

	return s.sendForReview(ctx, req.SubmitterID, req.ID, req.Form())
}

// sendForReview composes the unsigned document and delivers it to the submitter
// with the forward and cancel controls.
func (s *OvertimeService) sendForReview(ctx context.Context, submitterID string, id uint, form models.OvertimeForm) []workflow.View {
	log := s.logger.WithFields(logrus.Fields{"actor_id": submitterID, "request_id": id})

	doc, err := s.composer.Compose(form)
	if err != nil {
		log.WithError(fmt.Errorf("%w: %v", ErrComposition, err)).Error("Failed to compose overtime document")
		return notice(workflow.CompositionFailed, id)
	}

	err = s.notifier.Deliver(ctx, submitterID, workflow.SubmitterReviewDM{RequestID: id, Form: form}, attachmentFor(id, form, doc))
	switch {
	case errors.Is(err, ErrDeliveryForbidden):
		log.WithError(err).Warn("Submitter does not accept direct messages")
		return notice(workflow.DMForbidden, id)
	case err != nil:
		log.WithError(err).Error("Failed to deliver document to submitter")
		return notice(workflow.DeliveryFailed, id)
	}

	log.Info("Overtime document sent to submitter")
	return notice(workflow.DocumentSent, id)
}

func (s *OvertimeService) forwardRequest(ctx context.Context, req *models.OvertimeRequest) []workflow.View {
	form := req.Form()
	log := s.logger.WithFields(logrus.Fields{"actor_id": req.SubmitterID, "request_id": req.ID})

	approverID, err := s.approvers.ApproverFor(ctx, form.Employee.TeamID)
	if errors.Is(err, ErrNoApprover) {
		log.WithError(err).Warn("No approver assigned to the team")
		return []workflow.View{workflow.Notice{Code: workflow.NoApprover, RequestID: req.ID, Detail: fmt.Sprint(form.Employee.TeamID)}}
	}
	if err != nil {
		log.WithError(err).Error("Failed to look up approver")
		return notice(workflow.StoreUnavailable, req.ID)
	}

	log = log.WithField("approver_id", approverID)

	ok, err := s.requests.MarkForwarded(ctx, req.ID, approverID, s.now())
	if err != nil {
		log.WithError(err).Error("Failed to mark request as forwarded")
		return notice(workflow.StoreUnavailable, req.ID)
	}
	if !ok {
		return notice(workflow.AlreadyForwarded, req.ID)
	}

	rollback := func() {
		if err := s.requests.ClearForwarded(ctx, req.ID); err != nil {
			log.WithError(err).Error("Failed to roll back forward marker")
			s.alert(ctx, fmt.Sprintf("Solicitação #%d ficou marcada como encaminhada sem entrega ao aprovador %s.", req.ID, approverID))
		}
	}

	doc, err := s.composer.Compose(form)
	if err != nil {
		log.WithError(fmt.Errorf("%w: %v", ErrComposition, err)).Error("Failed to compose overtime document")
		rollback()
		return notice(workflow.CompositionFailed, req.ID)
	}

	view := workflow.ApproverRequestDM{RequestID: req.ID, Form: form}
	if err := s.notifier.Deliver(ctx, approverID, view, attachmentFor(req.ID, form, doc)); err != nil {
		log.WithError(err).Error("Failed to deliver request to approver")
		rollback()
		return []workflow.View{workflow.Notice{Code: workflow.ApproverUnreachable, RequestID: req.ID, Subject: approverID}}
	}

	log.Info("Overtime request forwarded to approver")
	return []workflow.View{workflow.Notice{Code: workflow.Forwarded, RequestID: req.ID, Subject: approverID}}
}

func (s *OvertimeService) cancelRequest(ctx context.Context, req *models.OvertimeRequest, actorID string) []workflow.View {
	log := s.logger.WithFields(logrus.Fields{"actor_id": actorID, "request_id": req.ID})

	ok, err := s.requests.Cancel(ctx, req.ID, actorID)
	if err != nil {
		log.WithError(err).Error("Failed to cancel overtime request")
		return notice(workflow.StoreUnavailable, req.ID)
	}
	if !ok {
		return notice(workflow.CancelFailed, req.ID)
	}

	log.Info("Overtime request cancelled by submitter")
	return notice(workflow.RequestCancelled, req.ID)
}

// applyDecision records the decision first. Failures after that point are logged
// and alerted but never undo the decision.
func (s *OvertimeService) applyDecision(ctx context.Context, e workflow.ApplyDecision) []workflow.View {
	req := e.Request
	form := req.Form()
	log := s.logger.WithFields(logrus.Fields{"actor_id": e.ActorID, "request_id": req.ID})

	status := models.StatusRejected
	if e.Approve {
		status = models.StatusApproved
	}

	at := s.now()
	ok, err := s.requests.TransitionFromPending(ctx, req.ID, status, e.ActorID, at)
	if err != nil {
		log.WithError(err).Error("Failed to record decision")
		return notice(workflow.StoreUnavailable, req.ID)
	}
	if !ok {
		log.WithError(ErrAlreadyResolved).Warn("Decision ignored")
		return notice(workflow.AlreadyResolved, req.ID)
	}

	log.WithField("status", status).Info("Overtime request decided")

	var attachment *Attachment
	emailFailed := false

	if e.Approve {
		doc, err := s.composer.Compose(form)
		if err != nil {
			log.WithError(fmt.Errorf("%w: %v", ErrComposition, err)).Error("Failed to compose approved document")
			s.alert(ctx, fmt.Sprintf("Solicitação #%d aprovada, mas o documento não pôde ser gerado: %v", req.ID, err))
			emailFailed = true
		} else {
			doc = s.composer.Stamp(doc, models.ApprovalStamp{Name: e.ActorName, ID: e.ActorID, At: at})
			attachment = attachmentFor(req.ID, form, doc)

			if err := s.mailer.SendApproved(ctx, form, doc); err != nil {
				log.WithError(err).Error("Failed to email approved request")
				s.alert(ctx, fmt.Sprintf("Solicitação #%d aprovada, mas o e-mail ao RH falhou: %v", req.ID, err))
				emailFailed = true
			}
		}
	}

	decision := workflow.DecisionDM{
		RequestID:    req.ID,
		Approved:     e.Approve,
		ApproverName: e.ActorName,
		EmailFailed:  emailFailed,
	}
	if err := s.notifier.Deliver(ctx, req.SubmitterID, decision, attachment); err != nil {
		log.WithError(err).Error("Failed to notify submitter of the decision")
		s.alert(ctx, fmt.Sprintf("Solicitação #%d (%s): não foi possível avisar o colaborador %s: %v", req.ID, status, req.SubmitterID, err))
	}

	code := workflow.Rejected
	if e.Approve {
		code = workflow.Approved
	}
	return []workflow.View{workflow.Notice{Code: code, RequestID: req.ID, Subject: form.Employee.Name}}
}

func (s *OvertimeService) alert(ctx context.Context, text string) {
	if s.alerter != nil {
		s.alerter.Alert(ctx, text)
	}
}

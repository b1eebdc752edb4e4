package workflow

import (
	"hr-ops-bot/internal/models"
)

// Effect is something a transition asks the caller to do. Views are effects that
// only render; every other effect performs I/O and may feed an event back.
type Effect interface {
	effect()
}

// View is rendered either as the reply to the interaction that caused it or as a
// direct message.
type View interface {
	Effect
	view()
}

type LoadCandidates struct {
	Choice models.CompensationChoice
}

type LoadProfile struct{}

type CreateRequest struct {
	Form models.OvertimeForm
}

type ForwardRequest struct {
	Request *models.OvertimeRequest
}

type CancelRequest struct {
	Request *models.OvertimeRequest
	ActorID string
}

// ResendDocument delivers the review message of a persisted request to its submitter again.
type ResendDocument struct {
	Request *models.OvertimeRequest
}

type ApplyDecision struct {
	Request   *models.OvertimeRequest
	ActorID   string
	ActorName string
	Approve   bool
}

func (LoadCandidates) effect() {}
func (LoadProfile) effect()    {}
func (CreateRequest) effect()  {}
func (ForwardRequest) effect() {}
func (CancelRequest) effect()  {}
func (ResendDocument) effect() {}
func (ApplyDecision) effect()  {}

type ChoicePrompt struct{}

type DatePicker struct {
	Choice     models.CompensationChoice
	Candidates []models.OvertimeCandidate
	Selected   []string
}

type JustificationForm struct {
	Justification string
	Activities    string
}

type ReviewSummary struct {
	Form models.OvertimeForm
}

// Notice is a short status message. Retryable notices leave the current controls
// in place.
type Notice struct {
	Code      NoticeCode
	RequestID uint
	Subject   string
	Detail    string
}

// SubmitterReviewDM carries the unsigned document and the forward/cancel controls.
type SubmitterReviewDM struct {
	RequestID uint
	Form      models.OvertimeForm
}

// ApproverRequestDM carries the document and the approve/reject controls.
type ApproverRequestDM struct {
	RequestID uint
	Form      models.OvertimeForm
}

type DecisionDM struct {
	RequestID    uint
	Approved     bool
	ApproverName string
	EmailFailed  bool
}

func (ChoicePrompt) effect()      {}
func (DatePicker) effect()        {}
func (JustificationForm) effect() {}
func (ReviewSummary) effect()     {}
func (Notice) effect()            {}
func (SubmitterReviewDM) effect() {}
func (ApproverRequestDM) effect() {}
func (DecisionDM) effect()        {}

func (ChoicePrompt) view()      {}
func (DatePicker) view()        {}
func (JustificationForm) view() {}
func (ReviewSummary) view()     {}
func (Notice) view()            {}
func (SubmitterReviewDM) view() {}
func (ApproverRequestDM) view() {}
func (DecisionDM) view()        {}

type NoticeCode string

const (
	SessionExpired      NoticeCode = "session_expired"
	StaleControl        NoticeCode = "stale_control"
	NoCandidates        NoticeCode = "no_candidates"
	DataSourceFailed    NoticeCode = "data_source_failed"
	NoDatesSelected     NoticeCode = "no_dates_selected"
	ProfileNotFound     NoticeCode = "profile_not_found"
	EmptyJustification  NoticeCode = "empty_justification"
	Cancelled           NoticeCode = "cancelled"
	PersistenceFailed   NoticeCode = "persistence_failed"
	CompositionFailed   NoticeCode = "composition_failed"
	DocumentSent        NoticeCode = "document_sent"
	DMForbidden         NoticeCode = "dm_forbidden"
	DeliveryFailed      NoticeCode = "delivery_failed"
	NoApprover          NoticeCode = "no_approver"
	ApproverUnreachable NoticeCode = "approver_unreachable"
	Forwarded           NoticeCode = "forwarded"
	AlreadyForwarded    NoticeCode = "already_forwarded"
	RequestCancelled    NoticeCode = "request_cancelled"
	CancelFailed        NoticeCode = "cancel_failed"
	StoreUnavailable    NoticeCode = "store_unavailable"
	NotAuthorized       NoticeCode = "not_authorized"
	AlreadyResolved     NoticeCode = "already_resolved"
	Approved            NoticeCode = "approved"
	Rejected            NoticeCode = "rejected"
	ControlsExpired     NoticeCode = "controls_expired"
	RequestNotFound     NoticeCode = "request_not_found"
	RateLimited         NoticeCode = "rate_limited"
	InternalError       NoticeCode = "internal_error"
)

// Retryable reports whether the user can act again on the same controls.
func (c NoticeCode) Retryable() bool {
	switch c {
	case StaleControl, NoDatesSelected, EmptyJustification, NoApprover,
		ApproverUnreachable, StoreUnavailable, NotAuthorized, RateLimited:
		return true
	}
	return false
}

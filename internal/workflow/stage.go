package workflow

import (
	"strings"
	"time"

	"hr-ops-bot/internal/models"
)

// DecisionWindow is how long the approver controls stay usable after forwarding.
const DecisionWindow = 24 * time.Hour

// Stage is one step of the overtime request workflow. Transitions are pure: they
// never perform I/O and return the effects the caller has to run.
type Stage interface {
	Name() string
	// IdleTimeout is how long an in-memory session may stay in the stage. Zero
	// means the stage is not held in memory.
	IdleTimeout() time.Duration
	on(ev Event) (Stage, []Effect)
}

// Transition applies ev to stage. A nil stage is an expired session.
func Transition(stage Stage, ev Event) (Stage, []Effect) {
	if stage == nil {
		return Finished{}, []Effect{Notice{Code: SessionExpired}}
	}
	return stage.on(ev)
}

// IsTerminal reports whether the session holding stage is over.
func IsTerminal(stage Stage) bool {
	_, ok := stage.(Finished)
	return ok
}

func stale(stage Stage) (Stage, []Effect) {
	return stage, []Effect{Notice{Code: StaleControl}}
}

func finish(effects ...Effect) (Stage, []Effect) {
	return Finished{}, effects
}

// ChoiceSelection waits for the compensation type.
type ChoiceSelection struct{}

func (ChoiceSelection) Name() string               { return "choice_selection" }
func (ChoiceSelection) IdleTimeout() time.Duration { return 180 * time.Second }

func (s ChoiceSelection) on(ev Event) (Stage, []Effect) {
	switch e := ev.(type) {
	case ChoicePicked:
		if !e.Choice.IsValid() {
			return stale(s)
		}
		return s, []Effect{LoadCandidates{Choice: e.Choice}}
	case CandidatesLoaded:
		if len(e.Candidates) == 0 {
			return finish(Notice{Code: NoCandidates})
		}
		return DateSelection{Choice: e.Choice, Candidates: e.Candidates},
			[]Effect{DatePicker{Choice: e.Choice, Candidates: e.Candidates}}
	case CandidatesFailed:
		return finish(Notice{Code: DataSourceFailed})
	}
	return stale(s)
}

// DateSelection lets the submitter stage the days to include.
type DateSelection struct {
	Choice     models.CompensationChoice
	Candidates []models.OvertimeCandidate
	Selected   []string
}

func (DateSelection) Name() string               { return "date_selection" }
func (DateSelection) IdleTimeout() time.Duration { return 300 * time.Second }

func (s DateSelection) on(ev Event) (Stage, []Effect) {
	switch e := ev.(type) {
	case DatesStaged:
		s.Selected = s.filter(e.Values)
		return s, nil
	case DatesConfirmed:
		if len(s.Selected) == 0 {
			return s, []Effect{Notice{Code: NoDatesSelected}}
		}
		return s, []Effect{LoadProfile{}}
	case ProfileLoaded:
		if len(s.Selected) == 0 {
			return stale(s)
		}
		return JustificationEntry{
			Choice:   s.Choice,
			Days:     s.selectedDays(),
			Employee: e.Profile,
		}, []Effect{JustificationForm{}}
	case ProfileMissing:
		return finish(Notice{Code: ProfileNotFound})
	case ProfileFailed:
		return finish(Notice{Code: DataSourceFailed})
	}
	return stale(s)
}

// filter keeps the known values, in candidate order, without duplicates.
func (s DateSelection) filter(values []string) []string {
	wanted := make(map[string]bool, len(values))
	for _, v := range values {
		wanted[v] = true
	}

	selected := []string{}
	for _, c := range s.Candidates {
		if wanted[c.Key()] {
			selected = append(selected, c.Key())
			delete(wanted, c.Key())
		}
	}
	return selected
}

func (s DateSelection) selectedDays() []models.SelectedDay {
	chosen := make(map[string]bool, len(s.Selected))
	for _, v := range s.Selected {
		chosen[v] = true
	}

	days := make([]models.SelectedDay, 0, len(s.Selected))
	for _, c := range s.Candidates {
		if chosen[c.Key()] {
			days = append(days, c.ToSelectedDay())
		}
	}
	return days
}

// JustificationEntry waits for the justification form.
type JustificationEntry struct {
	Choice        models.CompensationChoice
	Days          []models.SelectedDay
	Employee      models.EmployeeProfile
	Justification string
	Activities    string
}

func (JustificationEntry) Name() string               { return "justification_entry" }
func (JustificationEntry) IdleTimeout() time.Duration { return 600 * time.Second }

func (s JustificationEntry) on(ev Event) (Stage, []Effect) {
	switch e := ev.(type) {
	case JustificationSubmitted:
		s.Justification = strings.TrimSpace(e.Justification)
		s.Activities = strings.TrimSpace(e.Activities)
		if s.Justification == "" || s.Activities == "" {
			return s, []Effect{Notice{Code: EmptyJustification}}
		}
		form := models.OvertimeForm{
			Employee:      s.Employee,
			Days:          s.Days,
			Justification: s.Justification,
			Activities:    s.Activities,
			Compensation:  s.Choice,
		}
		return ReviewConfirmation{Form: form}, []Effect{ReviewSummary{Form: form}}
	case EditRequested, DatesConfirmed:
		return s, []Effect{JustificationForm{Justification: s.Justification, Activities: s.Activities}}
	}
	return stale(s)
}

// ReviewConfirmation shows the collected data before anything is persisted.
type ReviewConfirmation struct {
	Form models.OvertimeForm
}

func (ReviewConfirmation) Name() string               { return "review_confirmation" }
func (ReviewConfirmation) IdleTimeout() time.Duration { return 600 * time.Second }

func (s ReviewConfirmation) on(ev Event) (Stage, []Effect) {
	switch ev.(type) {
	case ReviewConfirmed:
		return finish(CreateRequest{Form: s.Form})
	case ReviewCancelled:
		return finish(Notice{Code: Cancelled})
	case EditRequested:
		return JustificationEntry{
				Choice:        s.Form.Compensation,
				Days:          s.Form.Days,
				Employee:      s.Form.Employee,
				Justification: s.Form.Justification,
				Activities:    s.Form.Activities,
			}, []Effect{JustificationForm{
				Justification: s.Form.Justification,
				Activities:    s.Form.Activities,
			}}
	}
	return stale(s)
}

// Finished ends an in-memory session.
type Finished struct{}

func (Finished) Name() string               { return "finished" }
func (Finished) IdleTimeout() time.Duration { return 0 }

func (s Finished) on(Event) (Stage, []Effect) {
	return s, []Effect{Notice{Code: SessionExpired}}
}

// StageForRecord rebuilds the stage of a persisted request.
func StageForRecord(req *models.OvertimeRequest) Stage {
	switch {
	case req.Status != models.StatusPendingApproval:
		return Closed{Request: req}
	case req.IsForwarded():
		return AwaitingDecision{Request: req}
	default:
		return AwaitingForward{Request: req}
	}
}

// AwaitingForward is a pending request the submitter has not forwarded yet.
type AwaitingForward struct {
	Request *models.OvertimeRequest
}

func (AwaitingForward) Name() string               { return "awaiting_forward" }
func (AwaitingForward) IdleTimeout() time.Duration { return 0 }

func (s AwaitingForward) on(ev Event) (Stage, []Effect) {
	switch e := ev.(type) {
	case ForwardClicked:
		if e.ActorID != s.Request.SubmitterID {
			return s, []Effect{Notice{Code: NotAuthorized, RequestID: s.Request.ID}}
		}
		return s, []Effect{ForwardRequest{Request: s.Request}}
	case CancelClicked:
		if e.ActorID != s.Request.SubmitterID {
			return s, []Effect{Notice{Code: NotAuthorized, RequestID: s.Request.ID}}
		}
		return s, []Effect{CancelRequest{Request: s.Request, ActorID: e.ActorID}}
	case ResendClicked:
		if e.ActorID != s.Request.SubmitterID {
			return s, []Effect{Notice{Code: NotAuthorized, RequestID: s.Request.ID}}
		}
		return s, []Effect{ResendDocument{Request: s.Request}}
	}
	return s, []Effect{Notice{Code: StaleControl, RequestID: s.Request.ID}}
}

// AwaitingDecision is a pending request sitting with its assigned approver.
type AwaitingDecision struct {
	Request *models.OvertimeRequest
}

func (AwaitingDecision) Name() string               { return "awaiting_decision" }
func (AwaitingDecision) IdleTimeout() time.Duration { return 0 }

func (s AwaitingDecision) on(ev Event) (Stage, []Effect) {
	switch e := ev.(type) {
	case DecisionClicked:
		if s.Request.AssignedApproverID == nil || e.ActorID != *s.Request.AssignedApproverID {
			return s, []Effect{Notice{Code: NotAuthorized, RequestID: s.Request.ID}}
		}
		if s.Request.ForwardedAt != nil && e.At.After(s.Request.ForwardedAt.Add(DecisionWindow)) {
			return s, []Effect{Notice{Code: ControlsExpired, RequestID: s.Request.ID}}
		}
		return s, []Effect{ApplyDecision{
			Request:   s.Request,
			ActorID:   e.ActorID,
			ActorName: e.ActorName,
			Approve:   e.Approve,
		}}
	case ForwardClicked, CancelClicked, ResendClicked:
		return s, []Effect{Notice{Code: AlreadyForwarded, RequestID: s.Request.ID}}
	}
	return s, []Effect{Notice{Code: StaleControl, RequestID: s.Request.ID}}
}

// Closed is a request in a terminal status.
type Closed struct {
	Request *models.OvertimeRequest
}

func (Closed) Name() string               { return "closed" }
func (Closed) IdleTimeout() time.Duration { return 0 }

func (s Closed) on(Event) (Stage, []Effect) {
	return s, []Effect{Notice{Code: AlreadyResolved, RequestID: s.Request.ID, Detail: string(s.Request.Status)}}
}

package workflow

import (
	"time"

	"hr-ops-bot/internal/models"
)

// Event is an input to a stage: a user interaction or the result of an effect.
type Event interface {
	event()
}

type ChoicePicked struct {
	Choice models.CompensationChoice
}

type CandidatesLoaded struct {
	Choice     models.CompensationChoice
	Candidates []models.OvertimeCandidate
}

type CandidatesFailed struct {
	Err error
}

// DatesStaged replaces the staged selection with the values picked in the menu.
type DatesStaged struct {
	Values []string
}

type DatesConfirmed struct{}

type ProfileLoaded struct {
	Profile models.EmployeeProfile
}

type ProfileMissing struct{}

type ProfileFailed struct {
	Err error
}

type JustificationSubmitted struct {
	Justification string
	Activities    string
}

type ReviewConfirmed struct{}

type ReviewCancelled struct{}

// EditRequested reopens the justification form with the text typed so far.
type EditRequested struct{}

type ForwardClicked struct {
	ActorID string
}

type CancelClicked struct {
	ActorID string
}

// ResendClicked asks for the review message of an unforwarded request again.
type ResendClicked struct {
	ActorID string
}

type DecisionClicked struct {
	ActorID   string
	ActorName string
	Approve   bool
	At        time.Time
}

func (ChoicePicked) event()           {}
func (CandidatesLoaded) event()       {}
func (CandidatesFailed) event()       {}
func (DatesStaged) event()            {}
func (DatesConfirmed) event()         {}
func (ProfileLoaded) event()          {}
func (ProfileMissing) event()         {}
func (ProfileFailed) event()          {}
func (JustificationSubmitted) event() {}
func (ReviewConfirmed) event()        {}
func (ReviewCancelled) event()        {}
func (EditRequested) event()          {}
func (ForwardClicked) event()         {}
func (CancelClicked) event()          {}
func (ResendClicked) event()          {}
func (DecisionClicked) event()        {}

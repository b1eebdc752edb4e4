package workflow

import (
	"errors"
	"testing"
	"time"

	"hr-ops-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(date string, overtime int) models.OvertimeCandidate {
	d, _ := time.Parse(models.DateLayout, date)
	return models.OvertimeCandidate{
		Date:            d,
		Punches:         []string{"08:00", "12:00", "13:00", "19:00"},
		WorkedMinutes:   600,
		OvertimeMinutes: overtime,
	}
}

func onlyNotice(t *testing.T, effects []Effect) Notice {
	t.Helper()
	require.Len(t, effects, 1)
	n, ok := effects[0].(Notice)
	require.True(t, ok, "expected a notice, got %T", effects[0])
	return n
}

func TestTransitionNilStageIsExpired(t *testing.T) {
	next, effects := Transition(nil, DatesConfirmed{})
	assert.True(t, IsTerminal(next))
	assert.Equal(t, SessionExpired, onlyNotice(t, effects).Code)
}

func TestChoiceSelection(t *testing.T) {
	stage, effects := Transition(ChoiceSelection{}, ChoicePicked{Choice: models.CompensationBank})
	assert.Equal(t, ChoiceSelection{}, stage)
	assert.Equal(t, []Effect{LoadCandidates{Choice: models.CompensationBank}}, effects)

	stage, effects = Transition(ChoiceSelection{}, ChoicePicked{Choice: "unknown"})
	assert.Equal(t, ChoiceSelection{}, stage)
	assert.Equal(t, StaleControl, onlyNotice(t, effects).Code)

	cands := []models.OvertimeCandidate{candidate("2026-10-13", 60), candidate("2026-10-12", 120)}
	stage, effects = Transition(ChoiceSelection{}, CandidatesLoaded{Choice: models.CompensationBank, Candidates: cands})
	require.IsType(t, DateSelection{}, stage)
	assert.Equal(t, cands, stage.(DateSelection).Candidates)
	assert.Equal(t, []Effect{DatePicker{Choice: models.CompensationBank, Candidates: cands}}, effects)
}

func TestChoiceSelectionTerminalOutcomes(t *testing.T) {
	stage, effects := Transition(ChoiceSelection{}, CandidatesLoaded{Choice: models.CompensationBank})
	assert.True(t, IsTerminal(stage))
	assert.Equal(t, NoCandidates, onlyNotice(t, effects).Code)

	stage, effects = Transition(ChoiceSelection{}, CandidatesFailed{Err: errors.New("portal down")})
	assert.True(t, IsTerminal(stage))
	assert.Equal(t, DataSourceFailed, onlyNotice(t, effects).Code)
}

func TestDateSelection(t *testing.T) {
	base := DateSelection{
		Choice:     models.CompensationPayment,
		Candidates: []models.OvertimeCandidate{candidate("2026-10-14", 30), candidate("2026-10-13", 60), candidate("2026-10-12", 120)},
	}

	stage, effects := Transition(base, DatesConfirmed{})
	assert.Equal(t, base, stage)
	assert.Equal(t, NoDatesSelected, onlyNotice(t, effects).Code)
	assert.True(t, NoDatesSelected.Retryable())

	stage, effects = Transition(base, DatesStaged{Values: []string{"2026-10-12", "1999-01-01", "2026-10-14", "2026-10-12"}})
	assert.Empty(t, effects)
	staged := stage.(DateSelection)
	assert.Equal(t, []string{"2026-10-14", "2026-10-12"}, staged.Selected)

	stage, effects = Transition(staged, DatesConfirmed{})
	assert.Equal(t, staged, stage)
	assert.Equal(t, []Effect{LoadProfile{}}, effects)

	profile := models.EmployeeProfile{DiscordID: "100", Name: "Ana Souza", TeamID: 7}
	stage, effects = Transition(staged, ProfileLoaded{Profile: profile})
	require.IsType(t, JustificationEntry{}, stage)
	entry := stage.(JustificationEntry)
	assert.Equal(t, profile, entry.Employee)
	assert.Equal(t, models.CompensationPayment, entry.Choice)
	require.Len(t, entry.Days, 2)
	assert.Equal(t, "2026-10-14", entry.Days[0].Date)
	assert.Equal(t, "2026-10-12", entry.Days[1].Date)
	assert.Equal(t, []Effect{JustificationForm{}}, effects)
}

func TestDateSelectionProfileFailures(t *testing.T) {
	staged := DateSelection{
		Candidates: []models.OvertimeCandidate{candidate("2026-10-12", 120)},
		Selected:   []string{"2026-10-12"},
	}

	stage, effects := Transition(staged, ProfileMissing{})
	assert.True(t, IsTerminal(stage))
	assert.Equal(t, ProfileNotFound, onlyNotice(t, effects).Code)

	stage, effects = Transition(staged, ProfileFailed{Err: errors.New("timeout")})
	assert.True(t, IsTerminal(stage))
	assert.Equal(t, DataSourceFailed, onlyNotice(t, effects).Code)
}

func TestJustificationEntry(t *testing.T) {
	entry := JustificationEntry{
		Choice:   models.CompensationTimeOff,
		Days:     []models.SelectedDay{candidate("2026-10-12", 120).ToSelectedDay()},
		Employee: models.EmployeeProfile{DiscordID: "100", Name: "Ana Souza"},
	}

	stage, effects := Transition(entry, JustificationSubmitted{Justification: "   ", Activities: "Deploy"})
	assert.Equal(t, EmptyJustification, onlyNotice(t, effects).Code)
	assert.Equal(t, "Deploy", stage.(JustificationEntry).Activities)

	_, effects = Transition(stage, EditRequested{})
	assert.Equal(t, []Effect{JustificationForm{Activities: "Deploy"}}, effects)

	stage, effects = Transition(entry, JustificationSubmitted{Justification: " Fechamento ", Activities: "Deploy"})
	require.IsType(t, ReviewConfirmation{}, stage)
	form := stage.(ReviewConfirmation).Form
	assert.Equal(t, "Fechamento", form.Justification)
	assert.Equal(t, "Deploy", form.Activities)
	assert.Equal(t, models.CompensationTimeOff, form.Compensation)
	assert.Equal(t, entry.Days, form.Days)
	assert.Equal(t, []Effect{ReviewSummary{Form: form}}, effects)
}

func TestReviewConfirmation(t *testing.T) {
	form := models.OvertimeForm{
		Employee:      models.EmployeeProfile{DiscordID: "100"},
		Days:          []models.SelectedDay{{Date: "2026-10-12"}},
		Justification: "Fechamento",
		Activities:    "Deploy",
		Compensation:  models.CompensationBank,
	}
	review := ReviewConfirmation{Form: form}

	stage, effects := Transition(review, ReviewConfirmed{})
	assert.True(t, IsTerminal(stage))
	assert.Equal(t, []Effect{CreateRequest{Form: form}}, effects)

	stage, effects = Transition(review, ReviewCancelled{})
	assert.True(t, IsTerminal(stage))
	assert.Equal(t, Cancelled, onlyNotice(t, effects).Code)

	stage, effects = Transition(review, EditRequested{})
	require.IsType(t, JustificationEntry{}, stage)
	assert.Equal(t, "Fechamento", stage.(JustificationEntry).Justification)
	assert.Equal(t, []Effect{JustificationForm{Justification: "Fechamento", Activities: "Deploy"}}, effects)

	stage, effects = Transition(review, DatesStaged{})
	assert.Equal(t, review, stage)
	assert.Equal(t, StaleControl, onlyNotice(t, effects).Code)
}

func strPtr(s string) *string { return &s }

func TestStageForRecord(t *testing.T) {
	forwardedAt := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

	pending := &models.OvertimeRequest{ID: 1, SubmitterID: "100", Status: models.StatusPendingApproval}
	forwarded := &models.OvertimeRequest{ID: 2, SubmitterID: "100", Status: models.StatusPendingApproval,
		AssignedApproverID: strPtr("200"), ForwardedAt: &forwardedAt}
	approved := &models.OvertimeRequest{ID: 3, SubmitterID: "100", Status: models.StatusApproved}

	assert.IsType(t, AwaitingForward{}, StageForRecord(pending))
	assert.IsType(t, AwaitingDecision{}, StageForRecord(forwarded))
	assert.IsType(t, Closed{}, StageForRecord(approved))
}

func TestAwaitingForward(t *testing.T) {
	req := &models.OvertimeRequest{ID: 9, SubmitterID: "100", Status: models.StatusPendingApproval}
	stage := StageForRecord(req)

	_, effects := Transition(stage, ForwardClicked{ActorID: "100"})
	assert.Equal(t, []Effect{ForwardRequest{Request: req}}, effects)

	_, effects = Transition(stage, CancelClicked{ActorID: "100"})
	assert.Equal(t, []Effect{CancelRequest{Request: req, ActorID: "100"}}, effects)

	_, effects = Transition(stage, ForwardClicked{ActorID: "300"})
	assert.Equal(t, NotAuthorized, onlyNotice(t, effects).Code)

	_, effects = Transition(stage, ResendClicked{ActorID: "100"})
	assert.Equal(t, []Effect{ResendDocument{Request: req}}, effects)

	_, effects = Transition(stage, ResendClicked{ActorID: "300"})
	assert.Equal(t, NotAuthorized, onlyNotice(t, effects).Code)

	_, effects = Transition(stage, DecisionClicked{ActorID: "200", Approve: true})
	assert.Equal(t, StaleControl, onlyNotice(t, effects).Code)
}

func TestAwaitingDecision(t *testing.T) {
	forwardedAt := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	req := &models.OvertimeRequest{ID: 9, SubmitterID: "100", Status: models.StatusPendingApproval,
		AssignedApproverID: strPtr("200"), ForwardedAt: &forwardedAt}
	stage := StageForRecord(req)

	_, effects := Transition(stage, DecisionClicked{ActorID: "200", ActorName: "Carlos", Approve: true, At: forwardedAt.Add(time.Hour)})
	assert.Equal(t, []Effect{ApplyDecision{Request: req, ActorID: "200", ActorName: "Carlos", Approve: true}}, effects)

	_, effects = Transition(stage, DecisionClicked{ActorID: "100", Approve: true, At: forwardedAt})
	assert.Equal(t, NotAuthorized, onlyNotice(t, effects).Code)

	_, effects = Transition(stage, DecisionClicked{ActorID: "200", Approve: false, At: forwardedAt.Add(25 * time.Hour)})
	assert.Equal(t, ControlsExpired, onlyNotice(t, effects).Code)

	_, effects = Transition(stage, CancelClicked{ActorID: "100"})
	assert.Equal(t, AlreadyForwarded, onlyNotice(t, effects).Code)

	_, effects = Transition(stage, ResendClicked{ActorID: "100"})
	assert.Equal(t, AlreadyForwarded, onlyNotice(t, effects).Code)
}

func TestClosedRejectsEverything(t *testing.T) {
	req := &models.OvertimeRequest{ID: 9, SubmitterID: "100", Status: models.StatusRejected}
	stage := StageForRecord(req)

	for _, ev := range []Event{ForwardClicked{ActorID: "100"}, CancelClicked{ActorID: "100"}, DecisionClicked{ActorID: "200"}} {
		_, effects := Transition(stage, ev)
		n := onlyNotice(t, effects)
		assert.Equal(t, AlreadyResolved, n.Code)
		assert.Equal(t, uint(9), n.RequestID)
	}
}

package handler

import (
	"strings"
	"testing"
	"time"

	"hr-ops-bot/internal/models"
	"hr-ops-bot/internal/workflow"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func buttons(t *testing.T, r rendered) []discordgo.Button {
	t.Helper()
	var out []discordgo.Button
	for _, c := range r.Components {
		row, ok := c.(discordgo.ActionsRow)
		require.True(t, ok)
		for _, inner := range row.Components {
			if b, ok := inner.(discordgo.Button); ok {
				out = append(out, b)
			}
		}
	}
	return out
}

func TestRenderChoicePrompt(t *testing.T) {
	r := render(workflow.ChoicePrompt{}, "sess1")

	bs := buttons(t, r)
	require.Len(t, bs, len(models.CompensationChoices))
	for i, b := range bs {
		id, ok := workflow.ParseControlID(b.CustomID)
		require.True(t, ok)
		assert.Equal(t, "sess1", id.SessionID)
		assert.Equal(t, workflow.ActionChoice, id.Action)
		assert.Equal(t, string(models.CompensationChoices[i]), id.Arg)
	}
}

func TestRenderDatePicker(t *testing.T) {
	start := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	var candidates []models.OvertimeCandidate
	for i := 0; i < 30; i++ {
		candidates = append(candidates, models.OvertimeCandidate{
			Date:            start.AddDate(0, 0, -i),
			Punches:         []string{"08:00", "18:00"},
			OvertimeMinutes: 120,
		})
	}

	r := render(workflow.DatePicker{Choice: models.CompensationBank, Candidates: candidates, Selected: []string{"2026-10-12"}}, "sess1")
	require.Len(t, r.Components, 2)

	menu := r.Components[0].(discordgo.ActionsRow).Components[0].(discordgo.SelectMenu)
	assert.Len(t, menu.Options, maxSelectOptions)
	assert.Equal(t, maxSelectOptions, menu.MaxValues)
	assert.Equal(t, "2026-10-12", menu.Options[0].Value)
	assert.True(t, menu.Options[0].Default)
	assert.False(t, menu.Options[1].Default)
	assert.Equal(t, "12/10/2026 - Segunda-feira | 02:00h extras", menu.Options[0].Label)
	assert.Equal(t, "Batidas: 08:00 - 18:00", menu.Options[0].Description)

	confirm := buttons(t, r)
	require.Len(t, confirm, 1)
	assert.Equal(t, workflow.SessionControlID("sess1", workflow.ActionConfirmDates), confirm[0].CustomID)
}

func TestRenderReviewStaysWithinLimit(t *testing.T) {
	form := models.OvertimeForm{
		Employee:      models.EmployeeProfile{Name: "Ana"},
		Compensation:  models.CompensationPayment,
		Justification: strings.Repeat("j", 3000),
		Activities:    strings.Repeat("a", 3000),
		Days:          []models.SelectedDay{{Date: "2026-10-12", Punches: []string{"08:00", "19:00"}, OvertimeMinutes: 120}},
	}

	r := render(workflow.ReviewSummary{Form: form}, "sess1")
	assert.LessOrEqual(t, len([]rune(r.Content)), maxContentLength)
	assert.Contains(t, r.Content, "**Total:** 02:00")
	assert.Len(t, buttons(t, r), 3)
}

func TestRenderNotices(t *testing.T) {
	codes := []workflow.NoticeCode{
		workflow.SessionExpired, workflow.StaleControl, workflow.NoCandidates, workflow.DataSourceFailed,
		workflow.NoDatesSelected, workflow.ProfileNotFound, workflow.EmptyJustification, workflow.Cancelled,
		workflow.PersistenceFailed, workflow.CompositionFailed, workflow.DocumentSent, workflow.DMForbidden,
		workflow.DeliveryFailed, workflow.NoApprover, workflow.ApproverUnreachable, workflow.Forwarded,
		workflow.AlreadyForwarded, workflow.RequestCancelled, workflow.CancelFailed, workflow.StoreUnavailable,
		workflow.NotAuthorized, workflow.AlreadyResolved, workflow.Approved, workflow.Rejected,
		workflow.ControlsExpired, workflow.RequestNotFound, workflow.RateLimited,
	}

	generic := noticeText(workflow.Notice{Code: workflow.InternalError})
	for _, code := range codes {
		assert.NotEqual(t, generic, noticeText(workflow.Notice{Code: code}), "code %v", code)
	}

	assert.Contains(t, noticeText(workflow.Notice{Code: workflow.Forwarded, RequestID: 3, Subject: "200"}), "#3")
	assert.Contains(t, noticeText(workflow.Notice{Code: workflow.Forwarded, RequestID: 3, Subject: "200"}), "<@200>")

	retry := render(workflow.Notice{Code: workflow.EmptyJustification}, "sess1")
	bs := buttons(t, retry)
	require.Len(t, bs, 1)
	assert.Equal(t, workflow.SessionControlID("sess1", workflow.ActionJustify), bs[0].CustomID)
}

func TestRenderDirectMessages(t *testing.T) {
	form := models.OvertimeForm{Employee: models.EmployeeProfile{Name: "Ana"}, Compensation: models.CompensationTimeOff}

	submitterDM := render(workflow.SubmitterReviewDM{RequestID: 5, Form: form}, "")
	bs := buttons(t, submitterDM)
	require.Len(t, bs, 2)
	assert.Equal(t, workflow.RecordControlID(5, workflow.ActionForward), bs[0].CustomID)
	assert.Equal(t, workflow.RecordControlID(5, workflow.ActionCancel), bs[1].CustomID)

	approverDM := render(workflow.ApproverRequestDM{RequestID: 5, Form: form}, "")
	bs = buttons(t, approverDM)
	require.Len(t, bs, 2)
	assert.Equal(t, workflow.RecordControlID(5, workflow.ActionApprove), bs[0].CustomID)
	assert.Equal(t, workflow.RecordControlID(5, workflow.ActionReject), bs[1].CustomID)
	assert.Contains(t, approverDM.Content, "**Ana**")

	assert.Contains(t, render(workflow.DecisionDM{RequestID: 5, Approved: true, ApproverName: "Bruno"}, "").Content, "aprovada")
	assert.Contains(t, render(workflow.DecisionDM{RequestID: 5, Approved: true, EmailFailed: true}, "").Content, "erro no envio")
	assert.Contains(t, render(workflow.DecisionDM{RequestID: 5}, "").Content, "rejeitada")
}

func TestRenderRequestList(t *testing.T) {
	assert.Contains(t, renderRequestList(nil).Content, "ainda não tem")

	forwarded := time.Date(2026, 10, 13, 9, 0, 0, 0, time.UTC)
	requests := []*models.OvertimeRequest{
		{
			ID:          2,
			Status:      models.StatusPendingApproval,
			ForwardedAt: &forwarded,
			CreatedAt:   forwarded,
			Payload: datatypes.NewJSONType(models.OvertimeForm{Days: []models.SelectedDay{
				{Date: "2026-10-12", OvertimeMinutes: 90},
				{Date: "2026-10-13", OvertimeMinutes: 30},
			}}),
		},
		{
			ID:        1,
			Status:    models.StatusRejected,
			CreatedAt: forwarded.AddDate(0, 0, -3),
			Payload:   datatypes.NewJSONType(models.OvertimeForm{Days: []models.SelectedDay{{Date: "2026-10-09", OvertimeMinutes: 60}}}),
		},
	}

	out := renderRequestList(requests)
	assert.Contains(t, out.Content, "#2 • 13/10/2026 • 12/10, 13/10 • 02:00 • Pendente (com o responsável)")
	assert.Contains(t, out.Content, "#1 • 10/10/2026 • 09/10 • 01:00 • Rejeitada")
	assert.Empty(t, out.Components, "forwarded and resolved requests have nothing to resend")
}

func TestRenderRequestListOffersResend(t *testing.T) {
	var requests []*models.OvertimeRequest
	for id := uint(10); id > 2; id-- {
		requests = append(requests, &models.OvertimeRequest{
			ID:        id,
			Status:    models.StatusPendingApproval,
			CreatedAt: time.Date(2026, 10, 13, 9, 0, 0, 0, time.UTC),
			Payload:   datatypes.NewJSONType(models.OvertimeForm{Days: []models.SelectedDay{{Date: "2026-10-12", OvertimeMinutes: 60}}}),
		})
	}
	requests[1].Status = models.StatusCancelled

	bs := buttons(t, renderRequestList(requests))
	require.Len(t, bs, maxResendButtons)
	assert.Equal(t, workflow.RecordControlID(10, workflow.ActionResend), bs[0].CustomID)
	assert.Equal(t, workflow.RecordControlID(8, workflow.ActionResend), bs[1].CustomID)
}

package handler

import (
	"context"
	"time"

	"hr-ops-bot/internal/models"
	"hr-ops-bot/internal/workflow"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

type responseMode int

const (
	// modeDeferred acknowledges first and edits the original message once the
	// workflow is done, for steps that query the directory, the store or Discord.
	modeDeferred responseMode = iota
	// modeDirect answers with the resulting view right away. Opening a modal
	// is only possible this way.
	modeDirect
)

// componentEvent maps a clicked control to a workflow event. A nil event means
// the control is unknown.
func componentEvent(id workflow.ControlID, values []string, actorID, actorName string, at time.Time) (workflow.Event, responseMode) {
	if id.IsRecord() {
		switch id.Action {
		case workflow.ActionForward:
			return workflow.ForwardClicked{ActorID: actorID}, modeDeferred
		case workflow.ActionCancel:
			return workflow.CancelClicked{ActorID: actorID}, modeDeferred
		case workflow.ActionResend:
			return workflow.ResendClicked{ActorID: actorID}, modeDeferred
		case workflow.ActionApprove, workflow.ActionReject:
			return workflow.DecisionClicked{
				ActorID:   actorID,
				ActorName: actorName,
				Approve:   id.Action == workflow.ActionApprove,
				At:        at,
			}, modeDeferred
		}
		return nil, modeDirect
	}

	switch id.Action {
	case workflow.ActionChoice:
		return workflow.ChoicePicked{Choice: models.CompensationChoice(id.Arg)}, modeDeferred
	case workflow.ActionDates:
		return workflow.DatesStaged{Values: values}, modeDeferred
	case workflow.ActionConfirmDates:
		return workflow.DatesConfirmed{}, modeDirect
	case workflow.ActionJustify, workflow.ActionReviewEdit:
		return workflow.EditRequested{}, modeDirect
	case workflow.ActionReviewConfirm:
		return workflow.ReviewConfirmed{}, modeDeferred
	case workflow.ActionReviewCancel:
		return workflow.ReviewCancelled{}, modeDirect
	}
	return nil, modeDirect
}

func (h *Handler) dispatch(ctx context.Context, id workflow.ControlID, actorID string, ev workflow.Event) []workflow.View {
	if id.IsRecord() {
		return h.overtime.HandleRecordEvent(ctx, id.RequestID, ev)
	}
	return h.overtime.HandleSessionEvent(ctx, id.SessionID, actorID, ev)
}

func (h *Handler) handleComponent(ctx context.Context, s InteractionSession, i *discordgo.Interaction) {
	data := i.MessageComponentData()
	user := interactionUser(i)

	id, ok := workflow.ParseControlID(data.CustomID)
	if !ok {
		h.logger.WithField("custom_id", data.CustomID).Warn("Unknown component")
		h.respondEphemeral(s, i, render(workflow.Notice{Code: workflow.StaleControl}, ""))
		return
	}

	ev, mode := componentEvent(id, data.Values, user.ID, displayName(i), h.now())
	if ev == nil {
		h.logger.WithField("custom_id", data.CustomID).Warn("Unknown component action")
		h.respondEphemeral(s, i, render(workflow.Notice{Code: workflow.StaleControl}, ""))
		return
	}

	h.logger.WithFields(logrus.Fields{
		"actor_id":   user.ID,
		"control_id": data.CustomID,
	}).Debug("Component interaction")

	if mode == modeDirect {
		h.respondDirect(s, i, id.SessionID, h.dispatch(ctx, id, user.ID, ev))
		return
	}

	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		h.logger.WithError(err).WithField("interaction_id", i.ID).Error("Failed to defer interaction")
		return
	}

	h.respondDeferred(s, i, id.SessionID, h.dispatch(ctx, id, user.ID, ev))
}

func (h *Handler) handleModalSubmit(ctx context.Context, s InteractionSession, i *discordgo.Interaction) {
	data := i.ModalSubmitData()
	user := interactionUser(i)

	id, ok := workflow.ParseControlID(data.CustomID)
	if !ok || id.IsRecord() || id.Action != workflow.ActionJustify {
		h.logger.WithField("custom_id", data.CustomID).Warn("Unknown modal")
		h.respondEphemeral(s, i, render(workflow.Notice{Code: workflow.StaleControl}, ""))
		return
	}

	values := modalValues(data.Components)
	ev := workflow.JustificationSubmitted{
		Justification: values[justificationInputID],
		Activities:    values[activitiesInputID],
	}

	h.respondDirect(s, i, id.SessionID, h.overtime.HandleSessionEvent(ctx, id.SessionID, user.ID, ev))
}

// modalValues collects text input values by custom id.
func modalValues(components []discordgo.MessageComponent) map[string]string {
	values := make(map[string]string)

	var walk func([]discordgo.MessageComponent)
	walk = func(list []discordgo.MessageComponent) {
		for _, c := range list {
			switch v := c.(type) {
			case *discordgo.ActionsRow:
				walk(v.Components)
			case discordgo.ActionsRow:
				walk(v.Components)
			case *discordgo.TextInput:
				values[v.CustomID] = v.Value
			case discordgo.TextInput:
				values[v.CustomID] = v.Value
			}
		}
	}
	walk(components)

	return values
}

// respondDirect answers the interaction itself with the first view.
func (h *Handler) respondDirect(s InteractionSession, i *discordgo.Interaction, sessionID string, views []workflow.View) {
	if len(views) == 0 {
		err := s.InteractionRespond(i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredMessageUpdate,
		})
		if err != nil {
			h.logger.WithError(err).WithField("interaction_id", i.ID).Error("Failed to acknowledge interaction")
		}
		return
	}

	first, rest := views[0], views[1:]

	switch v := first.(type) {
	case workflow.JustificationForm:
		err := s.InteractionRespond(i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseModal,
			Data: justificationModal(v, sessionID),
		})
		if err != nil {
			h.logger.WithError(err).WithField("interaction_id", i.ID).Error("Failed to open justification form")
		}
	case workflow.Notice:
		if v.Code.Retryable() {
			h.respondEphemeral(s, i, render(v, sessionID))
			break
		}
		h.updateMessage(s, i, render(v, sessionID))
	default:
		h.updateMessage(s, i, render(first, sessionID))
	}

	for _, view := range rest {
		h.followupEphemeral(s, i, render(view, sessionID))
	}
}

func (h *Handler) updateMessage(s InteractionSession, i *discordgo.Interaction, msg rendered) {
	components := msg.Components
	if components == nil {
		components = []discordgo.MessageComponent{}
	}

	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    msg.Content,
			Components: components,
		},
	})
	if err != nil {
		h.logger.WithError(err).WithField("interaction_id", i.ID).Error("Failed to update message")
	}
}

// respondDeferred edits the original message with the first final view. Notices
// the user can act on go to an ephemeral follow-up so the controls stay in place.
func (h *Handler) respondDeferred(s InteractionSession, i *discordgo.Interaction, sessionID string, views []workflow.View) {
	edited := false

	for _, view := range views {
		if n, ok := view.(workflow.Notice); ok && n.Code.Retryable() {
			h.followupEphemeral(s, i, render(n, sessionID))
			continue
		}

		if edited {
			h.followupEphemeral(s, i, render(view, sessionID))
			continue
		}

		h.editOriginal(s, i, render(view, sessionID))
		edited = true
	}
}

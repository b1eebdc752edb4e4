package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hr-ops-bot/internal/service"

	"github.com/bwmarrin/discordgo"
)

// isAdmin checks the configured admin role, falling back to the Administrator permission.
func (h *Handler) isAdmin(i *discordgo.Interaction) bool {
	if i.Member == nil {
		return false
	}

	if i.Member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}

	if h.config == nil || h.config.AdminRoleID == "" {
		return false
	}

	for _, role := range i.Member.Roles {
		if role == h.config.AdminRoleID {
			return true
		}
	}

	return false
}

func (h *Handler) requireAdmin(s InteractionSession, i *discordgo.Interaction) bool {
	if h.isAdmin(i) {
		return true
	}

	h.respondEphemeral(s, i, rendered{Content: "⛔ Acesso negado. Este comando é apenas para administradores."})
	return false
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func teamFromOptions(opts map[string]*discordgo.ApplicationCommandInteractionDataOption) (uint, bool) {
	opt, ok := opts[optTeam]
	if !ok {
		return 0, false
	}

	team := opt.IntValue()
	if team <= 0 {
		return 0, false
	}

	return uint(team), true
}

func (h *Handler) setApprover(ctx context.Context, s InteractionSession, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) {
	if !h.requireAdmin(s, i) {
		return
	}

	opts := optionMap(data.Options)

	team, ok := teamFromOptions(opts)
	userOpt, hasUser := opts[optUser]
	if !ok || !hasUser {
		h.respondEphemeral(s, i, rendered{Content: "❌ Informe a equipe e o responsável."})
		return
	}

	approver := userOpt.UserValue(nil)
	actor := interactionUser(i)

	err := h.approvers.Assign(ctx, actor.ID, team, approver.ID)
	switch {
	case errors.Is(err, service.ErrUserInput):
		h.respondEphemeral(s, i, rendered{Content: "❌ Dados inválidos: informe a equipe e o responsável."})
	case err != nil:
		h.logger.WithError(err).WithField("team_id", team).Error("Failed to assign approver")
		h.respondEphemeral(s, i, rendered{Content: "❌ Erro ao salvar o responsável. Tente novamente."})
	default:
		h.respondEphemeral(s, i, rendered{Content: fmt.Sprintf("✅ <@%s> agora é o responsável pela equipe %d.", approver.ID, team)})
	}
}

func (h *Handler) removeApprover(ctx context.Context, s InteractionSession, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) {
	if !h.requireAdmin(s, i) {
		return
	}

	team, ok := teamFromOptions(optionMap(data.Options))
	if !ok {
		h.respondEphemeral(s, i, rendered{Content: "❌ Informe a equipe."})
		return
	}

	removed, err := h.approvers.Unassign(ctx, interactionUser(i).ID, team)
	switch {
	case err != nil:
		h.logger.WithError(err).WithField("team_id", team).Error("Failed to remove approver")
		h.respondEphemeral(s, i, rendered{Content: "❌ Erro ao remover o responsável. Tente novamente."})
	case !removed:
		h.respondEphemeral(s, i, rendered{Content: fmt.Sprintf("A equipe %d não tinha responsável cadastrado.", team)})
	default:
		h.respondEphemeral(s, i, rendered{Content: fmt.Sprintf("🗑️ Responsável da equipe %d removido.", team)})
	}
}

func (h *Handler) listApprovers(ctx context.Context, s InteractionSession, i *discordgo.Interaction) {
	if !h.requireAdmin(s, i) {
		return
	}

	list, err := h.approvers.List(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list approvers")
		h.respondEphemeral(s, i, rendered{Content: "❌ Erro ao buscar os responsáveis."})
		return
	}

	if len(list) == 0 {
		h.respondEphemeral(s, i, rendered{Content: "Nenhum responsável cadastrado."})
		return
	}

	var b strings.Builder
	b.WriteString("**Responsáveis por equipe**\n")
	for _, a := range list {
		fmt.Fprintf(&b, "• Equipe %d: <@%s>\n", a.TeamID, a.ApproverID)
	}

	h.respondEphemeral(s, i, rendered{Content: clip(strings.TrimRight(b.String(), "\n"), maxContentLength)})
}

package handler

import (
	"context"
	"fmt"

	"hr-ops-bot/internal/workflow"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

const (
	cmdOvertime       = "horas-extras"
	cmdMyRequests     = "minhas-solicitacoes"
	cmdSetApprover    = "definir-responsavel"
	cmdRemoveApprover = "remover-responsavel"
	cmdListApprovers  = "listar-responsaveis"

	optTeam = "equipe"
	optUser = "usuario"

	myRequestsLimit = 10
)

var minTeamID = 1.0

var teamOption = &discordgo.ApplicationCommandOption{
	Type:        discordgo.ApplicationCommandOptionInteger,
	Name:        optTeam,
	Description: "ID da equipe no portal",
	Required:    true,
	MinValue:    &minTeamID,
}

// Commands lists the slash commands registered by the bot.
var Commands = []*discordgo.ApplicationCommand{
	{
		Name:        cmdOvertime,
		Description: "Solicitar horas extras dos últimos dias",
	},
	{
		Name:        cmdMyRequests,
		Description: "Ver suas últimas solicitações de horas extras",
	},
	{
		Name:        cmdSetApprover,
		Description: "Definir o responsável pela aprovação de uma equipe (admin)",
		Options: []*discordgo.ApplicationCommandOption{
			teamOption,
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        optUser,
				Description: "Responsável pela aprovação",
				Required:    true,
			},
		},
	},
	{
		Name:        cmdRemoveApprover,
		Description: "Remover o responsável de uma equipe (admin)",
		Options:     []*discordgo.ApplicationCommandOption{teamOption},
	},
	{
		Name:        cmdListApprovers,
		Description: "Listar os responsáveis cadastrados (admin)",
	},
}

// CommandRegistrar is the part of *discordgo.Session used to publish commands.
type CommandRegistrar interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// RegisterCommands replaces the application commands. An empty guildID registers
// them globally.
func RegisterCommands(s CommandRegistrar, appID, guildID string) error {
	registered, err := s.ApplicationCommandBulkOverwrite(appID, guildID, Commands)
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"guild_id": guildID,
		"commands": len(registered),
	}).Info("Slash commands registered")

	return nil
}

func (h *Handler) handleCommand(ctx context.Context, s InteractionSession, i *discordgo.Interaction) {
	data := i.ApplicationCommandData()
	user := interactionUser(i)

	h.logger.Infof("[%s] /%s", user.Username, data.Name)

	switch data.Name {
	case cmdOvertime:
		h.startOvertime(ctx, s, i)
	case cmdMyRequests:
		h.showMyRequests(ctx, s, i)
	case cmdSetApprover:
		h.setApprover(ctx, s, i, data)
	case cmdRemoveApprover:
		h.removeApprover(ctx, s, i, data)
	case cmdListApprovers:
		h.listApprovers(ctx, s, i)
	default:
		h.respondEphemeral(s, i, rendered{Content: "Comando desconhecido."})
	}
}

func (h *Handler) startOvertime(ctx context.Context, s InteractionSession, i *discordgo.Interaction) {
	user := interactionUser(i)

	if h.limiter != nil && !h.limiter.Allow(user.ID) {
		h.respondEphemeral(s, i, render(workflow.Notice{Code: workflow.RateLimited}, ""))
		return
	}

	sessionID, views := h.overtime.Start(ctx, user.ID)
	if len(views) == 0 {
		h.respondEphemeral(s, i, render(workflow.Notice{Code: workflow.InternalError}, ""))
		return
	}

	h.respondEphemeral(s, i, render(views[0], sessionID))
}

func (h *Handler) showMyRequests(ctx context.Context, s InteractionSession, i *discordgo.Interaction) {
	user := interactionUser(i)

	requests, err := h.overtime.ListRequests(ctx, user.ID, myRequestsLimit)
	if err != nil {
		h.logger.WithError(err).WithField("actor_id", user.ID).Error("Failed to list requests")
		h.respondEphemeral(s, i, render(workflow.Notice{Code: workflow.StoreUnavailable}, ""))
		return
	}

	h.respondEphemeral(s, i, renderRequestList(requests))
}

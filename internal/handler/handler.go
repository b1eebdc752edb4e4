package handler

import (
	"context"
	"time"

	"hr-ops-bot/internal/config"
	"hr-ops-bot/internal/models"
	"hr-ops-bot/internal/workflow"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

const interactionTimeout = 60 * time.Second

// OvertimeWorkflow is the overtime service as seen by the Discord layer.
type OvertimeWorkflow interface {
	Start(ctx context.Context, submitterID string) (string, []workflow.View)
	HandleSessionEvent(ctx context.Context, sessionID, actorID string, ev workflow.Event) []workflow.View
	HandleRecordEvent(ctx context.Context, requestID uint, ev workflow.Event) []workflow.View
	ListRequests(ctx context.Context, submitterID string, limit int) ([]*models.OvertimeRequest, error)
}

type ApproverAdmin interface {
	Assign(ctx context.Context, actorID string, teamID uint, approverID string) error
	Unassign(ctx context.Context, actorID string, teamID uint) (bool, error)
	List(ctx context.Context) ([]models.TeamApprover, error)
}

// InteractionSession is the part of *discordgo.Session used to answer interactions.
type InteractionSession interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Handler struct {
	overtime  OvertimeWorkflow
	approvers ApproverAdmin
	limiter   *UserRateLimiter
	config    *config.BotConfig
	now       func() time.Time
	logger    *logrus.Logger
}

func NewHandler(
	overtime OvertimeWorkflow,
	approvers ApproverAdmin,
	limiter *UserRateLimiter,
	cfg *config.BotConfig,
) *Handler {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.GetLevel())

	return &Handler{
		overtime:  overtime,
		approvers: approvers,
		limiter:   limiter,
		config:    cfg,
		now:       time.Now,
		logger:    logger,
	}
}

// OnInteraction is registered with discordgo's AddHandler.
func (h *Handler) OnInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.HandleInteraction(s, i.Interaction)
}

func (h *Handler) HandleInteraction(s InteractionSession, i *discordgo.Interaction) {
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		h.handleCommand(ctx, s, i)
	case discordgo.InteractionMessageComponent:
		h.handleComponent(ctx, s, i)
	case discordgo.InteractionModalSubmit:
		h.handleModalSubmit(ctx, s, i)
	}
}

// interactionUser returns the invoking user both in guilds and in direct messages.
func interactionUser(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	if i.User != nil {
		return i.User
	}
	return &discordgo.User{}
}

func displayName(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.Nick != "" {
		return i.Member.Nick
	}

	user := interactionUser(i)
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

func (h *Handler) respondEphemeral(s InteractionSession, i *discordgo.Interaction, msg rendered) {
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    msg.Content,
			Components: msg.Components,
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		h.logger.WithError(err).WithField("interaction_id", i.ID).Error("Failed to respond to interaction")
	}
}

func (h *Handler) followupEphemeral(s InteractionSession, i *discordgo.Interaction, msg rendered) {
	_, err := s.FollowupMessageCreate(i, false, &discordgo.WebhookParams{
		Content:    msg.Content,
		Components: msg.Components,
		Flags:      discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		h.logger.WithError(err).WithField("interaction_id", i.ID).Error("Failed to send follow-up message")
	}
}

func (h *Handler) editOriginal(s InteractionSession, i *discordgo.Interaction, msg rendered) {
	components := msg.Components
	if components == nil {
		components = []discordgo.MessageComponent{}
	}

	_, err := s.InteractionResponseEdit(i, &discordgo.WebhookEdit{
		Content:    &msg.Content,
		Components: &components,
	})
	if err != nil {
		h.logger.WithError(err).WithField("interaction_id", i.ID).Error("Failed to edit interaction response")
	}
}

package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"hr-ops-bot/internal/service"
	"hr-ops-bot/internal/workflow"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// DMSession is the part of *discordgo.Session used to send direct messages.
type DMSession interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier delivers workflow views as Discord direct messages.
type DiscordNotifier struct {
	session DMSession
	logger  *logrus.Logger
}

func NewDiscordNotifier(session DMSession) *DiscordNotifier {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.GetLevel())

	return &DiscordNotifier{
		session: session,
		logger:  logger,
	}
}

func (n *DiscordNotifier) Deliver(ctx context.Context, recipientID string, view workflow.View, doc *service.Attachment) error {
	channel, err := n.session.UserChannelCreate(recipientID, discordgo.WithContext(ctx))
	if err != nil {
		return n.deliveryError(recipientID, err)
	}

	msg := render(view, "")
	send := &discordgo.MessageSend{
		Content:    msg.Content,
		Components: msg.Components,
	}

	if doc != nil {
		send.Files = []*discordgo.File{{
			Name:        doc.Name,
			ContentType: "application/pdf",
			Reader:      bytes.NewReader(doc.Data),
		}}
	}

	if _, err := n.session.ChannelMessageSendComplex(channel.ID, send, discordgo.WithContext(ctx)); err != nil {
		return n.deliveryError(recipientID, err)
	}

	n.logger.WithFields(logrus.Fields{
		"recipient_id": recipientID,
		"view":         fmt.Sprintf("%T", view),
		"attachment":   doc != nil,
	}).Info("Direct message delivered")

	return nil
}

func (n *DiscordNotifier) deliveryError(recipientID string, err error) error {
	if isForbidden(err) {
		n.logger.WithError(err).WithField("recipient_id", recipientID).Warn("Recipient does not accept direct messages")
		return fmt.Errorf("%w: %v", service.ErrDeliveryForbidden, err)
	}

	n.logger.WithError(err).WithField("recipient_id", recipientID).Error("Failed to deliver direct message")
	return fmt.Errorf("deliver direct message: %w", err)
}

func isForbidden(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}

	if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeCannotSendMessagesToThisUser {
		return true
	}

	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden
}

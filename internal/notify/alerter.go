package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

type TextSender interface {
	SendText(chatID int64, text string) error
}

// OperatorAlerter reports failures that happened after a decision was stored. It
// always logs and also posts to the ops Telegram chat when one is configured.
type OperatorAlerter struct {
	sender TextSender
	chatID int64
	logger *logrus.Logger
}

func NewOperatorAlerter(sender TextSender, chatID int64) *OperatorAlerter {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.GetLevel())

	return &OperatorAlerter{
		sender: sender,
		chatID: chatID,
		logger: logger,
	}
}

func (a *OperatorAlerter) Alert(ctx context.Context, text string) {
	a.logger.WithField("alert", text).Warn("Operator alert")

	if a.sender == nil || a.chatID == 0 {
		return
	}

	if err := a.sender.SendText(a.chatID, "⚠️ "+text); err != nil {
		a.logger.WithError(err).WithField("chat_id", a.chatID).Error("Failed to post operator alert")
	}
}

package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"hr-ops-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func approvedForm() models.OvertimeForm {
	return models.OvertimeForm{
		Employee:     models.EmployeeProfile{Name: "Ana Souza", Email: "ana@example.com"},
		Days:         []models.SelectedDay{{Date: "2026-10-12", OvertimeMinutes: 120}},
		Compensation: models.CompensationBank,
	}
}

func TestMailerSendApproved(t *testing.T) {
	m := NewMailer(MailConfig{Host: "smtp.example.com", Port: 465, User: "bot@example.com", Recipient: "rh@example.com", SSL: true})

	var sent *gomail.Message
	m.send = func(msg *gomail.Message) error {
		sent = msg
		return nil
	}

	require.NoError(t, m.SendApproved(context.Background(), approvedForm(), []byte("%PDF-1.4")))
	require.NotNil(t, sent)
	assert.Equal(t, []string{"rh@example.com", "ana@example.com"}, sent.GetHeader("To"))
	assert.Equal(t, []string{"bot@example.com"}, sent.GetHeader("From"))
	assert.Equal(t, []string{"Solicitação de Horas Extras (Banco de Horas) - Ana Souza"}, sent.GetHeader("Subject"))

	var raw bytes.Buffer
	_, err := sent.WriteTo(&raw)
	require.NoError(t, err)
	assert.True(t, strings.Contains(raw.String(), "Horas_Extras_Ana_Souza.pdf"))
}

func TestMailerSkipsDuplicateRecipient(t *testing.T) {
	m := NewMailer(MailConfig{Host: "smtp.example.com", User: "bot@example.com", Recipient: "ana@example.com"})

	var to []string
	m.send = func(msg *gomail.Message) error {
		to = msg.GetHeader("To")
		return nil
	}

	require.NoError(t, m.SendApproved(context.Background(), approvedForm(), nil))
	assert.Equal(t, []string{"ana@example.com"}, to)
}

func TestMailerErrors(t *testing.T) {
	err := NewMailer(MailConfig{}).SendApproved(context.Background(), approvedForm(), nil)
	assert.ErrorIs(t, err, ErrMailNotConfigured)

	m := NewMailer(MailConfig{Host: "smtp.example.com", User: "bot@example.com", Recipient: "rh@example.com"})
	boom := errors.New("535 authentication failed")
	m.send = func(*gomail.Message) error { return boom }
	assert.ErrorIs(t, m.SendApproved(context.Background(), approvedForm(), nil), boom)
}

type sendTextFunc func(chatID int64, text string) error

func (f sendTextFunc) SendText(chatID int64, text string) error { return f(chatID, text) }

func TestOperatorAlerter(t *testing.T) {
	var chats []int64
	var texts []string
	sender := sendTextFunc(func(chatID int64, text string) error {
		chats = append(chats, chatID)
		texts = append(texts, text)
		return nil
	})

	NewOperatorAlerter(sender, 42).Alert(context.Background(), "Solicitação #7 sem aviso")
	assert.Equal(t, []int64{42}, chats)
	assert.Contains(t, texts[0], "Solicitação #7 sem aviso")

	NewOperatorAlerter(sender, 0).Alert(context.Background(), "ignored")
	NewOperatorAlerter(nil, 42).Alert(context.Background(), "ignored")
	assert.Len(t, chats, 1)

	failing := sendTextFunc(func(int64, string) error { return errors.New("bot was blocked") })
	assert.NotPanics(t, func() { NewOperatorAlerter(failing, 42).Alert(context.Background(), "x") })
}

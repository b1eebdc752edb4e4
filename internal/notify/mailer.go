package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"hr-ops-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

var ErrMailNotConfigured = errors.New("smtp is not configured")

type MailConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	Recipient string
	SSL       bool
}

// Mailer emails approved requests to HR with the signed document attached.
type Mailer struct {
	cfg    MailConfig
	send   func(*gomail.Message) error
	logger *logrus.Logger
}

func NewMailer(cfg MailConfig) *Mailer {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.GetLevel())

	m := &Mailer{cfg: cfg, logger: logger}
	m.send = m.dialAndSend
	return m
}

func (m *Mailer) Configured() bool {
	return m.cfg.Host != "" && m.cfg.User != "" && m.cfg.Recipient != ""
}

func (m *Mailer) dialAndSend(msg *gomail.Message) error {
	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Password)
	d.SSL = m.cfg.SSL
	return d.DialAndSend(msg)
}

// SendApproved sends the document to the HR mailbox and, when the directory knows
// it, to the submitter.
func (m *Mailer) SendApproved(ctx context.Context, form models.OvertimeForm, pdf []byte) error {
	if !m.Configured() {
		return ErrMailNotConfigured
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	msg := m.message(form, pdf)
	if err := m.send(msg); err != nil {
		return fmt.Errorf("send approval email: %w", err)
	}

	m.logger.WithFields(logrus.Fields{
		"employee":   form.Employee.Name,
		"recipients": strings.Join(msg.GetHeader("To"), ","),
	}).Info("Approval email sent")

	return nil
}

func (m *Mailer) message(form models.OvertimeForm, pdf []byte) *gomail.Message {
	recipients := []string{m.cfg.Recipient}
	if email := strings.TrimSpace(form.Employee.Email); email != "" && !strings.EqualFold(email, m.cfg.Recipient) {
		recipients = append(recipients, email)
	}

	name := form.Employee.Name
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.User)
	msg.SetHeader("To", recipients...)
	msg.SetHeader("Subject", fmt.Sprintf("Solicitação de Horas Extras (%s) - %s", form.Compensation.Label(), name))
	msg.SetBody("text/plain", fmt.Sprintf(
		"Olá,\n\nSegue em anexo o formulário de solicitação de horas extras de %s, aprovado digitalmente.\n"+
			"Dias: %s\nTotal: %s\n\nAtenciosamente,\nBot de RH",
		name, strings.Join(form.Dates(), ", "), models.FormatMinutes(form.TotalOvertimeMinutes())))

	fileName := fmt.Sprintf("Horas_Extras_%s.pdf", strings.Join(strings.Fields(name), "_"))
	msg.Attach(fileName, gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(pdf)
		return err
	}))

	return msg
}

package mail

import (
	"training-enrollment-platform/internal/config"
	"training-enrollment-platform/internal/domain/ports/adapter"

	"gopkg.in/gomail.v2"
)

var _ adapter.Mailer = (*SMTPMailer)(nil)

// SMTPMailer delivers confirmation mail over plain SMTP. Callers treat every
// send as best-effort.
type SMTPMailer struct {
	cfg config.MailConfig
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	d := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUser, m.cfg.SMTPPass)
	return d.DialAndSend(msg)
}

// Package email sends transactional mail over SMTP.
package email

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog/log"
)

type Service struct {
	Host     string
	Port     string
	Username string
	Password string
	FromMail string
	FromName string
	// Enabled false logs instead of sending, for local development.
	Enabled bool
}

// Send delivers one email to one recipient.
func (s *Service) Send(to, subject, body string) error {
	if !s.Enabled {
		log.Warn().Str("to", to).Str("subject", subject).Msg("email disabled, not sent")
		return nil
	}

	from := fmt.Sprintf("%s <%s>", s.FromName, s.FromMail)
	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		from, to, subject, body,
	))

	auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
	addr := fmt.Sprintf("%s:%s", s.Host, s.Port)
	if err := smtp.SendMail(addr, auth, s.FromMail, []string{to}, msg); err != nil {
		return fmt.Errorf("send to %s: %w", to, err)
	}
	return nil
}

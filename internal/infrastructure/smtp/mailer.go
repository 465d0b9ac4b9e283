// Package smtp implements the email delivery channel.
package smtp

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/go-verify-api/internal/config"
)

// Mailer transmits verification codes over SMTP. It satisfies
// delivery.Channel; the gateway owns the timeout, since net/smtp's
// SendMail cannot be cancelled mid-flight.
type Mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

func (m *Mailer) Transmit(_ context.Context, identity, code string) error {
	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Your verification code\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n", m.from, identity)
	body := fmt.Sprintf(`<html>
	<body style="font-family: Arial, sans-serif;">
		<p>Your one-time verification code is:</p>
		<h1 style="letter-spacing: 4px;">%s</h1>
		<p>It expires shortly. Do not share this code with anyone.</p>
	</body>
</html>`, code)

	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	return smtp.SendMail(addr, auth, m.from, []string{identity}, []byte(headers+body))
}

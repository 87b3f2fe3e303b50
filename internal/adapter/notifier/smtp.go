package notifier

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/custos-io/custos/internal/config"
	"github.com/custos-io/custos/internal/domain"
)

// SMTPNotifier delivers one message per call over a fresh SMTP session.
type SMTPNotifier struct {
	config *config.EmailConfig

	// sendMail is swapped out in tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTP(cfg *config.EmailConfig) *SMTPNotifier {
	return &SMTPNotifier{
		config:   cfg,
		sendMail: smtp.SendMail,
	}
}

func (n *SMTPNotifier) Send(ctx context.Context, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", n.config.SMTPHost, n.config.SMTPPort)

	var auth smtp.Auth
	if n.config.Username != "" {
		auth = smtp.PlainAuth("", n.config.Username, n.config.Password, n.config.SMTPHost)
	}

	msg := buildMessage(n.config.From, n.config.To, subject, body)

	if err := n.sendMail(addr, auth, n.config.From, []string{n.config.To}, msg); err != nil {
		return &domain.TransportError{Channel: n.Channel(), Err: err}
	}

	return nil
}

func (n *SMTPNotifier) Channel() string {
	return "email"
}

func buildMessage(from, to, subject, body string) []byte {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s\r\n",
		from, to, subject, body,
	)
	return []byte(msg)
}

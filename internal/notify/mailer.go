// Package notify delivers outgoing email. Delivery failures are reported
// to callers but never fail the data mutation that triggered them.
package notify

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
	"time"

	"github.com/masonr9/CSC400Project-sub000/internal/config"
)

// Mailer sends a single message to a recipient.
type Mailer interface {
	Send(to, subject, body string) error
}

// NewMailer returns an SMTP mailer when a host is configured, otherwise a
// log-only mailer so the rest of the system behaves identically in
// development.
func NewMailer(cfg config.SMTP) Mailer {
	if cfg.Host == "" {
		return &LogMailer{}
	}
	return &SMTPMailer{cfg: cfg}
}

// SMTPMailer delivers mail through a configured SMTP relay.
type SMTPMailer struct {
	cfg config.SMTP
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := buildMessage(m.cfg.From, to, subject, body)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

// LogMailer writes messages to the process log instead of sending them.
type LogMailer struct{}

func (m *LogMailer) Send(to, subject, body string) error {
	log.Printf("[MAIL] to=%s subject=%q\n%s", to, subject, body)
	return nil
}

// buildMessage assembles an RFC 5322 message with CRLF line endings.
func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

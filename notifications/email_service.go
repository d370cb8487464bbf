package notifications

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gopkg.in/gomail.v2"
)

// EmailSender delivers one HTML email.
type EmailSender interface {
	Send(ctx context.Context, toEmail, toName, subject, htmlContent string) error
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPMailer struct {
	dialer      dialer
	SenderEmail string
	SenderName  string
}

// NewSMTPMailer returns nil when SMTP is not configured so callers can skip
// email delivery.
func NewSMTPMailer(host string, port int, username, password, senderEmail, senderName string) *SMTPMailer {
	if host == "" || senderEmail == "" {
		log.Println("⚠️ Email service not configured. Missing SMTP host or sender email.")
		return nil
	}

	log.Printf("✅ Email service initialized (smtp %s:%d, sender %s)", host, port, senderEmail)
	return &SMTPMailer{
		dialer:      gomail.NewDialer(host, port, username, password),
		SenderEmail: senderEmail,
		SenderName:  senderName,
	}
}

func (s *SMTPMailer) Send(ctx context.Context, toEmail, toName, subject, htmlContent string) error {
	if toEmail == "" || !strings.Contains(toEmail, "@") {
		return fmt.Errorf("invalid recipient email: %q", toEmail)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	recipientName := toName
	if recipientName == "" {
		recipientName = toEmail[:strings.Index(toEmail, "@")]
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.SenderEmail, s.SenderName)
	m.SetAddressHeader("To", toEmail, recipientName)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlContent)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email via smtp: %w", err)
	}
	return nil
}

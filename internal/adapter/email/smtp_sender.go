package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/Abdurahmanit/GroupProject/property-portal/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/platform/logger"
)

type EmailSender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is one outgoing mail. ReplyTo is optional.
type Message struct {
	To       []string
	ReplyTo  string
	Subject  string
	BodyHTML string
	BodyText string
}

type smtpSender struct {
	cfg  config.SMTPConfig
	log  logger.Logger
	send func(m ...*gomail.Message) error
}

func NewSMTPSender(cfg config.SMTPConfig, log logger.Logger) (EmailSender, error) {
	if cfg.Host == "" || cfg.Port == 0 || cfg.SenderEmail == "" {
		return nil, fmt.Errorf("SMTP host, port, and sender email must be configured")
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)

	serverName := cfg.ServerName
	if serverName == "" {
		serverName = cfg.Host
	}
	switch strings.ToLower(cfg.Encryption) {
	case "ssl":
		dialer.SSL = true
		dialer.TLSConfig = &tls.Config{ServerName: serverName, MinVersion: tls.VersionTLS12}
	case "tls", "starttls":
		dialer.TLSConfig = &tls.Config{ServerName: serverName, MinVersion: tls.VersionTLS12}
	}

	return &smtpSender{cfg: cfg, log: log, send: dialer.DialAndSend}, nil
}

func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	m, err := buildMessage(s.cfg.SenderEmail, msg)
	if err != nil {
		return err
	}

	if s.cfg.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.WriteTimeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		done <- s.send(m)
	}()

	select {
	case <-ctx.Done():
		s.log.Warnf("Email sending to %v (subject: %s) cancelled or timed out by context: %v", msg.To, msg.Subject, ctx.Err())
		return fmt.Errorf("email sending cancelled or timed out: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			s.log.Errorf("Failed to send email to %v, subject '%s': %v", msg.To, msg.Subject, err)
			return fmt.Errorf("failed to send email: %w", err)
		}
	}

	s.log.Infof("Email sent successfully to %v, subject: %s", msg.To, msg.Subject)
	return nil
}

func buildMessage(from string, msg Message) (*gomail.Message, error) {
	if len(msg.To) == 0 {
		return nil, fmt.Errorf("no recipients provided for email")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}

	switch {
	case msg.BodyHTML != "":
		m.SetBody("text/html", msg.BodyHTML)
		if msg.BodyText != "" {
			m.AddAlternative("text/plain", msg.BodyText)
		}
	case msg.BodyText != "":
		m.SetBody("text/plain", msg.BodyText)
	default:
		return nil, fmt.Errorf("email body (HTML or Text) must be provided")
	}
	return m, nil
}

// logSender stands in when SMTP is not configured.
type logSender struct {
	log logger.Logger
}

func NewLogSender(log logger.Logger) EmailSender {
	return &logSender{log: log}
}

func (s *logSender) Send(_ context.Context, msg Message) error {
	if _, err := buildMessage("portal@localhost", msg); err != nil {
		return err
	}
	s.log.Infow("SMTP disabled, email not delivered", "to", msg.To, "subject", msg.Subject)
	return nil
}

package email

import (
	"crypto/tls"
	"fmt"
	"html"
	"net/smtp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// EmailService defines the interface for email operations
type EmailService interface {
	SendNotificationEmail(toEmail, toName, subject, content, link string) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
	BaseURL   string // Base URL for links in messages
}

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	return &EmailServiceImpl{
		config: config,
		logger: logger,
	}
}

func (s *EmailServiceImpl) configured() bool {
	return s.config.Host != "" && s.config.Username != "" && s.config.Password != ""
}

// SendNotificationEmail sends a parent notification. Without SMTP credentials the message is only logged.
func (s *EmailServiceImpl) SendNotificationEmail(toEmail, toName, subject, content, link string) error {
	if link != "" && !strings.HasPrefix(link, "http") {
		link = strings.TrimRight(s.config.BaseURL, "/") + "/" + strings.TrimLeft(link, "/")
	}

	if !s.configured() {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("subject", subject).
			Str("link", link).
			Msg("SMTP credentials not configured - notification email not sent")
		return nil
	}

	return s.sendHTMLEmail(toEmail, "School Health - "+subject, renderNotification(toName, subject, content, link))
}

func renderNotification(toName, subject, content, link string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	fmt.Fprintf(&b, `<h2 style="color: #333;">%s</h2>`, html.EscapeString(subject))
	fmt.Fprintf(&b, `<p>Hello %s,</p>`, html.EscapeString(toName))
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(&b, `<p>%s</p>`, html.EscapeString(line))
	}
	if link != "" {
		fmt.Fprintf(&b, `<div style="text-align: center; margin: 30px 0;"><a href="%s" style="background-color: #2e9e6b; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">View details</a></div>`,
			html.EscapeString(link))
	}
	b.WriteString(`<p>Best regards,<br>The School Health Team</p></div></body></html>`)
	return b.String()
}

func (s *EmailServiceImpl) buildMessage(toEmail, subject, htmlBody string) string {
	headers := map[string]string{
		"From":         fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail),
		"To":           toEmail,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}

	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\r\n", k, headers[k])
	}
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return b.String()
}

// sendHTMLEmail sends an HTML email
func (s *EmailServiceImpl) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	message := []byte(s.buildMessage(toEmail, subject, htmlBody))
	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	if !s.config.UseTLS {
		if err := smtp.SendMail(serverAddress, auth, s.config.FromEmail, []string{toEmail}, message); err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		s.logger.Error().Err(err).Msg("SMTP authentication failed")
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return nil
}

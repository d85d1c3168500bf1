package email

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"html"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// EmailService defines the interface for email operations
type EmailService interface {
	SendVerificationEmail(toEmail, toName, token string) error
	SendWelcomeEmail(toEmail, toName string) error
	SendPasswordResetEmail(toEmail, toName, token string) error
	SendApplicationStatusEmail(toEmail, toName, jobTitle, companyName, status string) error
	SendInterviewScheduledEmail(toEmail, toName, jobTitle, companyName, when, mode string) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	BaseURL   string // Used to build links in message bodies
}

// Dialer sends composed messages. *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	config SMTPConfig
	dialer Dialer
	logger zerolog.Logger
}

// NewEmailService creates a new EmailService. With no SMTP host configured
// messages are logged instead of sent.
func NewEmailService(config SMTPConfig, logger zerolog.Logger) *EmailServiceImpl {
	var d Dialer
	if config.Host != "" {
		d = gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	}
	return NewEmailServiceWithDialer(config, d, logger)
}

// NewEmailServiceWithDialer creates an EmailService that sends through d.
func NewEmailServiceWithDialer(config SMTPConfig, d Dialer, logger zerolog.Logger) *EmailServiceImpl {
	return &EmailServiceImpl{config: config, dialer: d, logger: logger}
}

// VerificationURL returns the link a user follows to verify their address
func (s *EmailServiceImpl) VerificationURL(token string) string {
	return fmt.Sprintf("%s/api/v1/auth/verify-email?token=%s", strings.TrimRight(s.config.BaseURL, "/"), token)
}

// SendVerificationEmail sends an email with a verification link/token
func (s *EmailServiceImpl) SendVerificationEmail(toEmail, toName, token string) error {
	link := s.VerificationURL(token)
	body := layout(toName, fmt.Sprintf(`
				<p>Thank you for registering with PlacementHub. Please verify your email address to activate your account:</p>
				<div style="text-align: center; margin: 30px 0;">
					<a href="%s" style="background-color: #2563eb; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">Verify Email</a>
				</div>
				<p>Alternatively, you can use this verification code: <strong>%s</strong></p>
				<p>This link expires in 24 hours. If you did not register, please ignore this email.</p>`,
		html.EscapeString(link), html.EscapeString(token)))

	return s.send(toEmail, "Verify your email address - PlacementHub", body, map[string]string{"verificationURL": link})
}

// PasswordResetURL returns the link a user follows to choose a new password
func (s *EmailServiceImpl) PasswordResetURL(token string) string {
	return fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(s.config.BaseURL, "/"), token)
}

// SendPasswordResetEmail sends a single-use password reset link
func (s *EmailServiceImpl) SendPasswordResetEmail(toEmail, toName, token string) error {
	link := s.PasswordResetURL(token)
	body := layout(toName, fmt.Sprintf(`
				<p>We received a request to reset your PlacementHub password.</p>
				<div style="text-align: center; margin: 30px 0;">
					<a href="%s" style="background-color: #2563eb; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">Reset Password</a>
				</div>
				<p>Reset code: <strong>%s</strong></p>
				<p>This link expires in 1 hour. If you did not ask for a reset, you can ignore this email.</p>`,
		html.EscapeString(link), html.EscapeString(token)))

	return s.send(toEmail, "Reset your password - PlacementHub", body, map[string]string{"resetURL": link})
}

// SendWelcomeEmail sends a welcome email to a newly verified user
func (s *EmailServiceImpl) SendWelcomeEmail(toEmail, toName string) error {
	body := layout(toName, `
				<p>Your email has been verified and your account is now active. You can now log in to PlacementHub.</p>`)
	return s.send(toEmail, "Welcome to PlacementHub", body, nil)
}

// SendApplicationStatusEmail tells a student their application moved
func (s *EmailServiceImpl) SendApplicationStatusEmail(toEmail, toName, jobTitle, companyName, status string) error {
	body := layout(toName, fmt.Sprintf(`
				<p>Your application for <strong>%s</strong> at <strong>%s</strong> is now <strong>%s</strong>.</p>
				<p>Log in to PlacementHub to see the details.</p>`,
		html.EscapeString(jobTitle), html.EscapeString(companyName), html.EscapeString(status)))

	subject := fmt.Sprintf("Application update: %s at %s", jobTitle, companyName)
	return s.send(toEmail, subject, body, map[string]string{"status": status})
}

// SendInterviewScheduledEmail tells a student an interview was booked
func (s *EmailServiceImpl) SendInterviewScheduledEmail(toEmail, toName, jobTitle, companyName, when, mode string) error {
	body := layout(toName, fmt.Sprintf(`
				<p>An interview for <strong>%s</strong> at <strong>%s</strong> has been scheduled.</p>
				<p>When: <strong>%s</strong><br>Mode: <strong>%s</strong></p>`,
		html.EscapeString(jobTitle), html.EscapeString(companyName), html.EscapeString(when), html.EscapeString(mode)))

	subject := fmt.Sprintf("Interview scheduled: %s at %s", jobTitle, companyName)
	return s.send(toEmail, subject, body, map[string]string{"when": when})
}

func layout(toName, content string) string {
	return fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">PlacementHub</h2>
				<p>Hello %s,</p>%s
				<p>Best regards,<br>The Placement Cell</p>
			</div>
		</body>
		</html>
	`, html.EscapeString(toName), content)
}

func (s *EmailServiceImpl) send(toEmail, subject, body string, fields map[string]string) error {
	if s.dialer == nil {
		ev := s.logger.Warn().Str("toEmail", toEmail).Str("subject", subject)
		for k, v := range fields {
			ev = ev.Str(k, v)
		}
		ev.Msg("SMTP not configured - email not sent")
		return nil
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.FromEmail, s.config.FromName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error().Err(err).Str("toEmail", toEmail).Str("subject", subject).Msg("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.logger.Debug().Str("toEmail", toEmail).Str("subject", subject).Msg("Email sent")
	return nil
}

// GenerateVerificationToken generates a random 64-character hex token
func GenerateVerificationToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

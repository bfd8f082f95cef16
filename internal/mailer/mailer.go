package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/UniFest-2025/event-service/internal/models"
)

// Mailer sends transactional mail. Every send is best-effort: callers log
// failures and move on, a write is never rolled back because SMTP was down.
type Mailer interface {
	SendTicket(ctx context.Context, to, name string, event *models.Event, ticket *models.Ticket) error
	SendOrganizerCredentials(ctx context.Context, to, name, password string) error
	SendResetOutcome(ctx context.Context, to, name string, approved bool, newPassword string) error
	SendOrderDecision(ctx context.Context, to, name, eventName string, approved bool, reason string) error
}

// Config holds the SMTP connection settings
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether the config is complete enough to send
func (c Config) Enabled() bool {
	return c.Host != "" && c.From != ""
}

type smtpMailer struct {
	config Config
	logger *slog.Logger
}

// New creates an SMTP-backed mailer
func New(config Config, logger *slog.Logger) Mailer {
	return &smtpMailer{
		config: config,
		logger: logger,
	}
}

func (m *smtpMailer) send(to, subject, body string) error {
	if !m.config.Enabled() {
		m.logger.Debug("Mailer not configured, dropping message", "to", to, "subject", subject)
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.config.From, to, subject, body)

	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)
	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	if err := smtp.SendMail(addr, auth, m.config.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	m.logger.Info("Email sent", "to", to, "subject", subject)
	return nil
}

func (m *smtpMailer) SendTicket(ctx context.Context, to, name string, event *models.Event, ticket *models.Ticket) error {
	subject := fmt.Sprintf("Your ticket for %s", event.Name)

	var body strings.Builder
	fmt.Fprintf(&body, "Hi %s,\n\n", name)
	fmt.Fprintf(&body, "You are registered for %s.\n", event.Name)
	fmt.Fprintf(&body, "Starts: %s\n", event.StartsAt.Format("Mon, 02 Jan 2006 15:04 MST"))
	fmt.Fprintf(&body, "\nTicket ID: %s\n", ticket.TicketID)
	fmt.Fprintf(&body, "Show this code at the entrance:\n\n%s\n", string(ticket.QRData))
	fmt.Fprintf(&body, "\nSee you there!\n")

	return m.send(to, subject, body.String())
}

func (m *smtpMailer) SendOrganizerCredentials(ctx context.Context, to, name, password string) error {
	subject := "Your organizer account"

	var body strings.Builder
	fmt.Fprintf(&body, "Hi %s,\n\n", name)
	fmt.Fprintf(&body, "An organizer account has been created for you.\n")
	fmt.Fprintf(&body, "Login: %s\nTemporary password: %s\n", to, password)
	fmt.Fprintf(&body, "\nPlease change the password after your first login.\n")

	return m.send(to, subject, body.String())
}

func (m *smtpMailer) SendResetOutcome(ctx context.Context, to, name string, approved bool, newPassword string) error {
	if approved {
		var body strings.Builder
		fmt.Fprintf(&body, "Hi %s,\n\n", name)
		fmt.Fprintf(&body, "Your password reset request was approved.\n")
		fmt.Fprintf(&body, "Temporary password: %s\n", newPassword)
		fmt.Fprintf(&body, "\nPlease change the password after your next login.\n")
		return m.send(to, "Password reset approved", body.String())
	}

	body := fmt.Sprintf("Hi %s,\n\nYour password reset request was rejected. Contact the festival team if you believe this is a mistake.\n", name)
	return m.send(to, "Password reset rejected", body)
}

func (m *smtpMailer) SendOrderDecision(ctx context.Context, to, name, eventName string, approved bool, reason string) error {
	if approved {
		body := fmt.Sprintf("Hi %s,\n\nYour order for %s has been approved. Your ticket follows in a separate email.\n", name, eventName)
		return m.send(to, fmt.Sprintf("Order approved: %s", eventName), body)
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Hi %s,\n\nYour order for %s was rejected.\n", name, eventName)
	if reason != "" {
		fmt.Fprintf(&body, "Reason: %s\n", reason)
	}

	return m.send(to, fmt.Sprintf("Order rejected: %s", eventName), body.String())
}

// NopMailer drops every message, used in tests
type NopMailer struct{}

func (NopMailer) SendTicket(context.Context, string, string, *models.Event, *models.Ticket) error {
	return nil
}
func (NopMailer) SendOrganizerCredentials(context.Context, string, string, string) error { return nil }
func (NopMailer) SendResetOutcome(context.Context, string, string, bool, string) error   { return nil }
func (NopMailer) SendOrderDecision(context.Context, string, string, string, bool, string) error {
	return nil
}

package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/config"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// EmailService defines the interface for sending emails
type EmailService interface {
	SendRunAwaitingApproval(to []string, data RunAwaitingApprovalData) error
	SendPaycheckPaid(to string, data PaycheckPaidData) error
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
	sender    sender
	backoff   func(attempt int) time.Duration
}

// NewEmailService creates a new email service instance. With no SMTP host
// configured, messages are rendered and logged but not sent.
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	s := &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<(attempt-1)) * time.Second
		},
	}
	if cfg.Enabled() {
		s.sender = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return s, nil
}

type RunAwaitingApprovalData struct {
	RunID       string
	PeriodStart string
	PeriodEnd   string
	PreparedBy  string
	Employees   int
	TotalNetPay string
}

// SendRunAwaitingApproval tells approvers a DRAFT run is ready for review.
func (s *emailServiceImpl) SendRunAwaitingApproval(to []string, data RunAwaitingApprovalData) error {
	if len(to) == 0 {
		return nil
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "run_awaiting_approval.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	subject := fmt.Sprintf("Payroll run %s to %s awaits approval", data.PeriodStart, data.PeriodEnd)
	return s.sendHTML(to, subject, body.String())
}

type PaycheckPaidData struct {
	EmployeeName string
	PeriodStart  string
	PeriodEnd    string
	NetPay       string
}

// SendPaycheckPaid tells an employee their paycheck has been paid.
func (s *emailServiceImpl) SendPaycheckPaid(to string, data PaycheckPaidData) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "paycheck_paid.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML([]string{to}, "Your paycheck has been paid", body.String())
}

func (s *emailServiceImpl) sendHTML(to []string, subject, htmlBody string) error {
	// Skip sending if SMTP is not configured
	if s.sender == nil {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.sender.DialAndSend(m)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		if attempt < maxRetries {
			time.Sleep(s.backoff(attempt))
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}

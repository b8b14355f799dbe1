package email

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/jparedesmx/cartera/internal/config"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// Enabled reports whether SMTP is configured
func (s *Sender) Enabled() bool {
	return s.cfg.SMTPHost != ""
}

// SendPaymentReminder notifies a user that a card payment is coming up
func (s *Sender) SendPaymentReminder(to, cardName, dueDate string, minimumDue, noInterestPayment decimal.Decimal) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Upcoming payment for %s", cardName)

	body := fmt.Sprintf(
		"Your payment for card %s is due on %s.\n\n"+
			"Minimum payment: $%s\n"+
			"Payment to avoid interest: $%s\n\n"+
			"Paying only the minimum accrues interest on your pending MSI balance.\n"+
			"\nBest regards,\nCartera",
		cardName, dueDate, minimumDue.StringFixed(2), noInterestPayment.StringFixed(2),
	)
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send reminder to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

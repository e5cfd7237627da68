// Package notify sends solvency alert emails over SMTP.
package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"

	"bilancio/internal/config"
	"bilancio/internal/log"
)

// Sender handles sending alert emails via SMTP
type Sender struct {
	host     string
	port     int
	username string
	password string
	from     string
	logger   *log.Logger
}

// NewSender creates a new email sender from the application config
func NewSender(cfg *config.Config, logger *log.Logger) *Sender {
	return &Sender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		logger:   logger,
	}
}

// Enabled reports whether the sender has an SMTP host configured
func (s *Sender) Enabled() bool {
	return s.host != ""
}

// SendSolvencyAlert sends an email warning that projected need spending
// exceeds the needs allocation in one or more upcoming months.
func (s *Sender) SendSolvencyAlert(to, userID, firstFailingMonth string, failingMonths []string, horizonMonths int) error {
	e := email.NewEmail()
	e.From = s.from
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Budget alert: projected shortfall in %s", firstFailingMonth)

	body := fmt.Sprintf(
		"Hello,\n\n"+
			"The budget forecast for account %s found months where essential spending\n"+
			"is projected to exceed the needs allocation.\n\n"+
			"First failing month: %s\n"+
			"All failing months:  %s\n"+
			"Forecast horizon:    %d months\n\n"+
			"Review your recurring expenses and income configuration.\n",
		userID, firstFailingMonth, strings.Join(failingMonths, ", "), horizonMonths,
	)
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Error("Failed to send solvency alert email", "to", to, "error", err)
		return fmt.Errorf("send solvency alert: %w", err)
	}

	s.logger.Info("Solvency alert email sent", "to", to, "first_failing_month", firstFailingMonth)
	return nil
}

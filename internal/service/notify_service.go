package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"appointments/internal/config"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

const sendGridHost = "https://api.sendgrid.com"

// SendGridDispatcher delivers confirmations through the SendGrid v3 mail API.
type SendGridDispatcher struct {
	APIKey   string
	From     string
	FromName string
	Host     string
	Timeout  time.Duration
	log      *zap.Logger
}

func NewSendGridDispatcher(cfg config.Mail, log *zap.Logger) *SendGridDispatcher {
	return &SendGridDispatcher{
		APIKey:   cfg.SendGridAPIKey,
		From:     cfg.From,
		FromName: cfg.FromName,
		Host:     sendGridHost,
		Timeout:  cfg.Timeout,
		log:      log,
	}
}

func (d *SendGridDispatcher) SendConfirmation(ctx context.Context, recipient, subject, body string) bool {
	status, err := d.send(ctx, recipient, subject, body)
	if err != nil {
		d.log.Warn("notify.sendgrid: failed to send email",
			zap.String("recipient", recipient),
			zap.Int("status", status),
			zap.Error(err))
		return false
	}
	d.log.Info("notify.sendgrid: email sent",
		zap.String("recipient", recipient),
		zap.String("subject", subject),
		zap.Int("status", status))
	return true
}

func (d *SendGridDispatcher) send(ctx context.Context, recipient, subject, body string) (int, error) {
	if d.APIKey == "" || d.From == "" {
		return 0, errors.New("SENDGRID_API_KEY or MAIL_FROM not configured")
	}
	to, err := mail.ParseAddress(recipient)
	if err != nil {
		return 0, fmt.Errorf("invalid recipient %q: %w", recipient, err)
	}

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = defaultMailTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	message := sgmail.NewSingleEmail(
		sgmail.NewEmail(d.FromName, d.From),
		subject,
		sgmail.NewEmail(to.Name, to.Address),
		body,
		"",
	)

	request := sendgrid.GetRequest(d.APIKey, "/v3/mail/send", d.Host)
	request.Method = "POST"
	request.Body = sgmail.GetRequestBody(message)

	response, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		return 0, fmt.Errorf("sendgrid request: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return response.StatusCode, fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return response.StatusCode, nil
}

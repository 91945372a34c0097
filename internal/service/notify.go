package service

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"appointments/internal/config"

	"go.uber.org/zap"
)

const defaultMailTimeout = 10 * time.Second

// Dispatcher delivers one confirmation message per call. A false result means
// the message was not delivered; the reason has already been logged.
type Dispatcher interface {
	SendConfirmation(ctx context.Context, recipient, subject, body string) bool
}

// NewDispatcher picks the mail backend named by cfg.Provider.
func NewDispatcher(cfg config.Mail, log *zap.Logger) Dispatcher {
	switch strings.ToLower(cfg.Provider) {
	case "sendgrid":
		return NewSendGridDispatcher(cfg, log)
	default:
		return NewSMTPDispatcher(cfg, log)
	}
}

// SMTPDispatcher sends plain-text mail over an implicit TLS connection
// (SMTPS, usually port 465), authenticating as the sender.
type SMTPDispatcher struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	Timeout   time.Duration
	TLSConfig *tls.Config
	log       *zap.Logger
}

func NewSMTPDispatcher(cfg config.Mail, log *zap.Logger) *SMTPDispatcher {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &SMTPDispatcher{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     from,
		Timeout:  cfg.Timeout,
		log:      log,
	}
}

func (d *SMTPDispatcher) SendConfirmation(ctx context.Context, recipient, subject, body string) bool {
	start := time.Now()
	if err := d.send(ctx, recipient, subject, body); err != nil {
		d.log.Warn("notify.smtp: failed to send email",
			zap.String("recipient", recipient),
			zap.String("host", d.Host),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return false
	}
	d.log.Info("notify.smtp: email sent",
		zap.String("recipient", recipient),
		zap.String("subject", subject),
		zap.Duration("elapsed", time.Since(start)))
	return true
}

func (d *SMTPDispatcher) send(ctx context.Context, recipient, subject, body string) error {
	if d.Host == "" || d.Username == "" || d.Password == "" {
		return errors.New("smtp relay or credentials not configured")
	}
	to, err := mail.ParseAddress(recipient)
	if err != nil {
		return fmt.Errorf("invalid recipient %q: %w", recipient, err)
	}
	from, err := mail.ParseAddress(d.From)
	if err != nil {
		return fmt.Errorf("invalid sender %q: %w", d.From, err)
	}

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = defaultMailTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tlsConfig := d.TLSConfig
	if tlsConfig == nil {
		tlsConfig = &tls.Config{}
	}
	tlsConfig = tlsConfig.Clone()
	if tlsConfig.ServerName == "" {
		tlsConfig.ServerName = d.Host
	}

	dialer := &tls.Dialer{Config: tlsConfig}
	addr := net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	client, err := smtp.NewClient(conn, d.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if err := client.Auth(smtp.PlainAuth("", d.Username, d.Password, d.Host)); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(from.Address); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	if err := client.Rcpt(to.Address); err != nil {
		return fmt.Errorf("smtp RCPT TO: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(buildMessage(from.String(), to.String(), subject, body, time.Now())); err != nil {
		w.Close()
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finishing message: %w", err)
	}
	return client.Quit()
}

// buildMessage renders a single-part text/plain message with CRLF line endings.
func buildMessage(from, to, subject, body string, now time.Time) []byte {
	var b strings.Builder
	header := func(k, v string) {
		b.WriteString(k + ": " + stripNewlines(v) + "\r\n")
	}
	header("From", from)
	header("To", to)
	header("Subject", mime.QEncoding.Encode("utf-8", stripNewlines(subject)))
	header("Date", now.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="utf-8"`)
	header("Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")

	body = strings.ReplaceAll(body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\r\n")
	}
	return []byte(b.String())
}

func stripNewlines(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}

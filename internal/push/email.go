package push

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"

	"salamah-backend/config"
	"salamah-backend/internal/model"
)

// smtpSender is the seam between the channel and the SMTP client, so tests
// can exercise the channel without a mail server.
type smtpSender interface {
	Send(e *email.Email, addr string, auth smtp.Auth) error
}

type netSMTPSender struct{}

func (netSMTPSender) Send(e *email.Email, addr string, auth smtp.Auth) error {
	return e.Send(addr, auth)
}

// EmailChannel delivers notifications over SMTP. Receivers without an
// email address are skipped with ErrNoContact.
type EmailChannel struct {
	addr   string
	auth   smtp.Auth
	from   string
	sender smtpSender
}

// NewEmailChannel creates the SMTP-backed channel from the mail config.
func NewEmailChannel(cfg *config.MailConfig) (*EmailChannel, error) {
	host, _, err := net.SplitHostPort(cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("invalid mail addr %q: %w", cfg.Addr, err)
	}
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, host)
	}
	return &EmailChannel{
		addr:   cfg.Addr,
		auth:   auth,
		from:   cfg.From,
		sender: netSMTPSender{},
	}, nil
}

func (c *EmailChannel) Name() string { return "email" }

// Send emails the notification to the receiver. A failure to reach the
// SMTP server is reported as ErrChannelDown; a per-receiver rejection is
// an ordinary error.
func (c *EmailChannel) Send(ctx context.Context, rcv Receiver, msg Message) error {
	if rcv.Email == "" {
		return ErrNoContact
	}

	e := email.NewEmail()
	e.From = c.from
	e.To = []string{rcv.Email}
	e.Subject = subjectFor(msg.Category)
	e.HTML = []byte(renderBody(msg))

	if err := c.sender.Send(e, c.addr, c.auth); err != nil {
		if isConnectionError(err) {
			return fmt.Errorf("%w: %v", ErrChannelDown, err)
		}
		return fmt.Errorf("failed to email %s: %w", rcv.Email, err)
	}
	return nil
}

func isConnectionError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	// smtp wraps some dial failures in plain errors.
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "no such host")
}

func subjectFor(category model.Category) string {
	if category == model.CategoryAttendance {
		return "Bus Attendance Update"
	}
	return "Emergency: " + string(category)
}

func renderBody(msg Message) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial; padding:16px;">`)
	if msg.Category == model.CategoryAttendance {
		b.WriteString(`<h2 style="color:#007bff;">Student Attendance Update</h2>`)
	} else {
		b.WriteString(`<h2 style="color:#d9534f;">Emergency Notification</h2>`)
	}
	fmt.Fprintf(&b, "<p>%s</p>", msg.Body)
	if msg.Location != "" {
		fmt.Fprintf(&b, "<p><strong>Location:</strong> %s</p>", msg.Location)
	}
	b.WriteString(`<hr><p style="color:#777; font-size:12px;">Sent automatically by <strong>Salamah System</strong></p>`)
	b.WriteString(`</div>`)
	return b.String()
}

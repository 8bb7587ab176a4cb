package push

import (
	"context"
	"errors"
	"net"
	"net/smtp"
	"testing"

	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salamah-backend/config"
	"salamah-backend/internal/model"
)

type fakeSMTP struct {
	err  error
	sent []*email.Email
	addr string
}

func (f *fakeSMTP) Send(e *email.Email, addr string, _ smtp.Auth) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, e)
	f.addr = addr
	return nil
}

func newTestChannel(t *testing.T, sender smtpSender) *EmailChannel {
	t.Helper()
	c, err := NewEmailChannel(&config.MailConfig{
		Addr: "smtp.example.com:587",
		From: "Salamah System <no-reply@salamah.example.com>",
	})
	require.NoError(t, err)
	c.sender = sender
	return c
}

func TestNewEmailChannel_RejectsBadAddr(t *testing.T) {
	_, err := NewEmailChannel(&config.MailConfig{Addr: "no-port-here"})
	assert.Error(t, err)
}

func TestEmailChannel_SendEmergency(t *testing.T) {
	sender := &fakeSMTP{}
	c := newTestChannel(t, sender)

	rcv := Receiver{ID: "PAR001", Role: model.RoleParent, Name: "Huda", Email: "huda@example.com"}
	msg := Message{
		Category: model.CategoryAccident,
		Body:     "[ACCIDENT] - Minor collision at the gate",
		Location: "School main gate",
	}
	require.NoError(t, c.Send(context.Background(), rcv, msg))

	require.Len(t, sender.sent, 1)
	e := sender.sent[0]
	assert.Equal(t, []string{"huda@example.com"}, e.To)
	assert.Equal(t, "Emergency: accident", e.Subject)
	assert.Contains(t, string(e.HTML), "[ACCIDENT] - Minor collision at the gate")
	assert.Contains(t, string(e.HTML), "School main gate")
	assert.Equal(t, "smtp.example.com:587", sender.addr)
}

func TestEmailChannel_SendAttendance(t *testing.T) {
	sender := &fakeSMTP{}
	c := newTestChannel(t, sender)

	rcv := Receiver{ID: "PAR001", Role: model.RoleParent, Email: "huda@example.com"}
	msg := Message{
		Category: model.CategoryAttendance,
		Body:     "Your child Omar has boarded Bus BUS0001 at 7:15:00 AM.",
	}
	require.NoError(t, c.Send(context.Background(), rcv, msg))

	require.Len(t, sender.sent, 1)
	e := sender.sent[0]
	assert.Equal(t, "Bus Attendance Update", e.Subject)
	assert.NotContains(t, string(e.HTML), "Location:")
}

func TestEmailChannel_NoAddress(t *testing.T) {
	sender := &fakeSMTP{}
	c := newTestChannel(t, sender)

	rcv := Receiver{ID: "ADM001", Role: model.RoleAdmin}
	err := c.Send(context.Background(), rcv, Message{Category: model.CategoryDelay, Body: "[DELAY] - Heavy traffic"})
	assert.ErrorIs(t, err, ErrNoContact)
	assert.Empty(t, sender.sent)
}

func TestEmailChannel_ConnectionFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"op error", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connect: connection refused")}},
		{"wrapped string", errors.New("dial tcp 10.0.0.1:587: connection refused")},
		{"dns failure", errors.New("lookup smtp.example.com: no such host")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestChannel(t, &fakeSMTP{err: tc.err})
			rcv := Receiver{ID: "PAR001", Email: "huda@example.com"}
			err := c.Send(context.Background(), rcv, Message{Category: model.CategoryDelay, Body: "[DELAY] - Heavy traffic"})
			assert.ErrorIs(t, err, ErrChannelDown)
		})
	}
}

func TestEmailChannel_ReceiverRejection(t *testing.T) {
	c := newTestChannel(t, &fakeSMTP{err: errors.New("550 mailbox unavailable")})
	rcv := Receiver{ID: "PAR001", Email: "huda@example.com"}
	err := c.Send(context.Background(), rcv, Message{Category: model.CategoryDelay, Body: "[DELAY] - Heavy traffic"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrChannelDown)
	assert.NotErrorIs(t, err, ErrNoContact)
}

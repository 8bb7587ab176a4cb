package push

import (
	"context"
	"errors"

	"salamah-backend/internal/model"
)

var (
	// ErrChannelDown signals that the channel itself is unavailable, as
	// opposed to a single receiver being unreachable. The dispatcher uses
	// it to decide whether a fleet dispatch must be rolled back.
	ErrChannelDown = errors.New("push channel unavailable")

	// ErrNoContact signals that the receiver has no resolvable contact
	// address on this channel. Not a delivery failure.
	ErrNoContact = errors.New("receiver has no contact address")
)

// Receiver is one addressee of a push, with the contact information the
// channels need.
type Receiver struct {
	ID    string
	Role  model.ReceiverRole
	Name  string
	Email string
}

// Message is the channel-agnostic content of one push.
type Message struct {
	Category model.Category
	Body     string
	Location string // Optional, emergency reports only
}

// Channel delivers a notification to a single receiver. Implementations
// must be safe for concurrent use; the dispatcher fans out across
// receivers with one goroutine each.
type Channel interface {
	Name() string
	Send(ctx context.Context, rcv Receiver, msg Message) error
}

package notify

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"

	"salamah-backend/internal/clock"
	"salamah-backend/internal/model"
	"salamah-backend/internal/push"
	"salamah-backend/internal/store"
)

// ErrDeliveryFailed is returned when a fleet dispatch could not be
// delivered to anyone because the delivery channel itself was down. The
// staged notification has been rolled back when this is returned.
var ErrDeliveryFailed = errors.New("notification delivery failed")

// Mode selects the dispatch failure semantics.
type Mode int

const (
	// ModeFleet is a multi-receiver emergency dispatch. Total delivery
	// channel failure rolls the persisted rows back.
	ModeFleet Mode = iota
	// ModeSingleParent is an attendance dispatch. Persistence alone is
	// success; push failures are logged and swallowed.
	ModeSingleParent
)

// Dispatcher persists a notification with its fan-out record and pushes it
// to the resolved receivers. The delivery channel (email) decides the fate
// of a fleet dispatch; the dashboard channel (web push) is always best
// effort.
type Dispatcher struct {
	store     store.Store
	clk       clock.Clock
	delivery  push.Channel
	dashboard push.Channel // may be nil
}

// NewDispatcher creates a dispatcher. dashboard may be nil when web push
// is not configured.
func NewDispatcher(s store.Store, clk clock.Clock, delivery, dashboard push.Channel) *Dispatcher {
	return &Dispatcher{store: s, clk: clk, delivery: delivery, dashboard: dashboard}
}

// Dispatch stages the notification and its dispatch record, then fans the
// push out to every receiver. The two rows are committed before any push
// is attempted; on total delivery failure of a fleet dispatch both are
// deleted again so the log holds no phantom sends.
func (d *Dispatcher) Dispatch(ctx context.Context, n *model.Notification, msg push.Message, receivers []push.Receiver, mode Mode) (*model.DispatchRecord, error) {
	rec := &model.DispatchRecord{
		DispatchID:     uuid.NewString(),
		NotificationID: n.NotificationID,
		SentAt:         d.clk.Now(),
		Receivers:      toDispatchReceivers(receivers),
	}
	if err := d.store.CreateDispatch(ctx, n, rec); err != nil {
		return nil, err
	}

	delivered, channelDown := d.fanOut(ctx, msg, receivers)

	if mode == ModeFleet && channelDown && delivered == 0 {
		if err := d.store.DeleteDispatch(ctx, n, rec); err != nil {
			log.Printf("Failed to roll back dispatch %s: %v", rec.DispatchID, err)
		}
		return nil, ErrDeliveryFailed
	}
	return rec, nil
}

// fanOut pushes to every receiver concurrently and collects the outcome.
// Individual failures are logged and never abort the batch.
func (d *Dispatcher) fanOut(ctx context.Context, msg push.Message, receivers []push.Receiver) (delivered int, channelDown bool) {
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	channels := []push.Channel{d.delivery}
	if d.dashboard != nil {
		channels = append(channels, d.dashboard)
	}

	for _, ch := range channels {
		for _, rcv := range receivers {
			wg.Add(1)
			go func(ch push.Channel, rcv push.Receiver) {
				defer wg.Done()

				err := ch.Send(ctx, rcv, msg)
				switch {
				case err == nil:
					if ch == d.delivery {
						mu.Lock()
						delivered++
						mu.Unlock()
					}
				case errors.Is(err, push.ErrNoContact):
					// Nothing to deliver to; not a failure.
				case errors.Is(err, push.ErrChannelDown):
					log.Printf("Push channel %s down for receiver %s: %v", ch.Name(), rcv.ID, err)
					if ch == d.delivery {
						mu.Lock()
						channelDown = true
						mu.Unlock()
					}
				default:
					log.Printf("Push via %s to receiver %s failed: %v", ch.Name(), rcv.ID, err)
				}
			}(ch, rcv)
		}
	}
	wg.Wait()
	return delivered, channelDown
}

func toDispatchReceivers(receivers []push.Receiver) []model.DispatchReceiver {
	out := make([]model.DispatchReceiver, len(receivers))
	for i, r := range receivers {
		out[i] = model.DispatchReceiver{
			ReceiverID:   r.ID,
			ReceiverRole: r.Role,
			ReadStatus:   model.ReadStatusUnread,
		}
	}
	return out
}

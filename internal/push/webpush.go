package push

import (
	"context"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"salamah-backend/internal/store"
)

// WebPushSender defines the interface for sending a web push notification.
type WebPushSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

type libWebPushSender struct{}

func (libWebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WebPushChannel delivers notifications to the browser subscriptions a
// receiver has registered on the dashboard. It is purely best effort:
// a receiver without subscriptions is simply skipped and individual send
// failures never fail the dispatch.
type WebPushChannel struct {
	store   store.Store
	options *webpush.Options
	sender  WebPushSender
}

// NewWebPushChannel creates the web push channel.
func NewWebPushChannel(s store.Store, options *webpush.Options) *WebPushChannel {
	return &WebPushChannel{store: s, options: options, sender: libWebPushSender{}}
}

func (c *WebPushChannel) Name() string { return "webpush" }

// Send pushes the notification to every registered subscription of the
// receiver. Expired subscriptions (410) are deleted on the spot.
func (c *WebPushChannel) Send(ctx context.Context, rcv Receiver, msg Message) error {
	subs, err := c.store.SubscriptionsForReceiver(ctx, rcv.ID)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		return ErrNoContact
	}

	payload := []byte(msg.Body)
	for _, sub := range subs {
		wpSub := &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.P256DH,
				Auth:   sub.Auth,
			},
		}

		resp, err := c.sender.Send(payload, wpSub, c.options)
		if err != nil {
			log.Printf("Error sending web push to %s: %v", sub.Endpoint, err)
			continue
		}
		resp.Body.Close()

		if resp.StatusCode == http.StatusGone {
			log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
			if err := c.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
				log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
			}
		}
	}
	return nil
}

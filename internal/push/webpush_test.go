package push

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	appdb "salamah-backend/internal/db"
	"salamah-backend/internal/model"
	"salamah-backend/internal/store"
)

type fakeWebPush struct {
	status    map[string]int // endpoint to response status, default 201
	endpoints []string
	payloads  []string
}

func (f *fakeWebPush) Send(payload []byte, sub *webpush.Subscription, _ *webpush.Options) (*http.Response, error) {
	f.endpoints = append(f.endpoints, sub.Endpoint)
	f.payloads = append(f.payloads, string(payload))
	status := http.StatusCreated
	if s, ok := f.status[sub.Endpoint]; ok {
		status = s
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader("")),
	}, nil
}

func newWebPushFixture(t *testing.T) (*gorm.DB, store.Store) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, appdb.Migrate(gdb))
	return gdb, store.NewGormStore(gdb)
}

func seedSubscription(t *testing.T, gdb *gorm.DB, endpoint, receiverID string) {
	t.Helper()
	require.NoError(t, gdb.Create(&model.PushSubscription{
		Endpoint:     endpoint,
		P256DH:       "p256dh-key",
		Auth:         "auth-secret",
		ReceiverID:   receiverID,
		ReceiverRole: model.RoleParent,
	}).Error)
}

func TestWebPushChannel_SendsToEverySubscription(t *testing.T) {
	gdb, s := newWebPushFixture(t)
	seedSubscription(t, gdb, "https://push.example.com/a", "PAR001")
	seedSubscription(t, gdb, "https://push.example.com/b", "PAR001")
	seedSubscription(t, gdb, "https://push.example.com/c", "PAR002")

	sender := &fakeWebPush{}
	c := NewWebPushChannel(s, &webpush.Options{})
	c.sender = sender

	msg := Message{Category: model.CategoryDelay, Body: "[DELAY] - Heavy traffic on the ring road"}
	require.NoError(t, c.Send(context.Background(), Receiver{ID: "PAR001"}, msg))

	assert.ElementsMatch(t, []string{"https://push.example.com/a", "https://push.example.com/b"}, sender.endpoints)
	for _, p := range sender.payloads {
		assert.Equal(t, msg.Body, p)
	}
}

func TestWebPushChannel_NoSubscriptions(t *testing.T) {
	_, s := newWebPushFixture(t)

	c := NewWebPushChannel(s, &webpush.Options{})
	c.sender = &fakeWebPush{}

	err := c.Send(context.Background(), Receiver{ID: "PAR001"}, Message{Body: "hello parent"})
	assert.ErrorIs(t, err, ErrNoContact)
}

func TestWebPushChannel_DeletesExpiredSubscription(t *testing.T) {
	gdb, s := newWebPushFixture(t)
	seedSubscription(t, gdb, "https://push.example.com/stale", "PAR001")
	seedSubscription(t, gdb, "https://push.example.com/live", "PAR001")

	sender := &fakeWebPush{status: map[string]int{
		"https://push.example.com/stale": http.StatusGone,
	}}
	c := NewWebPushChannel(s, &webpush.Options{})
	c.sender = sender

	require.NoError(t, c.Send(context.Background(), Receiver{ID: "PAR001"}, Message{Body: "hello parent"}))

	var remaining []model.PushSubscription
	require.NoError(t, gdb.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "https://push.example.com/live", remaining[0].Endpoint)
}

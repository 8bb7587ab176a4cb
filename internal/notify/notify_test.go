package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	appdb "salamah-backend/internal/db"
	"salamah-backend/internal/model"
	"salamah-backend/internal/push"
	"salamah-backend/internal/store"
)

// fakeChannel is a test double for a push channel.
type fakeChannel struct {
	name     string
	sendFunc func(rcv push.Receiver, msg push.Message) error

	mu   sync.Mutex
	sent []string // receiver ids that were delivered to
}

func (f *fakeChannel) Name() string { return f.name }

func (f *fakeChannel) Send(_ context.Context, rcv push.Receiver, msg push.Message) error {
	if f.sendFunc != nil {
		if err := f.sendFunc(rcv, msg); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, rcv.ID)
	return nil
}

func (f *fakeChannel) delivered() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, appdb.Migrate(gdb))
	return gdb
}

func seedEmergencyDispatch(t *testing.T, s store.Store, sentAt time.Time) {
	t.Helper()
	n := &model.Notification{
		NotificationID: fmt.Sprintf("n-%d", sentAt.UnixNano()),
		Message:        "[ACCIDENT] - seeded emergency for cooldown",
		Category:       model.CategoryAccident,
	}
	rec := &model.DispatchRecord{
		DispatchID:     fmt.Sprintf("d-%d", sentAt.UnixNano()),
		NotificationID: n.NotificationID,
		SentAt:         sentAt,
		Receivers:      []model.DispatchReceiver{{ReceiverID: "ADM001", ReceiverRole: model.RoleAdmin, ReadStatus: model.ReadStatusUnread}},
	}
	require.NoError(t, s.CreateDispatch(context.Background(), n, rec))
}

package notify

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"salamah-backend/internal/model"
	"salamah-backend/internal/push"
	"salamah-backend/internal/store"
)

func testReceivers() []push.Receiver {
	return []push.Receiver{
		{ID: "ADM001", Role: model.RoleAdmin, Email: "admin1@example.com"},
		{ID: "PAR001", Role: model.RoleParent, Email: "huda@example.com"},
		{ID: "PAR002", Role: model.RoleParent, Email: "sami@example.com"},
	}
}

func testNotification() *model.Notification {
	return &model.Notification{
		NotificationID: "n-test",
		Message:        "[DELAY] - Bus is running 20 minutes late",
		Category:       model.CategoryDelay,
	}
}

func countRows(t *testing.T, gdb *gorm.DB, m any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(m).Where(query, args...).Count(&n).Error)
	return n
}

func TestDispatch_FleetSuccessPersistsAndDelivers(t *testing.T) {
	gdb := newTestDB(t)
	s := store.NewGormStore(gdb)
	delivery := &fakeChannel{name: "email"}
	dashboard := &fakeChannel{name: "webpush"}
	d := NewDispatcher(s, &fakeClock{t: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)}, delivery, dashboard)

	n := testNotification()
	rec, err := d.Dispatch(context.Background(), n, push.Message{Category: n.Category, Body: n.Message}, testReceivers(), ModeFleet)
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, int64(1), countRows(t, gdb, &model.Notification{}, "notification_id = ?", n.NotificationID))
	assert.Equal(t, int64(3), countRows(t, gdb, &model.DispatchReceiver{}, "dispatch_id = ?", rec.DispatchID))
	assert.Equal(t, int64(3), countRows(t, gdb, &model.DispatchReceiver{}, "dispatch_id = ? AND read_status = ?", rec.DispatchID, model.ReadStatusUnread))

	assert.ElementsMatch(t, []string{"ADM001", "PAR001", "PAR002"}, delivery.delivered())
	assert.ElementsMatch(t, []string{"ADM001", "PAR001", "PAR002"}, dashboard.delivered())
}

func TestDispatch_FleetChannelDownRollsBack(t *testing.T) {
	gdb := newTestDB(t)
	s := store.NewGormStore(gdb)
	delivery := &fakeChannel{
		name: "email",
		sendFunc: func(push.Receiver, push.Message) error {
			return fmt.Errorf("%w: dial tcp: connection refused", push.ErrChannelDown)
		},
	}
	d := NewDispatcher(s, &fakeClock{t: time.Now().UTC()}, delivery, nil)

	n := testNotification()
	_, err := d.Dispatch(context.Background(), n, push.Message{Category: n.Category, Body: n.Message}, testReceivers(), ModeFleet)
	assert.ErrorIs(t, err, ErrDeliveryFailed)

	// Neither the notification nor the dispatch record may survive.
	assert.Equal(t, int64(0), countRows(t, gdb, &model.Notification{}, "notification_id = ?", n.NotificationID))
	assert.Equal(t, int64(0), countRows(t, gdb, &model.DispatchRecord{}, "notification_id = ?", n.NotificationID))
	assert.Equal(t, int64(0), countRows(t, gdb, &model.DispatchReceiver{}, "1 = 1"))
}

func TestDispatch_FleetPartialFailureIsKept(t *testing.T) {
	gdb := newTestDB(t)
	s := store.NewGormStore(gdb)
	delivery := &fakeChannel{
		name: "email",
		sendFunc: func(rcv push.Receiver, _ push.Message) error {
			if rcv.ID == "PAR001" {
				return errors.New("550 mailbox unavailable")
			}
			return nil
		},
	}
	d := NewDispatcher(s, &fakeClock{t: time.Now().UTC()}, delivery, nil)

	n := testNotification()
	rec, err := d.Dispatch(context.Background(), n, push.Message{Category: n.Category, Body: n.Message}, testReceivers(), ModeFleet)
	require.NoError(t, err, "one unreachable receiver must not fail the dispatch")

	assert.ElementsMatch(t, []string{"ADM001", "PAR002"}, delivery.delivered())
	assert.Equal(t, int64(1), countRows(t, gdb, &model.DispatchRecord{}, "dispatch_id = ?", rec.DispatchID))
}

func TestDispatch_FleetDashboardCannotSaveARollback(t *testing.T) {
	// Web push succeeding must not mask a dead delivery channel.
	gdb := newTestDB(t)
	s := store.NewGormStore(gdb)
	delivery := &fakeChannel{
		name: "email",
		sendFunc: func(push.Receiver, push.Message) error {
			return fmt.Errorf("%w: dial tcp: connection refused", push.ErrChannelDown)
		},
	}
	dashboard := &fakeChannel{name: "webpush"}
	d := NewDispatcher(s, &fakeClock{t: time.Now().UTC()}, delivery, dashboard)

	n := testNotification()
	_, err := d.Dispatch(context.Background(), n, push.Message{Category: n.Category, Body: n.Message}, testReceivers(), ModeFleet)
	assert.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Equal(t, int64(0), countRows(t, gdb, &model.Notification{}, "notification_id = ?", n.NotificationID))
}

func TestDispatch_SingleParentSwallowsChannelDown(t *testing.T) {
	gdb := newTestDB(t)
	s := store.NewGormStore(gdb)
	delivery := &fakeChannel{
		name: "email",
		sendFunc: func(push.Receiver, push.Message) error {
			return fmt.Errorf("%w: dial tcp: connection refused", push.ErrChannelDown)
		},
	}
	d := NewDispatcher(s, &fakeClock{t: time.Now().UTC()}, delivery, nil)

	n := testNotification()
	n.Category = model.CategoryAttendance
	receivers := []push.Receiver{{ID: "PAR001", Role: model.RoleParent, Email: "huda@example.com"}}

	rec, err := d.Dispatch(context.Background(), n, push.Message{Category: n.Category, Body: n.Message}, receivers, ModeSingleParent)
	require.NoError(t, err, "attendance dispatch succeeds on persistence alone")
	assert.Equal(t, int64(1), countRows(t, gdb, &model.DispatchRecord{}, "dispatch_id = ?", rec.DispatchID))
}

func TestDispatch_ReceiversWithoutContactDoNotTriggerRollback(t *testing.T) {
	gdb := newTestDB(t)
	s := store.NewGormStore(gdb)
	delivery := &fakeChannel{
		name: "email",
		sendFunc: func(rcv push.Receiver, _ push.Message) error {
			if rcv.Email == "" {
				return push.ErrNoContact
			}
			return nil
		},
	}
	d := NewDispatcher(s, &fakeClock{t: time.Now().UTC()}, delivery, nil)

	receivers := []push.Receiver{
		{ID: "ADM001", Role: model.RoleAdmin}, // no email on file
		{ID: "PAR001", Role: model.RoleParent},
	}
	n := testNotification()
	rec, err := d.Dispatch(context.Background(), n, push.Message{Category: n.Category, Body: n.Message}, receivers, ModeFleet)
	require.NoError(t, err)
	assert.Equal(t, int64(2), countRows(t, gdb, &model.DispatchReceiver{}, "dispatch_id = ?", rec.DispatchID))
	assert.Empty(t, delivery.delivered())
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"salamah-backend/internal/model"
)

// DispatchView is one dispatch record joined with its notification content,
// as returned to receivers.
type DispatchView struct {
	DispatchID   string                   `json:"sent_id"`
	SentAt       time.Time                `json:"sent_at"`
	Receivers    []model.DispatchReceiver `json:"receivers"`
	Notification *model.Notification      `json:"notification"`
}

// Store defines the interface for all database operations of the core.
type Store interface {
	DB() *gorm.DB

	// Lookups the recipient resolver and scan handler depend on.
	FindStudent(ctx context.Context, studentID string) (*model.Student, error)
	FindBus(ctx context.Context, busID string) (*model.Bus, error)
	AllAdmins(ctx context.Context) ([]model.Admin, error)
	ParentsOnBus(ctx context.Context, busRef int64) ([]model.Parent, error)

	// Scan ledger. Append-only; LatestScan only consults the given window.
	LatestScan(ctx context.Context, studentRef int64, from, to time.Time) (*model.ScanEvent, error)
	AppendScan(ctx context.Context, ev *model.ScanEvent) error

	// Notification store.
	CreateDispatch(ctx context.Context, n *model.Notification, rec *model.DispatchRecord) error
	DeleteDispatch(ctx context.Context, n *model.Notification, rec *model.DispatchRecord) error
	LatestEmergencySentAt(ctx context.Context) (time.Time, bool, error)
	ListDispatches(ctx context.Context, receiverID string, limit int) ([]DispatchView, error)
	MarkRead(ctx context.Context, dispatchID, receiverID string) error

	// Web push subscriptions.
	SubscriptionsForReceiver(ctx context.Context, receiverID string) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB { return s.db }

func (s *gormStore) FindStudent(ctx context.Context, studentID string) (*model.Student, error) {
	var student model.Student
	err := s.db.WithContext(ctx).
		Preload("Parent").
		First(&student, "student_id = ?", studentID).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (s *gormStore) FindBus(ctx context.Context, busID string) (*model.Bus, error) {
	var bus model.Bus
	if err := s.db.WithContext(ctx).First(&bus, "bus_id = ?", busID).Error; err != nil {
		return nil, err
	}
	return &bus, nil
}

func (s *gormStore) AllAdmins(ctx context.Context) ([]model.Admin, error) {
	var admins []model.Admin
	if err := s.db.WithContext(ctx).Find(&admins).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch admins: %w", err)
	}
	return admins, nil
}

// ParentsOnBus returns the distinct parents of all students currently
// assigned to the bus. A parent with several children on the same bus
// appears once.
func (s *gormStore) ParentsOnBus(ctx context.Context, busRef int64) ([]model.Parent, error) {
	var parents []model.Parent
	err := s.db.WithContext(ctx).
		Distinct("parents.*").
		Joins("JOIN students ON students.parent_id = parents.id").
		Where("students.bus_id = ?", busRef).
		Find(&parents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch parents for bus %d: %w", busRef, err)
	}
	return parents, nil
}

// LatestScan returns the most recent scan event for the student with
// occurred_at inside [from, to), or nil when the window is empty.
func (s *gormStore) LatestScan(ctx context.Context, studentRef int64, from, to time.Time) (*model.ScanEvent, error) {
	var ev model.ScanEvent
	err := s.db.WithContext(ctx).
		Where("student_ref = ? AND occurred_at >= ? AND occurred_at < ?", studentRef, from, to).
		Order("occurred_at DESC").
		First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest scan for student %d: %w", studentRef, err)
	}
	return &ev, nil
}

func (s *gormStore) AppendScan(ctx context.Context, ev *model.ScanEvent) error {
	if err := s.db.WithContext(ctx).Create(ev).Error; err != nil {
		return fmt.Errorf("failed to append scan event %s: %w", ev.EventID, err)
	}
	return nil
}

// CreateDispatch stages a dispatch: the notification, its dispatch record
// and the receiver rows are created in one transaction so the store never
// holds a record without its content or receivers.
func (s *gormStore) CreateDispatch(ctx context.Context, n *model.Notification, rec *model.DispatchRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(n).Error; err != nil {
			return fmt.Errorf("failed to create notification %s: %w", n.NotificationID, err)
		}
		receivers := rec.Receivers
		rec.Receivers = nil
		if err := tx.Create(rec).Error; err != nil {
			return fmt.Errorf("failed to create dispatch record %s: %w", rec.DispatchID, err)
		}
		for i := range receivers {
			receivers[i].DispatchID = rec.DispatchID
		}
		if len(receivers) > 0 {
			if err := tx.Create(&receivers).Error; err != nil {
				return fmt.Errorf("failed to create receivers for dispatch %s: %w", rec.DispatchID, err)
			}
		}
		rec.Receivers = receivers
		return nil
	})
}

// DeleteDispatch is the compensating rollback of CreateDispatch.
func (s *gormStore) DeleteDispatch(ctx context.Context, n *model.Notification, rec *model.DispatchRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("dispatch_id = ?", rec.DispatchID).Delete(&model.DispatchReceiver{}).Error; err != nil {
			return fmt.Errorf("failed to delete receivers for dispatch %s: %w", rec.DispatchID, err)
		}
		if err := tx.Where("dispatch_id = ?", rec.DispatchID).Delete(&model.DispatchRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete dispatch record %s: %w", rec.DispatchID, err)
		}
		if err := tx.Where("notification_id = ?", n.NotificationID).Delete(&model.Notification{}).Error; err != nil {
			return fmt.Errorf("failed to delete notification %s: %w", n.NotificationID, err)
		}
		return nil
	})
}

// LatestEmergencySentAt returns the sent_at of the most recent dispatch
// whose notification carries an emergency category, across the whole
// fleet. The second return value is false when no such dispatch exists.
func (s *gormStore) LatestEmergencySentAt(ctx context.Context) (time.Time, bool, error) {
	var rec model.DispatchRecord
	err := s.db.WithContext(ctx).
		Joins("JOIN notifications ON notifications.notification_id = dispatch_records.notification_id").
		Where("notifications.category IN ?", model.EmergencyCategories).
		Order("dispatch_records.sent_at DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to fetch latest emergency dispatch: %w", err)
	}
	return rec.SentAt, true, nil
}

// ListDispatches returns the newest dispatches addressed to the receiver,
// joined with their notification content, newest first.
func (s *gormStore) ListDispatches(ctx context.Context, receiverID string, limit int) ([]DispatchView, error) {
	var records []model.DispatchRecord
	err := s.db.WithContext(ctx).
		Preload("Receivers").
		Where("dispatch_id IN (?)",
			s.db.Model(&model.DispatchReceiver{}).
				Select("dispatch_id").
				Where("receiver_id = ?", receiverID)).
		Order("sent_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dispatches for receiver %s: %w", receiverID, err)
	}
	if len(records) == 0 {
		return []DispatchView{}, nil
	}

	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.NotificationID
	}
	var notifications []model.Notification
	if err := s.db.WithContext(ctx).Where("notification_id IN ?", ids).Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch notification content: %w", err)
	}
	byID := make(map[string]*model.Notification, len(notifications))
	for i := range notifications {
		byID[notifications[i].NotificationID] = &notifications[i]
	}

	views := make([]DispatchView, len(records))
	for i, r := range records {
		views[i] = DispatchView{
			DispatchID:   r.DispatchID,
			SentAt:       r.SentAt,
			Receivers:    r.Receivers,
			Notification: byID[r.NotificationID],
		}
	}
	return views, nil
}

// MarkRead flips the receiver entry to read. The update is idempotent and
// matching zero rows is a silent success; callers never learn whether the
// pair existed.
func (s *gormStore) MarkRead(ctx context.Context, dispatchID, receiverID string) error {
	err := s.db.WithContext(ctx).
		Model(&model.DispatchReceiver{}).
		Where("dispatch_id = ? AND receiver_id = ?", dispatchID, receiverID).
		Update("read_status", model.ReadStatusRead).Error
	if err != nil {
		return fmt.Errorf("failed to mark dispatch %s read for %s: %w", dispatchID, receiverID, err)
	}
	return nil
}

func (s *gormStore) SubscriptionsForReceiver(ctx context.Context, receiverID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("receiver_id = ?", receiverID).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions for %s: %w", receiverID, err)
	}
	return subs, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error
}

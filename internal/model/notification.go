package model

import "time"

// Category classifies a notification.
type Category string

const (
	CategoryDelay      Category = "delay"
	CategoryAccident   Category = "accident"
	CategoryBreakdown  Category = "breakdown"
	CategoryAttendance Category = "attendance"
)

// EmergencyCategories are the categories subject to the fleet-wide cooldown.
var EmergencyCategories = []Category{CategoryDelay, CategoryAccident, CategoryBreakdown}

// IsEmergency reports whether c is one of the emergency categories.
func (c Category) IsEmergency() bool {
	for _, e := range EmergencyCategories {
		if c == e {
			return true
		}
	}
	return false
}

// ReceiverRole identifies the kind of account a notification is addressed to.
type ReceiverRole string

const (
	RoleAdmin  ReceiverRole = "admin"
	RoleParent ReceiverRole = "parent"
)

// ReadStatus tracks whether a receiver has seen a dispatch.
type ReadStatus string

const (
	ReadStatusUnread ReadStatus = "unread"
	ReadStatusRead   ReadStatus = "read"
)

// Notification is the immutable content of one dispatch attempt.
type Notification struct {
	ID             int64     `gorm:"primaryKey" json:"-"`
	NotificationID string    `gorm:"uniqueIndex;size:64;not null" json:"notification_id"` // uuid
	Message        string    `gorm:"size:512;not null" json:"message"`
	Category       Category  `gorm:"size:16;not null;index" json:"category"`
	CreatedAt      time.Time `json:"created_at"`
}

// DispatchRecord is the persisted record of one notification-send event.
// The receiver list is fixed at creation; only each receiver's read status
// mutates afterwards.
type DispatchRecord struct {
	ID             int64     `gorm:"primaryKey"`
	DispatchID     string    `gorm:"uniqueIndex;size:64;not null"` // uuid
	NotificationID string    `gorm:"size:64;not null;index"`
	SentAt         time.Time `gorm:"not null;index"`
	CreatedAt      time.Time

	// Associations
	Receivers []DispatchReceiver `gorm:"foreignKey:DispatchID;references:DispatchID"`
}

// DispatchReceiver is one addressee of a dispatch with its read status.
type DispatchReceiver struct {
	ID           int64        `gorm:"primaryKey" json:"-"`
	DispatchID   string       `gorm:"size:64;not null;index:idx_dispatch_receiver" json:"-"`
	ReceiverID   string       `gorm:"size:64;not null;index:idx_dispatch_receiver" json:"receiver_id"`
	ReceiverRole ReceiverRole `gorm:"size:16;not null" json:"receiver_role"`
	ReadStatus   ReadStatus   `gorm:"size:16;not null;default:unread" json:"read_status"`
}

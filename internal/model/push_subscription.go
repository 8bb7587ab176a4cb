package model

import "time"

// PushSubscription holds a browser push subscription registered by a
// dashboard user (admin or parent).
type PushSubscription struct {
	Endpoint     string       `gorm:"primaryKey"`
	P256DH       string       `gorm:"column:p256dh;not null"`
	Auth         string       `gorm:"not null"`
	ReceiverID   string       `gorm:"size:64;not null;index"`
	ReceiverRole ReceiverRole `gorm:"size:16;not null"`
	CreatedAt    time.Time    `gorm:"not null"`
}

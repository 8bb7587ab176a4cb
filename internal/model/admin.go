package model

import "time"

// Admin represents an operations-staff account. Every admin receives
// every fleet-wide emergency notification.
type Admin struct {
	ID          int64  `gorm:"primaryKey"`
	AdminID     string `gorm:"uniqueIndex;size:64;not null"` // Public ID, e.g. "ADM001"
	Name        string `gorm:"size:256;not null"`
	PhoneNumber string `gorm:"size:32"`
	Email       string `gorm:"uniqueIndex;size:256;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

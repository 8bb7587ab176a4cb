package model

import "time"

// Student represents a child registered for bus transport.
type Student struct {
	ID        int64  `gorm:"primaryKey"`
	StudentID string `gorm:"uniqueIndex;size:64;not null"` // Public ID, e.g. "STU123"
	Name      string `gorm:"size:256;not null"`
	ParentID  int64  `gorm:"index;not null"`
	BusID     int64  `gorm:"index"` // Currently assigned bus; 0 when unassigned
	CardURL   string `gorm:"size:512"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Associations
	Parent Parent `gorm:"constraint:OnDelete:CASCADE"`
	Bus    Bus
}

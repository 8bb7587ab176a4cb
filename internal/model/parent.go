package model

import "time"

// Parent represents a guardian account receiving notifications.
type Parent struct {
	ID          int64  `gorm:"primaryKey"`
	ParentID    string `gorm:"uniqueIndex;size:64;not null"` // Public ID, e.g. "PAR123"
	Name        string `gorm:"size:256;not null"`
	PhoneNumber string `gorm:"size:32"`
	Email       string `gorm:"uniqueIndex;size:256;not null"`
	HomeAddress string `gorm:"size:512"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Associations
	Children []Student `gorm:"foreignKey:ParentID"`
}

package model

import "time"

// Bus represents a school bus in the fleet.
type Bus struct {
	ID          int64  `gorm:"primaryKey"`
	BusID       string `gorm:"uniqueIndex;size:64;not null"` // Public ID, e.g. "BUS0001"
	PlateNumber string `gorm:"uniqueIndex;size:32;not null"`
	Capacity    int    `gorm:"not null"`
	DriverID    *int64 `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Associations
	Students []Student `gorm:"foreignKey:BusID"`
	Driver   *Driver
}

package model

import "time"

// Driver represents a bus driver account. Drivers operate the scanning
// devices but are not notification receivers.
type Driver struct {
	ID            int64  `gorm:"primaryKey"`
	DriverID      string `gorm:"uniqueIndex;size:64;not null"`
	Name          string `gorm:"size:256;not null"`
	LicenseNumber string `gorm:"size:64"`
	PhoneNumber   string `gorm:"size:32"`
	Email         string `gorm:"uniqueIndex;size:256;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

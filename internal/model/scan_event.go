package model

import "time"

// ScanStatus is the attendance state recorded by a QR scan.
type ScanStatus string

const (
	StatusBoarded    ScanStatus = "boarded"
	StatusDroppedOff ScanStatus = "dropped_off"
)

// Human returns the status as user-facing text.
func (s ScanStatus) Human() string {
	if s == StatusDroppedOff {
		return "dropped off"
	}
	return string(s)
}

// ScanEvent is one append-only entry of the attendance ledger. Events are
// never mutated; the next attendance state is always re-derived from the
// latest event rather than tracked in place.
type ScanEvent struct {
	ID         int64      `gorm:"primaryKey"`
	EventID    string     `gorm:"uniqueIndex;size:64;not null"` // e.g. "ATT-1761879600000-042"
	StudentRef int64      `gorm:"not null;index:idx_scan_student_time"`
	BusRef     int64      `gorm:"not null;index"`
	Status     ScanStatus `gorm:"size:16;not null"`
	OccurredAt time.Time  `gorm:"not null;index:idx_scan_student_time"`
	CreatedAt  time.Time
}

package attendance

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"gorm.io/gorm"

	"salamah-backend/internal/clock"
	"salamah-backend/internal/model"
	"salamah-backend/internal/store"
)

var (
	// ErrStudentNotFound is returned when no student matches the scanned card.
	ErrStudentNotFound = errors.New("student not found")
	// ErrBusNotFound is returned when the scanning bus is unknown.
	ErrBusNotFound = errors.New("bus not found")
	// ErrNotAssigned is returned when the student is not assigned to the
	// scanning bus. This is a hard rejection, not a suppression.
	ErrNotAssigned = errors.New("student not assigned to this bus")
)

// Notifier delivers the attendance notification produced by a recorded
// scan. Implementations must treat delivery as best effort; RecordScan
// never fails because a notification could not be sent.
type Notifier interface {
	NotifyAttendance(ctx context.Context, student *model.Student, bus *model.Bus, status model.ScanStatus)
}

// ScanResult is the definitive outcome reported to the scanning device.
type ScanResult struct {
	Status     model.ScanStatus
	Suppressed bool
	Message    string
}

// Service drives the attendance scan state machine: it validates the scan,
// consults the day's ledger, appends the next event and triggers the
// parent notification.
type Service struct {
	store    store.Store
	clk      clock.Clock
	cal      clock.Calendar
	notifier Notifier
	locks    *studentLocks
}

// NewService creates the scan service.
func NewService(s store.Store, clk clock.Clock, cal clock.Calendar, notifier Notifier) *Service {
	return &Service{
		store:    s,
		clk:      clk,
		cal:      cal,
		notifier: notifier,
		locks:    newStudentLocks(),
	}
}

// RecordScan processes one QR scan for the given student on the given bus.
func (svc *Service) RecordScan(ctx context.Context, studentID, busID string) (*ScanResult, error) {
	student, err := svc.store.FindStudent(ctx, studentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}

	bus, err := svc.store.FindBus(ctx, busID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBusNotFound
	}
	if err != nil {
		return nil, err
	}

	if student.BusID != bus.ID {
		return nil, ErrNotAssigned
	}

	// Serialize the read-latest/append sequence per student so concurrent
	// scans cannot both pass the suppression windows.
	mu := svc.locks.get(studentID)
	mu.Lock()
	defer mu.Unlock()

	now := svc.clk.Now()
	dayStart, dayEnd := svc.cal.DayWindow(now)

	last, err := svc.store.LatestScan(ctx, student.ID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	d := Decide(last, now)
	if d.Action == ActionSuppressed {
		return &ScanResult{Status: d.Status, Suppressed: true, Message: d.Reason}, nil
	}

	ev := &model.ScanEvent{
		EventID:    newEventID(now),
		StudentRef: student.ID,
		BusRef:     bus.ID,
		Status:     d.Status,
		OccurredAt: now,
	}
	if err := svc.store.AppendScan(ctx, ev); err != nil {
		return nil, err
	}

	// Attendance notification is a secondary side effect of the scan; the
	// scanning device still gets a success when it fails.
	svc.notifier.NotifyAttendance(ctx, student, bus, d.Status)

	return &ScanResult{
		Status:  d.Status,
		Message: fmt.Sprintf("Student %s %s", student.Name, d.Status.Human()),
	}, nil
}

func newEventID(now time.Time) string {
	return fmt.Sprintf("ATT-%d-%03d", now.UnixMilli(), rand.Intn(1000))
}

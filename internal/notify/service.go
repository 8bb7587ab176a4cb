package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"salamah-backend/internal/clock"
	"salamah-backend/internal/model"
	"salamah-backend/internal/push"
	"salamah-backend/internal/store"
)

var (
	// ErrInvalidCategory rejects an unknown emergency category.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrMessageLength rejects a message outside the allowed bounds.
	ErrMessageLength = errors.New("message must be 10-200 characters")
	// ErrBusNotFound rejects an emergency report for an unknown bus.
	ErrBusNotFound = errors.New("bus not found")
)

// Message length bounds, applied after trimming.
const (
	minMessageLen = 10
	maxMessageLen = 200
)

// Service is the notification engine: it validates and dispatches
// emergency reports and emits attendance notifications on behalf of the
// scan state machine.
type Service struct {
	store      store.Store
	clk        clock.Clock
	cal        clock.Calendar
	cooldown   *Cooldown
	dispatcher *Dispatcher
}

// NewService creates the notification service.
func NewService(s store.Store, clk clock.Clock, cal clock.Calendar, cooldown *Cooldown, dispatcher *Dispatcher) *Service {
	return &Service{store: s, clk: clk, cal: cal, cooldown: cooldown, dispatcher: dispatcher}
}

// ReportEmergency validates and dispatches a fleet-wide emergency
// notification for the given bus. Validation runs before the rate check;
// the rate check runs before anything is persisted.
func (s *Service) ReportEmergency(ctx context.Context, busID string, category model.Category, message, location string) error {
	if !category.IsEmergency() {
		return ErrInvalidCategory
	}
	msg := strings.TrimSpace(message)
	if len(msg) < minMessageLen || len(msg) > maxMessageLen {
		return ErrMessageLength
	}

	if err := s.cooldown.Check(ctx, s.clk.Now()); err != nil {
		return err
	}

	bus, err := s.store.FindBus(ctx, busID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrBusNotFound
	}
	if err != nil {
		return err
	}

	receivers, err := s.fleetReceivers(ctx, bus)
	if err != nil {
		return err
	}

	n := &model.Notification{
		NotificationID: uuid.NewString(),
		Message:        fmt.Sprintf("[%s] - %s", strings.ToUpper(string(category)), msg),
		Category:       category,
	}
	pushMsg := push.Message{Category: category, Body: n.Message, Location: location}

	_, err = s.dispatcher.Dispatch(ctx, n, pushMsg, receivers, ModeFleet)
	return err
}

// NotifyAttendance dispatches an attendance notification to the scanned
// student's parent. It never fails the caller; any error is logged and
// swallowed, since attendance notification is a side effect of a scan
// that must still succeed.
func (s *Service) NotifyAttendance(ctx context.Context, student *model.Student, bus *model.Bus, status model.ScanStatus) {
	now := s.clk.Now()
	n := &model.Notification{
		NotificationID: uuid.NewString(),
		Message: fmt.Sprintf("Your child %s has %s Bus %s at %s.",
			student.Name, status.Human(), bus.BusID, s.cal.LocalTime(now)),
		Category: model.CategoryAttendance,
	}
	receiver := push.Receiver{
		ID:    student.Parent.ParentID,
		Role:  model.RoleParent,
		Name:  student.Parent.Name,
		Email: student.Parent.Email,
	}
	pushMsg := push.Message{Category: model.CategoryAttendance, Body: n.Message}

	if _, err := s.dispatcher.Dispatch(ctx, n, pushMsg, []push.Receiver{receiver}, ModeSingleParent); err != nil {
		log.Printf("Error sending attendance notification for student %s: %v", student.StudentID, err)
	}
}

// fleetReceivers resolves the receiver set of a fleet dispatch: every
// admin plus the parents of all students assigned to the bus, each parent
// once regardless of how many children ride it.
func (s *Service) fleetReceivers(ctx context.Context, bus *model.Bus) ([]push.Receiver, error) {
	admins, err := s.store.AllAdmins(ctx)
	if err != nil {
		return nil, err
	}
	parents, err := s.store.ParentsOnBus(ctx, bus.ID)
	if err != nil {
		return nil, err
	}

	receivers := make([]push.Receiver, 0, len(admins)+len(parents))
	for _, a := range admins {
		receivers = append(receivers, push.Receiver{
			ID:    a.AdminID,
			Role:  model.RoleAdmin,
			Name:  a.Name,
			Email: a.Email,
		})
	}
	seen := make(map[string]bool, len(parents))
	for _, p := range parents {
		if seen[p.ParentID] {
			continue
		}
		seen[p.ParentID] = true
		receivers = append(receivers, push.Receiver{
			ID:    p.ParentID,
			Role:  model.RoleParent,
			Name:  p.Name,
			Email: p.Email,
		})
	}
	return receivers, nil
}

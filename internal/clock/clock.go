package clock

import (
	"fmt"
	"time"
)

// Clock abstracts wall-clock time so the attendance state machine can be
// tested against fixed instants.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns a Clock backed by time.Now.
func System() Clock { return systemClock{} }

// Fixed returns a Clock pinned to t.
func Fixed(t time.Time) Clock { return fixedClock{t} }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// Calendar resolves the local calendar day for a fixed UTC offset. The
// offset is fixed rather than taken from the host so that day boundaries
// are the same on every deployment.
type Calendar struct {
	loc *time.Location
}

// NewCalendar creates a Calendar for the given UTC offset in hours.
func NewCalendar(utcOffsetHours int) Calendar {
	name := fmt.Sprintf("UTC%+d", utcOffsetHours)
	return Calendar{loc: time.FixedZone(name, utcOffsetHours*3600)}
}

// DayWindow returns the [start, end) bounds in UTC of the local calendar
// day containing now.
func (c Calendar) DayWindow(now time.Time) (start, end time.Time) {
	local := now.In(c.loc)
	start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc).UTC()
	return start, start.Add(24 * time.Hour)
}

// NextMidnight returns the next local midnight after now, in UTC. Used to
// expire day-scoped records such as absence entries.
func (c Calendar) NextMidnight(now time.Time) time.Time {
	_, end := c.DayWindow(now)
	return end
}

// LocalTime formats now as a local wall-clock time string for
// user-visible notification messages.
func (c Calendar) LocalTime(now time.Time) string {
	return now.In(c.loc).Format("3:04:05 PM")
}

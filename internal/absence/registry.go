package absence

import (
	"errors"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"

	"salamah-backend/internal/clock"
)

// ErrAlreadyMarked is returned when the student is already absent today.
var ErrAlreadyMarked = errors.New("student already marked absent for today")

// Registry is the in-memory day-scoped absence tracker. Entries expire at
// the next local midnight, which replaces a scheduled daily reset. The
// registry is deliberately not persisted; absences only matter for the
// current school day.
type Registry struct {
	entries *cache.Cache
	clk     clock.Clock
	cal     clock.Calendar
}

// NewRegistry creates the registry.
func NewRegistry(clk clock.Clock, cal clock.Calendar) *Registry {
	return &Registry{
		entries: cache.New(cache.NoExpiration, 30*time.Minute),
		clk:     clk,
		cal:     cal,
	}
}

// MarkAbsent records the student as absent for the rest of the local day.
func (r *Registry) MarkAbsent(studentID string) error {
	if _, found := r.entries.Get(studentID); found {
		return ErrAlreadyMarked
	}
	now := r.clk.Now()
	r.entries.Set(studentID, struct{}{}, r.cal.NextMidnight(now).Sub(now))
	return nil
}

// IsAbsent reports whether the student is marked absent today.
func (r *Registry) IsAbsent(studentID string) bool {
	_, found := r.entries.Get(studentID)
	return found
}

// Today returns the student ids marked absent today, sorted for stable
// output.
func (r *Registry) Today() []string {
	items := r.entries.Items()
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

package notify

import (
	"context"
	"fmt"
	"math"
	"time"

	"salamah-backend/internal/store"
)

// RateLimitError rejects an emergency report during the cooldown window.
// RetryAfterMinutes is the remaining wait rounded up to whole minutes.
type RateLimitError struct {
	RetryAfterMinutes int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("emergency already reported recently, try again in %d min", e.RetryAfterMinutes)
}

// Cooldown gates emergency dispatches on the wall-clock time of the most
// recent emergency send. The window is global across the whole fleet, not
// per bus, and counts any emergency category against any other.
type Cooldown struct {
	store  store.Store
	window time.Duration
}

// NewCooldown creates the cooldown gate.
func NewCooldown(s store.Store, window time.Duration) *Cooldown {
	return &Cooldown{store: s, window: window}
}

// Check returns nil when a new emergency may be dispatched at now, or a
// *RateLimitError carrying the remaining wait.
func (c *Cooldown) Check(ctx context.Context, now time.Time) error {
	sentAt, ok, err := c.store.LatestEmergencySentAt(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	elapsed := now.Sub(sentAt)
	if elapsed >= c.window {
		return nil
	}

	remaining := c.window - elapsed
	return &RateLimitError{RetryAfterMinutes: int(math.Ceil(remaining.Minutes()))}
}

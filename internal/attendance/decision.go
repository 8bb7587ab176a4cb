package attendance

import (
	"time"

	"salamah-backend/internal/model"
)

// Re-scan suppression windows. A boarding scan repeated within five
// minutes is a duplicate; a scan within one minute of a drop-off is an
// accidental re-scan. Both windows compare wall-clock deltas against the
// latest ledger entry only.
const (
	boardedRescanWindow = 5 * time.Minute
	droppedRescanWindow = 1 * time.Minute
)

// Action is the outcome of a scan decision.
type Action string

const (
	ActionBoarded    Action = "boarded"
	ActionDroppedOff Action = "dropped_off"
	ActionSuppressed Action = "suppressed"
)

// Decision is the result of evaluating a scan against the latest ledger
// entry of the day.
type Decision struct {
	Action Action
	// Status is the attendance status to record, or the previous status
	// when the scan is suppressed.
	Status model.ScanStatus
	// Reason explains a suppression to the scanning device.
	Reason string
}

// Decide derives the next attendance state from the latest scan event of
// the current day and the scan instant. last is nil when the student has
// no events today; the first scan of a day is always a boarding. Decide is
// a pure function so the suppression policy can be tested without a store.
func Decide(last *model.ScanEvent, now time.Time) Decision {
	if last == nil {
		return Decision{Action: ActionBoarded, Status: model.StatusBoarded}
	}

	elapsed := now.Sub(last.OccurredAt)

	switch last.Status {
	case model.StatusBoarded:
		if elapsed < boardedRescanWindow {
			return Decision{
				Action: ActionSuppressed,
				Status: last.Status,
				Reason: "Duplicate scan ignored. Please wait at least 5 minutes before re-scanning.",
			}
		}
		return Decision{Action: ActionDroppedOff, Status: model.StatusDroppedOff}

	case model.StatusDroppedOff:
		if elapsed < droppedRescanWindow {
			return Decision{
				Action: ActionSuppressed,
				Status: last.Status,
				Reason: "Student recently dropped off. Ignoring quick re-scan.",
			}
		}
		return Decision{Action: ActionBoarded, Status: model.StatusBoarded}
	}

	// Unknown recorded status; re-derive from scratch rather than trusting it.
	return Decision{Action: ActionBoarded, Status: model.StatusBoarded}
}

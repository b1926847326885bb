package session

import "time"

// InitialStatus derives the status of a newly created or edited session
// from its start time: sessions starting in the past are already completed.
func InitialStatus(start, now time.Time) Status {
	if start.Before(now) {
		return StatusCompleted
	}
	return StatusScheduled
}

// ResolveStatus reconciles a stored status against the clock. A scheduled
// session whose end time has passed becomes completed; everything else is
// left alone. The function is pure and idempotent; callers persist the
// result.
func ResolveStatus(current Status, end, now time.Time) Status {
	if current == StatusScheduled && end.Before(now) {
		return StatusCompleted
	}
	return current
}

// Package calendar mirrors sessions into an external calendar.
//
// The mirror is a derived, lossy view: callers treat every operation as
// best-effort and must never fail a write because the mirror did.
package calendar

import (
	"context"
	"time"
)

// Event is the calendar-facing view of a session.
type Event struct {
	Title string
	Start time.Time
	End   time.Time
}

// Mirror creates, updates, and deletes mirrored events. The string handle
// returned by CreateEvent is opaque to callers; an empty handle means the
// event was not created.
type Mirror interface {
	CreateEvent(ctx context.Context, ev Event) (string, error)
	UpdateEvent(ctx context.Context, ref string, ev Event) error
	DeleteEvent(ctx context.Context, ref string) error
}

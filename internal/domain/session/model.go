package session

import "time"

// Status is the lifecycle status of a session.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
)

// Session represents one tutoring occurrence billed at a fixed rate.
type Session struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"student_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    Status    `json:"status"`

	// ActualRate is snapshotted from the student's default rate when the
	// session is created or edited. Billing always uses this value, never
	// the student's current rate.
	ActualRate int64 `json:"actual_rate"`

	// InvoiceID is nil until a billing pass attaches the session to an
	// invoice. The store normalizes both NULL and 0 to nil on load.
	InvoiceID *int64 `json:"invoice_id,omitempty"`

	// CalendarRef is the opaque handle of the mirrored calendar event,
	// empty when the session is not mirrored.
	CalendarRef string `json:"calendar_ref,omitempty"`

	Progress string `json:"progress,omitempty"`
}

// Hours returns the session length in fractional hours.
func (s Session) Hours() float64 {
	return s.EndTime.Sub(s.StartTime).Hours()
}

// Amount returns the un-truncated billable amount for this session.
func (s Session) Amount() float64 {
	return s.Hours() * float64(s.ActualRate)
}

// Billed reports whether the session is attached to an invoice.
func (s Session) Billed() bool {
	return s.InvoiceID != nil
}

// View is a session joined with its student's name for display.
type View struct {
	Session
	StudentName string `json:"student_name"`
}

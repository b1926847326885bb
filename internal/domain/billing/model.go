package billing

import (
	"fmt"
	"time"
)

// GroupingMode controls how billable sessions are grouped into invoices.
type GroupingMode string

const (
	// GroupByStudent produces one open invoice per student, merging new
	// amounts into it until it is paid.
	GroupByStudent GroupingMode = "by_student"
	// GroupByStudentAndMonth produces one invoice per student and
	// calendar month of activity, never merging.
	GroupByStudentAndMonth GroupingMode = "by_student_and_month"
)

// ParseGroupingMode validates a mode string.
func ParseGroupingMode(s string) (GroupingMode, error) {
	switch GroupingMode(s) {
	case GroupByStudent, GroupByStudentAndMonth:
		return GroupingMode(s), nil
	}
	return "", fmt.Errorf("%w: grouping mode %q", ErrInvalidInput, s)
}

// Invoice is an accumulating billing batch for one student. The total
// grows through merges until the invoice is marked paid, after which it is
// immutable.
type Invoice struct {
	ID          int64     `json:"id"`
	StudentID   int64     `json:"student_id"`
	TotalAmount int64     `json:"total_amount"`

	// CreatedAt is refreshed on every merge: it is the last-touched time,
	// used for sort order and merge-target selection.
	CreatedAt time.Time `json:"created_at"`

	IsPaid bool `json:"is_paid"`

	// Period is the "YYYY-MM" label in month-partitioned mode, empty
	// otherwise.
	Period string `json:"period,omitempty"`
}

// Summary is an invoice joined with its student's name for display.
type Summary struct {
	Invoice
	StudentName string `json:"student_name"`
}

// Line is one session on an invoice statement. Subtotals are truncated
// per line for display only; the invoice total is truncated once at the
// group level.
type Line struct {
	Date      string  `json:"date"`
	TimeRange string  `json:"time_range"`
	Hours     float64 `json:"hours"`
	Rate      int64   `json:"rate"`
	Subtotal  int64   `json:"subtotal"`
}

// Statement is the full detail view of one invoice.
type Statement struct {
	Invoice     Invoice `json:"invoice"`
	StudentName string  `json:"student_name"`
	Lines       []Line  `json:"lines"`
}

// Overview summarizes the billing position: what has been taught but not
// yet invoiced, and what is still ahead.
type Overview struct {
	PendingAmount    int64 `json:"pending_amount"`
	PendingSessions  int   `json:"pending_sessions"`
	UpcomingSessions int   `json:"upcoming_sessions"`
}

// Mismatch reports an invoice whose recorded total differs from the total
// recomputed over its sessions.
type Mismatch struct {
	InvoiceID  int64 `json:"invoice_id"`
	Recorded   int64 `json:"recorded"`
	Recomputed int64 `json:"recomputed"`
}

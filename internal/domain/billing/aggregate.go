package billing

import (
	"time"

	"github.com/jlchiang/tutorbase/internal/domain/session"
)

// AggregateInput is the full state an aggregation pass works on. Sessions
// are expected to be reconciled already.
type AggregateInput struct {
	Sessions []session.Session
	Invoices []Invoice
	Mode     GroupingMode
	Now      time.Time
}

// AggregateOutcome describes the writes an aggregation pass produced.
// Assignments maps invoice IDs to the sessions newly billed on them.
type AggregateOutcome struct {
	Created     []Invoice
	Merged      []Invoice
	Assignments map[int64][]int64
	Skipped     int
}

// BilledCount returns the number of sessions billed in this pass.
func (o AggregateOutcome) BilledCount() int {
	n := 0
	for _, ids := range o.Assignments {
		n += len(ids)
	}
	return n
}

type groupKey struct {
	studentID int64
	period    string
}

type group struct {
	key      groupKey
	sessions []session.Session
	amount   float64
}

// Aggregate converts completed, unbilled sessions into invoice writes. It
// is a pure in-memory computation: the caller persists the outcome.
//
// Billable means status is completed and no invoice is attached. Each
// group's fractional amounts are summed first and truncated to an integer
// once, at the group level. In by_student mode the group amount merges
// into the student's newest unpaid invoice (tie-break: highest ID),
// refreshing its CreatedAt; otherwise a new invoice is created. In
// by_student_and_month mode every (student, month) group gets a fresh
// invoice labeled with its period, regardless of open invoices.
//
// Sessions with a non-positive duration are skipped, not fatal. Running
// Aggregate again with no new billable sessions is a no-op.
func Aggregate(in AggregateInput) AggregateOutcome {
	out := AggregateOutcome{Assignments: make(map[int64][]int64)}

	var order []groupKey
	groups := make(map[groupKey]*group)
	for _, sess := range in.Sessions {
		if sess.Status != session.StatusCompleted || sess.Billed() {
			continue
		}
		if !sess.EndTime.After(sess.StartTime) {
			out.Skipped++
			continue
		}
		key := groupKey{studentID: sess.StudentID}
		if in.Mode == GroupByStudentAndMonth {
			key.period = sess.StartTime.Format("2006-01")
		}
		g, ok := groups[key]
		if !ok {
			g = &group{key: key}
			groups[key] = g
			order = append(order, key)
		}
		g.sessions = append(g.sessions, sess)
		g.amount += sess.Amount()
	}

	nextID := int64(1)
	for _, inv := range in.Invoices {
		if inv.ID >= nextID {
			nextID = inv.ID + 1
		}
	}

	for _, key := range order {
		g := groups[key]
		amount := int64(g.amount)

		var invoiceID int64
		if in.Mode == GroupByStudent {
			if target := mergeTarget(in.Invoices, key.studentID); target != nil {
				merged := *target
				merged.TotalAmount += amount
				merged.CreatedAt = in.Now
				out.Merged = append(out.Merged, merged)
				invoiceID = merged.ID
			}
		}
		if invoiceID == 0 {
			created := Invoice{
				ID:          nextID,
				StudentID:   key.studentID,
				TotalAmount: amount,
				CreatedAt:   in.Now,
				Period:      key.period,
			}
			nextID++
			out.Created = append(out.Created, created)
			invoiceID = created.ID
		}

		for _, sess := range g.sessions {
			out.Assignments[invoiceID] = append(out.Assignments[invoiceID], sess.ID)
		}
	}

	return out
}

// mergeTarget picks the student's newest unpaid invoice, breaking
// CreatedAt ties by highest ID. Paid invoices are never candidates.
func mergeTarget(invoices []Invoice, studentID int64) *Invoice {
	var target *Invoice
	for i := range invoices {
		inv := &invoices[i]
		if inv.StudentID != studentID || inv.IsPaid {
			continue
		}
		if target == nil ||
			inv.CreatedAt.After(target.CreatedAt) ||
			(inv.CreatedAt.Equal(target.CreatedAt) && inv.ID > target.ID) {
			target = inv
		}
	}
	return target
}

package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jlchiang/tutorbase/internal/domain/session"
	"github.com/jlchiang/tutorbase/internal/repository"
)

const unknownStudentName = "unknown student"

// Service handles invoice aggregation, payment, and statements.
type Service struct {
	invoices   InvoiceRepository
	sessions   SessionRepository
	students   StudentRepository
	reconciler Reconciler
	logger     *slog.Logger
}

// NewService creates a new billing service.
func NewService(
	invoices InvoiceRepository,
	sessions SessionRepository,
	students StudentRepository,
	reconciler Reconciler,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		invoices:   invoices,
		sessions:   sessions,
		students:   students,
		reconciler: reconciler,
		logger:     logger,
	}
}

// RunResult summarizes one billing pass.
type RunResult struct {
	Corrected       int       `json:"corrected_sessions"`
	BilledSessions  int       `json:"billed_sessions"`
	SkippedSessions int       `json:"skipped_sessions"`
	Created         []Invoice `json:"created_invoices"`
	Merged          []Invoice `json:"merged_invoices"`
}

// RunBilling reconciles session statuses, then aggregates completed,
// unbilled sessions into invoices and persists the outcome.
func (s *Service) RunBilling(ctx context.Context, mode GroupingMode, now time.Time) (*RunResult, error) {
	corrected, err := s.reconciler.Reconcile(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("reconciling sessions: %w", err)
	}

	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	invoices, err := s.invoices.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}

	out := Aggregate(AggregateInput{
		Sessions: sessions,
		Invoices: invoices,
		Mode:     mode,
		Now:      now,
	})

	for i := range out.Created {
		if err := s.invoices.Create(ctx, &out.Created[i]); err != nil {
			return nil, fmt.Errorf("creating invoice: %w", err)
		}
	}
	for i := range out.Merged {
		if err := s.invoices.Update(ctx, &out.Merged[i]); err != nil {
			return nil, fmt.Errorf("updating invoice %d: %w", out.Merged[i].ID, err)
		}
	}
	for invoiceID, sessionIDs := range out.Assignments {
		if err := s.sessions.AssignInvoice(ctx, sessionIDs, invoiceID); err != nil {
			return nil, fmt.Errorf("assigning sessions to invoice %d: %w", invoiceID, err)
		}
	}

	s.logger.Info("billing pass complete",
		"mode", mode,
		"billed", out.BilledCount(),
		"created", len(out.Created),
		"merged", len(out.Merged),
		"skipped", out.Skipped,
	)

	return &RunResult{
		Corrected:       corrected,
		BilledSessions:  out.BilledCount(),
		SkippedSessions: out.Skipped,
		Created:         out.Created,
		Merged:          out.Merged,
	}, nil
}

// MarkPaid marks an invoice paid. Paid invoices never again merge; marking
// a paid invoice again is a no-op.
func (s *Service) MarkPaid(ctx context.Context, id int64) error {
	inv, err := s.invoices.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvoiceNotFound
		}
		return fmt.Errorf("loading invoice: %w", err)
	}
	if inv.IsPaid {
		return nil
	}
	inv.IsPaid = true
	if err := s.invoices.Update(ctx, inv); err != nil {
		return fmt.Errorf("updating invoice: %w", err)
	}
	return nil
}

// List returns all invoices joined with student names, newest first.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	invoices, err := s.invoices.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	names, err := s.studentNames(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(invoices))
	for _, inv := range invoices {
		summaries = append(summaries, Summary{Invoice: inv, StudentName: names.lookup(inv.StudentID)})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].ID > summaries[j].ID
		}
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

// Statement returns the detail lines for one invoice.
func (s *Service) Statement(ctx context.Context, id int64) (*Statement, error) {
	inv, err := s.invoices.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("loading invoice: %w", err)
	}

	sessions, err := s.sessions.ListByInvoice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing invoice sessions: %w", err)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartTime.Before(sessions[j].StartTime)
	})

	names, err := s.studentNames(ctx)
	if err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(sessions))
	for _, sess := range sessions {
		lines = append(lines, Line{
			Date:      sess.StartTime.Format("2006/01/02"),
			TimeRange: sess.StartTime.Format("15:04") + "~" + sess.EndTime.Format("15:04"),
			Hours:     sess.Hours(),
			Rate:      sess.ActualRate,
			Subtotal:  int64(sess.Amount()),
		})
	}

	return &Statement{
		Invoice:     *inv,
		StudentName: names.lookup(inv.StudentID),
		Lines:       lines,
	}, nil
}

// Overview returns the dashboard figures: billable amount and count, and
// the number of upcoming scheduled sessions.
func (s *Service) Overview(ctx context.Context, now time.Time) (*Overview, error) {
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	var pending float64
	var overview Overview
	for _, sess := range sessions {
		switch {
		case sess.Status == session.StatusCompleted && !sess.Billed():
			if !sess.EndTime.After(sess.StartTime) {
				continue
			}
			pending += sess.Amount()
			overview.PendingSessions++
		case sess.Status == session.StatusScheduled:
			overview.UpcomingSessions++
		}
	}
	overview.PendingAmount = int64(pending)
	return &overview, nil
}

// CheckTotals recomputes every invoice total from the sessions referencing
// it and reports invoices that drifted. Merged invoices truncate once per
// billing pass, so a recomputed total can differ by a few units without
// indicating data loss; callers decide what drift is acceptable.
func (s *Service) CheckTotals(ctx context.Context) ([]Mismatch, error) {
	invoices, err := s.invoices.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}

	var mismatches []Mismatch
	for _, inv := range invoices {
		sessions, err := s.sessions.ListByInvoice(ctx, inv.ID)
		if err != nil {
			return nil, fmt.Errorf("listing invoice sessions: %w", err)
		}
		var sum float64
		for _, sess := range sessions {
			sum += sess.Amount()
		}
		recomputed := int64(sum)
		if recomputed != inv.TotalAmount {
			mismatches = append(mismatches, Mismatch{
				InvoiceID:  inv.ID,
				Recorded:   inv.TotalAmount,
				Recomputed: recomputed,
			})
		}
	}
	return mismatches, nil
}

type nameIndex map[int64]string

func (n nameIndex) lookup(studentID int64) string {
	if name, ok := n[studentID]; ok {
		return name
	}
	return unknownStudentName
}

func (s *Service) studentNames(ctx context.Context) (nameIndex, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing students: %w", err)
	}
	names := make(nameIndex, len(students))
	for _, stu := range students {
		names[stu.ID] = stu.Name
	}
	return names, nil
}

package billing

import (
	"context"
	"time"

	"github.com/jlchiang/tutorbase/internal/domain/session"
	"github.com/jlchiang/tutorbase/internal/domain/student"
)

// InvoiceRepository provides persistence for invoices.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *Invoice) error
	Get(ctx context.Context, id int64) (*Invoice, error)
	List(ctx context.Context) ([]Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
}

// SessionRepository provides the session access billing needs.
type SessionRepository interface {
	List(ctx context.Context) ([]session.Session, error)
	ListByInvoice(ctx context.Context, invoiceID int64) ([]session.Session, error)
	AssignInvoice(ctx context.Context, sessionIDs []int64, invoiceID int64) error
}

// StudentRepository provides names for statements and summaries.
type StudentRepository interface {
	List(ctx context.Context) ([]student.Student, error)
}

// Reconciler corrects session statuses before a billing pass.
type Reconciler interface {
	Reconcile(ctx context.Context, now time.Time) (int, error)
}

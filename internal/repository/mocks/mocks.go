// Package mocks provides testify mocks for the repository and capability
// interfaces consumed by the domain services.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/jlchiang/tutorbase/internal/calendar"
	"github.com/jlchiang/tutorbase/internal/domain/billing"
	"github.com/jlchiang/tutorbase/internal/domain/session"
	"github.com/jlchiang/tutorbase/internal/domain/student"
)

// StudentRepository is a mock for student.Repository.
type StudentRepository struct {
	mock.Mock
}

func (m *StudentRepository) Create(ctx context.Context, stu *student.Student) error {
	args := m.Called(ctx, stu)
	return args.Error(0)
}

func (m *StudentRepository) Get(ctx context.Context, id int64) (*student.Student, error) {
	args := m.Called(ctx, id)
	if stu, ok := args.Get(0).(*student.Student); ok {
		return stu, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StudentRepository) List(ctx context.Context) ([]student.Student, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]student.Student); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StudentRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// SessionRepository is a mock for session.Repository and
// billing.SessionRepository.
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Create(ctx context.Context, sess *session.Session) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *SessionRepository) Get(ctx context.Context, id int64) (*session.Session, error) {
	args := m.Called(ctx, id)
	if sess, ok := args.Get(0).(*session.Session); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) List(ctx context.Context) ([]session.Session, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]session.Session); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) ListByInvoice(ctx context.Context, invoiceID int64) ([]session.Session, error) {
	args := m.Called(ctx, invoiceID)
	if list, ok := args.Get(0).([]session.Session); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) Update(ctx context.Context, sess *session.Session) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *SessionRepository) AssignInvoice(ctx context.Context, sessionIDs []int64, invoiceID int64) error {
	args := m.Called(ctx, sessionIDs, invoiceID)
	return args.Error(0)
}

func (m *SessionRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// InvoiceRepository is a mock for billing.InvoiceRepository.
type InvoiceRepository struct {
	mock.Mock
}

func (m *InvoiceRepository) Create(ctx context.Context, inv *billing.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *InvoiceRepository) Get(ctx context.Context, id int64) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if inv, ok := args.Get(0).(*billing.Invoice); ok {
		return inv, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InvoiceRepository) List(ctx context.Context) ([]billing.Invoice, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]billing.Invoice); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InvoiceRepository) Update(ctx context.Context, inv *billing.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

// CalendarMirror is a mock for calendar.Mirror.
type CalendarMirror struct {
	mock.Mock
}

func (m *CalendarMirror) CreateEvent(ctx context.Context, ev calendar.Event) (string, error) {
	args := m.Called(ctx, ev)
	return args.String(0), args.Error(1)
}

func (m *CalendarMirror) UpdateEvent(ctx context.Context, ref string, ev calendar.Event) error {
	args := m.Called(ctx, ref, ev)
	return args.Error(0)
}

func (m *CalendarMirror) DeleteEvent(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

// Reconciler is a mock for billing.Reconciler.
type Reconciler struct {
	mock.Mock
}

func (m *Reconciler) Reconcile(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

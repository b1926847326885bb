package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jlchiang/tutorbase/internal/domain/session"
	"github.com/jlchiang/tutorbase/internal/repository"
)

// SessionRepository implements session persistence for SQLite
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a session, allocating an ID when none is set
func (r *SessionRepository) Create(ctx context.Context, sess *session.Session) error {
	if sess.ID == 0 {
		id, err := r.db.nextID("sessions")
		if err != nil {
			return err
		}
		sess.ID = id
	}

	query := `
		INSERT INTO sessions (
			id, student_id, start_time, end_time, status,
			actual_rate, invoice_id, calendar_ref, progress
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		sess.ID,
		sess.StudentID,
		sess.StartTime,
		sess.EndTime,
		sess.Status,
		sess.ActualRate,
		nullableID(sess.InvoiceID),
		sess.CalendarRef,
		sess.Progress,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(ctx context.Context, id int64) (*session.Session, error) {
	row := r.db.QueryRowContext(ctx, selectSessions+" WHERE id = ?", id)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return sess, nil
}

// List returns all sessions ordered by start time, newest first
func (r *SessionRepository) List(ctx context.Context) ([]session.Session, error) {
	return r.list(ctx, selectSessions+" ORDER BY start_time DESC")
}

// ListByInvoice returns the sessions billed on an invoice
func (r *SessionRepository) ListByInvoice(ctx context.Context, invoiceID int64) ([]session.Session, error) {
	return r.list(ctx, selectSessions+" WHERE invoice_id = ? ORDER BY start_time", invoiceID)
}

// Update rewrites a session
func (r *SessionRepository) Update(ctx context.Context, sess *session.Session) error {
	query := `
		UPDATE sessions
		SET student_id = ?, start_time = ?, end_time = ?, status = ?,
		    actual_rate = ?, invoice_id = ?, calendar_ref = ?, progress = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		sess.StudentID,
		sess.StartTime,
		sess.EndTime,
		sess.Status,
		sess.ActualRate,
		nullableID(sess.InvoiceID),
		sess.CalendarRef,
		sess.Progress,
		sess.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AssignInvoice attaches a batch of sessions to an invoice
func (r *SessionRepository) AssignInvoice(ctx context.Context, sessionIDs []int64, invoiceID int64) error {
	if len(sessionIDs) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(sessionIDs)), ", ")
	query := fmt.Sprintf("UPDATE sessions SET invoice_id = ? WHERE id IN (%s)", placeholders)

	args := make([]any, 0, len(sessionIDs)+1)
	args = append(args, invoiceID)
	for _, id := range sessionIDs {
		args = append(args, id)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to assign invoice: %w", err)
	}
	return nil
}

// Delete removes a session
func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

const selectSessions = `
	SELECT id, student_id, start_time, end_time, status,
	       actual_rate, invoice_id, calendar_ref, progress
	FROM sessions`

func (r *SessionRepository) list(ctx context.Context, query string, args ...any) ([]session.Session, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []session.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanSession normalizes legacy rows on load: a NULL or zero invoice_id
// both mean "unbilled" and come back as a nil InvoiceID.
func scanSession(row rowScanner) (*session.Session, error) {
	var sess session.Session
	var invoiceID sql.NullInt64
	var calendarRef sql.NullString
	var progress sql.NullString
	if err := row.Scan(
		&sess.ID,
		&sess.StudentID,
		&sess.StartTime,
		&sess.EndTime,
		&sess.Status,
		&sess.ActualRate,
		&invoiceID,
		&calendarRef,
		&progress,
	); err != nil {
		return nil, err
	}

	if invoiceID.Valid && invoiceID.Int64 != 0 {
		sess.InvoiceID = &invoiceID.Int64
	}
	sess.CalendarRef = calendarRef.String
	sess.Progress = progress.String
	return &sess, nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

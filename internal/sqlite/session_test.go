package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jlchiang/tutorbase/internal/domain/session"
	"github.com/jlchiang/tutorbase/internal/repository"
)

func testSession(studentID int64, start time.Time) *session.Session {
	return &session.Session{
		StudentID:  studentID,
		StartTime:  start,
		EndTime:    start.Add(90 * time.Minute),
		Status:     session.StatusScheduled,
		ActualRate: 500,
	}
}

func TestSessionRepository_CreateAndGet(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t))
	ctx := context.Background()

	start := time.Date(2026, 2, 10, 14, 0, 0, 0, time.UTC)
	sess := testSession(1, start)
	sess.CalendarRef = "ev-1"
	sess.Progress = "chapter 4"
	require.NoError(t, repo.Create(ctx, sess))
	require.Equal(t, int64(1), sess.ID)

	loaded, err := repo.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), loaded.StudentID)
	require.Equal(t, session.StatusScheduled, loaded.Status)
	require.Equal(t, int64(500), loaded.ActualRate)
	require.Equal(t, "ev-1", loaded.CalendarRef)
	require.Equal(t, "chapter 4", loaded.Progress)
	require.Nil(t, loaded.InvoiceID)
	require.WithinDuration(t, start, loaded.StartTime, time.Second)
}

func TestSessionRepository_ZeroInvoiceIDReadsAsUnbilled(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	// Legacy rows may carry invoice_id = 0 instead of NULL; both must read
	// back as unbilled.
	_, err := db.Exec(`
		INSERT INTO sessions (id, student_id, start_time, end_time, status, actual_rate, invoice_id, calendar_ref, progress)
		VALUES (1, 1, '2026-02-10 14:00:00+00:00', '2026-02-10 15:00:00+00:00', 'completed', 500, 0, '', '')
	`)
	require.NoError(t, err)

	loaded, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	require.Nil(t, loaded.InvoiceID)
	require.False(t, loaded.Billed())
}

func TestSessionRepository_AssignInvoice(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t))
	ctx := context.Background()

	start := time.Date(2026, 2, 10, 14, 0, 0, 0, time.UTC)
	first := testSession(1, start)
	second := testSession(1, start.Add(24*time.Hour))
	third := testSession(1, start.Add(48*time.Hour))
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, third))

	require.NoError(t, repo.AssignInvoice(ctx, []int64{first.ID, second.ID}, 9))

	billed, err := repo.ListByInvoice(ctx, 9)
	require.NoError(t, err)
	require.Len(t, billed, 2)
	// Chronological order for statement rendering.
	require.Equal(t, first.ID, billed[0].ID)
	require.Equal(t, second.ID, billed[1].ID)
	require.NotNil(t, billed[0].InvoiceID)
	require.Equal(t, int64(9), *billed[0].InvoiceID)

	untouched, err := repo.Get(ctx, third.ID)
	require.NoError(t, err)
	require.Nil(t, untouched.InvoiceID)
}

func TestSessionRepository_AssignInvoice_Empty(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t))
	require.NoError(t, repo.AssignInvoice(context.Background(), nil, 9))
}

func TestSessionRepository_List_NewestFirst(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t))
	ctx := context.Background()

	start := time.Date(2026, 2, 10, 14, 0, 0, 0, time.UTC)
	older := testSession(1, start)
	newer := testSession(1, start.Add(24*time.Hour))
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	sessions, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.Equal(t, newer.ID, sessions[0].ID)
	require.Equal(t, older.ID, sessions[1].ID)
}

func TestSessionRepository_Update(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t))
	ctx := context.Background()

	sess := testSession(1, time.Date(2026, 2, 10, 14, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Create(ctx, sess))

	sess.Status = session.StatusCompleted
	sess.Progress = "done"
	require.NoError(t, repo.Update(ctx, sess))

	loaded, err := repo.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.Equal(t, session.StatusCompleted, loaded.Status)
	require.Equal(t, "done", loaded.Progress)
}

func TestSessionRepository_UpdateNotFound(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t))

	sess := testSession(1, time.Now())
	sess.ID = 404
	require.ErrorIs(t, repo.Update(context.Background(), sess), repository.ErrNotFound)
}

func TestSessionRepository_Delete(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t))
	ctx := context.Background()

	sess := testSession(1, time.Date(2026, 2, 10, 14, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Create(ctx, sess))

	require.NoError(t, repo.Delete(ctx, sess.ID))
	_, err := repo.Get(ctx, sess.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.ErrorIs(t, repo.Delete(ctx, sess.ID), repository.ErrNotFound)
}

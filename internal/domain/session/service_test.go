package session_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jlchiang/tutorbase/internal/calendar"
	"github.com/jlchiang/tutorbase/internal/domain/session"
	"github.com/jlchiang/tutorbase/internal/domain/student"
	"github.com/jlchiang/tutorbase/internal/repository"
	"github.com/jlchiang/tutorbase/internal/repository/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_Schedule_SnapshotsRateAndMirrors(t *testing.T) {
	sessions := new(mocks.SessionRepository)
	students := new(mocks.StudentRepository)
	mirror := new(mocks.CalendarMirror)
	svc := session.NewService(sessions, students, mirror, discardLogger())

	start := time.Now().Add(24 * time.Hour)
	end := start.Add(90 * time.Minute)

	students.On("Get", mock.Anything, int64(1)).
		Return(&student.Student{ID: 1, Name: "Amy", DefaultRate: 500}, nil)
	mirror.On("CreateEvent", mock.Anything, calendar.Event{
		Title: "Tutoring: Amy",
		Start: start,
		End:   end,
	}).Return("ev-123", nil)
	sessions.On("Create", mock.Anything, mock.MatchedBy(func(sess *session.Session) bool {
		return sess.StudentID == 1 &&
			sess.ActualRate == 500 &&
			sess.Status == session.StatusScheduled &&
			sess.CalendarRef == "ev-123"
	})).Return(nil)

	sess, err := svc.Schedule(context.Background(), session.ScheduleRequest{
		StudentID: 1,
		Start:     start,
		End:       end,
	})
	require.NoError(t, err)
	require.Equal(t, int64(500), sess.ActualRate)
	require.Equal(t, "ev-123", sess.CalendarRef)
	sessions.AssertExpectations(t)
	mirror.AssertExpectations(t)
}

func TestService_Schedule_PastStartIsCompleted(t *testing.T) {
	sessions := new(mocks.SessionRepository)
	students := new(mocks.StudentRepository)
	svc := session.NewService(sessions, students, nil, discardLogger())

	start := time.Now().Add(-3 * time.Hour)

	students.On("Get", mock.Anything, int64(1)).
		Return(&student.Student{ID: 1, Name: "Amy", DefaultRate: 500}, nil)
	sessions.On("Create", mock.Anything, mock.MatchedBy(func(sess *session.Session) bool {
		return sess.Status == session.StatusCompleted
	})).Return(nil)

	_, err := svc.Schedule(context.Background(), session.ScheduleRequest{
		StudentID: 1,
		Start:     start,
		End:       start.Add(time.Hour),
	})
	require.NoError(t, err)
	sessions.AssertExpectations(t)
}

func TestService_Schedule_MirrorFailureDoesNotBlock(t *testing.T) {
	sessions := new(mocks.SessionRepository)
	students := new(mocks.StudentRepository)
	mirror := new(mocks.CalendarMirror)
	svc := session.NewService(sessions, students, mirror, discardLogger())

	start := time.Now().Add(24 * time.Hour)

	students.On("Get", mock.Anything, int64(1)).
		Return(&student.Student{ID: 1, Name: "Amy", DefaultRate: 500}, nil)
	mirror.On("CreateEvent", mock.Anything, mock.Anything).
		Return("", errors.New("calendar unreachable"))
	sessions.On("Create", mock.Anything, mock.MatchedBy(func(sess *session.Session) bool {
		return sess.CalendarRef == ""
	})).Return(nil)

	_, err := svc.Schedule(context.Background(), session.ScheduleRequest{
		StudentID: 1,
		Start:     start,
		End:       start.Add(time.Hour),
	})
	require.NoError(t, err)
	sessions.AssertExpectations(t)
}

func TestService_Schedule_InvalidTimeRange(t *testing.T) {
	svc := session.NewService(new(mocks.SessionRepository), new(mocks.StudentRepository), nil, discardLogger())

	start := time.Now().Add(time.Hour)
	_, err := svc.Schedule(context.Background(), session.ScheduleRequest{
		StudentID: 1,
		Start:     start,
		End:       start,
	})
	require.ErrorIs(t, err, session.ErrInvalidTimeRange)
}

func TestService_Schedule_UnknownStudent(t *testing.T) {
	sessions := new(mocks.SessionRepository)
	students := new(mocks.StudentRepository)
	svc := session.NewService(sessions, students, nil, discardLogger())

	students.On("Get", mock.Anything, int64(99)).Return(nil, repository.ErrNotFound)

	start := time.Now().Add(time.Hour)
	_, err := svc.Schedule(context.Background(), session.ScheduleRequest{
		StudentID: 99,
		Start:     start,
		End:       start.Add(time.Hour),
	})
	require.ErrorIs(t, err, session.ErrInvalidInput)
}

func TestService_Edit_RederivesStatusAndRate(t *testing.T) {
	sessions := new(mocks.SessionRepository)
	students := new(mocks.StudentRepository)
	mirror := new(mocks.CalendarMirror)
	svc := session.NewService(sessions, students, mirror, discardLogger())

	// Editing a future scheduled session into the past completes it and
	// picks up the student's current rate.
	start := time.Now().Add(-48 * time.Hour)
	end := start.Add(time.Hour)

	sessions.On("Get", mock.Anything, int64(5)).Return(&session.Session{
		ID:          5,
		StudentID:   1,
		StartTime:   time.Now().Add(24 * time.Hour),
		EndTime:     time.Now().Add(25 * time.Hour),
		Status:      session.StatusScheduled,
		ActualRate:  500,
		CalendarRef: "ev-5",
	}, nil)
	students.On("Get", mock.Anything, int64(1)).
		Return(&student.Student{ID: 1, Name: "Amy", DefaultRate: 600}, nil)
	mirror.On("UpdateEvent", mock.Anything, "ev-5", mock.Anything).Return(nil)
	sessions.On("Update", mock.Anything, mock.MatchedBy(func(sess *session.Session) bool {
		return sess.Status == session.StatusCompleted && sess.ActualRate == 600
	})).Return(nil)

	sess, err := svc.Edit(context.Background(), session.EditRequest{
		ID:    5,
		Start: start,
		End:   end,
	})
	require.NoError(t, err)
	require.Equal(t, session.StatusCompleted, sess.Status)
	require.Equal(t, int64(600), sess.ActualRate)
	mirror.AssertExpectations(t)
	sessions.AssertExpectations(t)
}

func TestService_Delete_RemovesMirroredEvent(t *testing.T) {
	sessions := new(mocks.SessionRepository)
	students := new(mocks.StudentRepository)
	mirror := new(mocks.CalendarMirror)
	svc := session.NewService(sessions, students, mirror, discardLogger())

	sessions.On("Get", mock.Anything, int64(5)).Return(&session.Session{
		ID:          5,
		CalendarRef: "ev-5",
	}, nil)
	mirror.On("DeleteEvent", mock.Anything, "ev-5").Return(nil)
	sessions.On("Delete", mock.Anything, int64(5)).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), 5))
	mirror.AssertExpectations(t)
	sessions.AssertExpectations(t)
}

func TestService_Delete_NotFound(t *testing.T) {
	sessions := new(mocks.SessionRepository)
	svc := session.NewService(sessions, new(mocks.StudentRepository), nil, discardLogger())

	sessions.On("Get", mock.Anything, int64(404)).Return(nil, repository.ErrNotFound)

	require.ErrorIs(t, svc.Delete(context.Background(), 404), session.ErrSessionNotFound)
}

func TestService_List_UnknownStudentFallback(t *testing.T) {
	sessions := new(mocks.SessionRepository)
	students := new(mocks.StudentRepository)
	svc := session.NewService(sessions, students, nil, discardLogger())

	sessions.On("List", mock.Anything).Return([]session.Session{
		{ID: 1, StudentID: 1},
		{ID: 2, StudentID: 42},
	}, nil)
	students.On("List", mock.Anything).Return([]student.Student{
		{ID: 1, Name: "Amy"},
	}, nil)

	views, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Equal(t, "Amy", views[0].StudentName)
	require.Equal(t, "unknown student", views[1].StudentName)
}

func TestService_Reconcile_PersistsOnlyChangedRows(t *testing.T) {
	sessions := new(mocks.SessionRepository)
	svc := session.NewService(sessions, new(mocks.StudentRepository), nil, discardLogger())

	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	sessions.On("List", mock.Anything).Return([]session.Session{
		{ID: 1, Status: session.StatusScheduled, EndTime: now.Add(-time.Hour)},
		{ID: 2, Status: session.StatusScheduled, EndTime: now.Add(time.Hour)},
		{ID: 3, Status: session.StatusCompleted, EndTime: now.Add(-time.Hour)},
	}, nil)
	sessions.On("Update", mock.Anything, mock.MatchedBy(func(sess *session.Session) bool {
		return sess.ID == 1 && sess.Status == session.StatusCompleted
	})).Return(nil)

	corrected, err := svc.Reconcile(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, 1, corrected)
	sessions.AssertExpectations(t)
	sessions.AssertNumberOfCalls(t, "Update", 1)
}

func TestService_RepairCalendar(t *testing.T) {
	sessions := new(mocks.SessionRepository)
	students := new(mocks.StudentRepository)
	mirror := new(mocks.CalendarMirror)
	svc := session.NewService(sessions, students, mirror, discardLogger())

	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	sessions.On("List", mock.Anything).Return([]session.Session{
		// Future, no ref: repaired.
		{ID: 1, StudentID: 1, StartTime: now.Add(24 * time.Hour), EndTime: now.Add(25 * time.Hour)},
		// Future, already mirrored: skipped.
		{ID: 2, StudentID: 1, StartTime: now.Add(24 * time.Hour), EndTime: now.Add(25 * time.Hour), CalendarRef: "ev-2"},
		// Past: skipped.
		{ID: 3, StudentID: 1, StartTime: now.Add(-24 * time.Hour), EndTime: now.Add(-23 * time.Hour)},
	}, nil)
	students.On("List", mock.Anything).Return([]student.Student{{ID: 1, Name: "Amy"}}, nil)
	mirror.On("CreateEvent", mock.Anything, mock.Anything).Return("ev-1", nil).Once()
	sessions.On("Update", mock.Anything, mock.MatchedBy(func(sess *session.Session) bool {
		return sess.ID == 1 && sess.CalendarRef == "ev-1"
	})).Return(nil)

	repaired, err := svc.RepairCalendar(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, 1, repaired)
	mirror.AssertExpectations(t)
	sessions.AssertExpectations(t)
}

func TestService_RepairCalendar_NoMirror(t *testing.T) {
	svc := session.NewService(new(mocks.SessionRepository), new(mocks.StudentRepository), nil, discardLogger())

	repaired, err := svc.RepairCalendar(context.Background(), time.Now())
	require.NoError(t, err)
	require.Zero(t, repaired)
}

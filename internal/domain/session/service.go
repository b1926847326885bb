package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jlchiang/tutorbase/internal/calendar"
	"github.com/jlchiang/tutorbase/internal/repository"
)

const unknownStudentName = "unknown student"

// Service handles session scheduling and lifecycle reconciliation.
type Service struct {
	sessions Repository
	students StudentRepository
	mirror   calendar.Mirror
	logger   *slog.Logger
}

// NewService creates a new session service. The mirror may be nil, in
// which case sessions are not mirrored to any calendar.
func NewService(sessions Repository, students StudentRepository, mirror calendar.Mirror, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sessions: sessions,
		students: students,
		mirror:   mirror,
		logger:   logger,
	}
}

// ScheduleRequest describes a new session.
type ScheduleRequest struct {
	StudentID int64
	Start     time.Time
	End       time.Time
	Progress  string
}

// EditRequest describes changes to an existing session.
type EditRequest struct {
	ID        int64
	StudentID int64
	Start     time.Time
	End       time.Time
	Progress  string
}

// Schedule creates a session. The status is derived from the start time,
// the rate is snapshotted from the student's default, and the session is
// mirrored to the calendar best-effort.
func (s *Service) Schedule(ctx context.Context, req ScheduleRequest) (*Session, error) {
	if !req.End.After(req.Start) {
		return nil, ErrInvalidTimeRange
	}

	stu, err := s.students.Get(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: student %d", ErrInvalidInput, req.StudentID)
		}
		return nil, fmt.Errorf("loading student: %w", err)
	}

	sess := &Session{
		StudentID:  stu.ID,
		StartTime:  req.Start,
		EndTime:    req.End,
		Status:     InitialStatus(req.Start, time.Now()),
		ActualRate: stu.DefaultRate,
		Progress:   req.Progress,
	}
	sess.CalendarRef = s.mirrorCreate(ctx, stu.Name, sess)

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return sess, nil
}

// Edit updates a session. The status and rate are re-derived; editing a
// session into the past completes it.
func (s *Service) Edit(ctx context.Context, req EditRequest) (*Session, error) {
	if !req.End.After(req.Start) {
		return nil, ErrInvalidTimeRange
	}

	sess, err := s.sessions.Get(ctx, req.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}

	studentID := req.StudentID
	if studentID == 0 {
		studentID = sess.StudentID
	}
	stu, err := s.students.Get(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: student %d", ErrInvalidInput, studentID)
		}
		return nil, fmt.Errorf("loading student: %w", err)
	}

	sess.StudentID = stu.ID
	sess.StartTime = req.Start
	sess.EndTime = req.End
	sess.Status = InitialStatus(req.Start, time.Now())
	sess.ActualRate = stu.DefaultRate
	sess.Progress = req.Progress

	if sess.CalendarRef != "" && s.mirror != nil {
		ev := calendar.Event{Title: eventTitle(stu.Name), Start: sess.StartTime, End: sess.EndTime}
		if err := s.mirror.UpdateEvent(ctx, sess.CalendarRef, ev); err != nil {
			s.logger.Warn("calendar update failed", "session_id", sess.ID, "error", err)
		}
	}

	if err := s.sessions.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("updating session: %w", err)
	}
	return sess, nil
}

// Delete removes a session, deleting its mirrored event best-effort.
func (s *Service) Delete(ctx context.Context, id int64) error {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("loading session: %w", err)
	}

	if sess.CalendarRef != "" && s.mirror != nil {
		if err := s.mirror.DeleteEvent(ctx, sess.CalendarRef); err != nil {
			s.logger.Warn("calendar delete failed", "session_id", id, "error", err)
		}
	}

	if err := s.sessions.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return sess, nil
}

// List returns all sessions joined with student names. Sessions whose
// student was deleted display as "unknown student".
func (s *Service) List(ctx context.Context) ([]View, error) {
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing students: %w", err)
	}

	names := make(map[int64]string, len(students))
	for _, stu := range students {
		names[stu.ID] = stu.Name
	}

	views := make([]View, 0, len(sessions))
	for _, sess := range sessions {
		name, ok := names[sess.StudentID]
		if !ok {
			name = unknownStudentName
		}
		views = append(views, View{Session: sess, StudentName: name})
	}
	return views, nil
}

// Reconcile applies ResolveStatus to every session and persists the rows
// that changed. It returns the number of corrected sessions.
func (s *Service) Reconcile(ctx context.Context, now time.Time) (int, error) {
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing sessions: %w", err)
	}

	corrected := 0
	for i := range sessions {
		sess := sessions[i]
		resolved := ResolveStatus(sess.Status, sess.EndTime, now)
		if resolved == sess.Status {
			continue
		}
		sess.Status = resolved
		if err := s.sessions.Update(ctx, &sess); err != nil {
			return corrected, fmt.Errorf("updating session %d: %w", sess.ID, err)
		}
		corrected++
	}
	if corrected > 0 {
		s.logger.Info("reconciled session statuses", "corrected", corrected)
	}
	return corrected, nil
}

// RepairCalendar creates mirrored events for future sessions that have
// none and writes the refs back. It returns the number of repaired
// sessions; individual failures are logged and skipped.
func (s *Service) RepairCalendar(ctx context.Context, now time.Time) (int, error) {
	if s.mirror == nil {
		return 0, nil
	}

	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing sessions: %w", err)
	}
	students, err := s.students.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing students: %w", err)
	}
	names := make(map[int64]string, len(students))
	for _, stu := range students {
		names[stu.ID] = stu.Name
	}

	repaired := 0
	for i := range sessions {
		sess := sessions[i]
		if sess.CalendarRef != "" || !sess.StartTime.After(now) {
			continue
		}
		name, ok := names[sess.StudentID]
		if !ok {
			name = unknownStudentName
		}
		ev := calendar.Event{Title: eventTitle(name), Start: sess.StartTime, End: sess.EndTime}
		ref, err := s.mirror.CreateEvent(ctx, ev)
		if err != nil || ref == "" {
			s.logger.Warn("calendar repair failed", "session_id", sess.ID, "error", err)
			continue
		}
		sess.CalendarRef = ref
		if err := s.sessions.Update(ctx, &sess); err != nil {
			return repaired, fmt.Errorf("updating session %d: %w", sess.ID, err)
		}
		repaired++
	}
	return repaired, nil
}

func (s *Service) mirrorCreate(ctx context.Context, studentName string, sess *Session) string {
	if s.mirror == nil {
		return ""
	}
	ev := calendar.Event{Title: eventTitle(studentName), Start: sess.StartTime, End: sess.EndTime}
	ref, err := s.mirror.CreateEvent(ctx, ev)
	if err != nil {
		s.logger.Warn("calendar create failed", "student_id", sess.StudentID, "error", err)
		return ""
	}
	return ref
}

func eventTitle(studentName string) string {
	return fmt.Sprintf("Tutoring: %s", studentName)
}

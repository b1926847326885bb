package student

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jlchiang/tutorbase/internal/repository"
)

const defaultColor = "#3498DB"

// Service handles roster operations.
type Service struct {
	students Repository
	logger   *slog.Logger
}

// NewService creates a new student service.
func NewService(students Repository, logger *slog.Logger) *Service {
	return &Service{students: students, logger: logger}
}

// AddRequest describes a new roster entry.
type AddRequest struct {
	Name          string
	ParentContact string
	DefaultRate   int64
	Color         string
}

// Add creates a student.
func (s *Service) Add(ctx context.Context, req AddRequest) (*Student, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrInvalidInput
	}
	if req.DefaultRate < 0 {
		return nil, ErrInvalidInput
	}

	color := req.Color
	if color == "" {
		color = defaultColor
	}

	stu := &Student{
		Name:          strings.TrimSpace(req.Name),
		ParentContact: req.ParentContact,
		DefaultRate:   req.DefaultRate,
		Color:         color,
		CreatedAt:     time.Now(),
	}
	if err := s.students.Create(ctx, stu); err != nil {
		return nil, fmt.Errorf("creating student: %w", err)
	}
	return stu, nil
}

// Get retrieves a student by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Student, error) {
	stu, err := s.students.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("loading student: %w", err)
	}
	return stu, nil
}

// List returns the full roster.
func (s *Service) List(ctx context.Context) ([]Student, error) {
	return s.students.List(ctx)
}

// Delete removes a student. Sessions and invoices referencing the student
// are kept and display as "unknown student" upstream.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.students.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrStudentNotFound
		}
		return fmt.Errorf("deleting student: %w", err)
	}
	return nil
}

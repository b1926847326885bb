package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jlchiang/tutorbase/internal/domain/student"
	"github.com/jlchiang/tutorbase/internal/repository"
)

// StudentRepository implements student persistence for SQLite
type StudentRepository struct {
	db *DB
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create inserts a student, allocating an ID when none is set
func (r *StudentRepository) Create(ctx context.Context, stu *student.Student) error {
	if stu.ID == 0 {
		id, err := r.db.nextID("students")
		if err != nil {
			return err
		}
		stu.ID = id
	}

	query := `
		INSERT INTO students (id, name, parent_contact, default_rate, color, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		stu.ID,
		stu.Name,
		stu.ParentContact,
		stu.DefaultRate,
		stu.Color,
		stu.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

// Get retrieves a student by ID
func (r *StudentRepository) Get(ctx context.Context, id int64) (*student.Student, error) {
	query := `
		SELECT id, name, parent_contact, default_rate, color, created_at
		FROM students
		WHERE id = ?
	`

	var stu student.Student
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&stu.ID,
		&stu.Name,
		&stu.ParentContact,
		&stu.DefaultRate,
		&stu.Color,
		&stu.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &stu, nil
}

// List returns all students ordered by ID
func (r *StudentRepository) List(ctx context.Context) ([]student.Student, error) {
	query := `
		SELECT id, name, parent_contact, default_rate, color, created_at
		FROM students
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	var students []student.Student
	for rows.Next() {
		var stu student.Student
		if err := rows.Scan(
			&stu.ID,
			&stu.Name,
			&stu.ParentContact,
			&stu.DefaultRate,
			&stu.Color,
			&stu.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, stu)
	}
	return students, rows.Err()
}

// Delete removes a student
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM students WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
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

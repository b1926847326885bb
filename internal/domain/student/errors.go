package student

import "errors"

var (
	// ErrStudentNotFound indicates the student doesn't exist.
	ErrStudentNotFound = errors.New("student not found")
	// ErrInvalidInput indicates invalid student input.
	ErrInvalidInput = errors.New("invalid student input")
)

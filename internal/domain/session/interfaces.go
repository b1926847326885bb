package session

import (
	"context"

	"github.com/jlchiang/tutorbase/internal/domain/student"
)

// Repository provides persistence for sessions.
type Repository interface {
	Create(ctx context.Context, sess *Session) error
	Get(ctx context.Context, id int64) (*Session, error)
	List(ctx context.Context) ([]Session, error)
	Update(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id int64) error
}

// StudentRepository provides student lookup for rate snapshots and names.
type StudentRepository interface {
	Get(ctx context.Context, id int64) (*student.Student, error)
	List(ctx context.Context) ([]student.Student, error)
}

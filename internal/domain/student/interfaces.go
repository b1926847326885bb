package student

import "context"

// Repository provides persistence for students.
type Repository interface {
	Create(ctx context.Context, stu *Student) error
	Get(ctx context.Context, id int64) (*Student, error)
	List(ctx context.Context) ([]Student, error)
	Delete(ctx context.Context, id int64) error
}

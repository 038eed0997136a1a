package repository

import (
	"context"

	"github.com/fastygo/teamboard/domain"
)

// TaskRepository keeps tasks in creation order.
type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, tasks []domain.Task) error
}

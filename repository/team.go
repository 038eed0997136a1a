package repository

import (
	"context"

	"github.com/fastygo/teamboard/domain"
)

type TeamRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	List(ctx context.Context) ([]domain.Team, error)
	Create(ctx context.Context, team *domain.Team) error
	Update(ctx context.Context, team *domain.Team) error
	Delete(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, teams []domain.Team) error
}

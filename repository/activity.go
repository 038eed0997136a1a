package repository

import (
	"context"

	"github.com/fastygo/teamboard/domain"
)

// ActivityRepository stores the activity log newest first.
type ActivityRepository interface {
	List(ctx context.Context) ([]domain.ActivityEntry, error)
	// Append places entry at the head of the log and evicts anything beyond limit.
	Append(ctx context.Context, entry domain.ActivityEntry, limit int) error
	Clear(ctx context.Context) error
	ReplaceAll(ctx context.Context, entries []domain.ActivityEntry) error
}

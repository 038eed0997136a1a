package activity

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
	"github.com/fastygo/teamboard/usecase"
	"github.com/fastygo/teamboard/usecase/view"
)

type UseCase struct {
	journal  *usecase.Journal
	pageSize int
	logger   *zap.Logger
}

func New(journal *usecase.Journal, pageSize int, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = view.DefaultPageSize
	}
	return &UseCase{
		journal:  journal,
		pageSize: pageSize,
		logger:   logger,
	}
}

// List pages through the log, newest first. Non-admins only ever see their own entries.
func (uc *UseCase) List(ctx context.Context, actor domain.Actor, mine bool, page int) (view.Page[view.ActivityView], error) {
	if !actor.IsAdmin() {
		mine = true
	}

	var out view.Page[view.ActivityView]
	err := uc.journal.View(ctx, func(tx repository.Tx) error {
		entries, err := tx.Activity().List(ctx)
		if err != nil {
			return err
		}
		if mine {
			own := entries[:0:0]
			for _, e := range entries {
				if e.UserID == actor.UserID {
					own = append(own, e)
				}
			}
			entries = own
		}
		names, err := view.LoadNames(ctx, tx)
		if err != nil {
			return err
		}
		out = view.Map(view.Paginate(entries, page, uc.pageSize), names.Activity)
		return nil
	})
	return out, err
}

// Clear empties the log. The clearing itself is the first entry of the new log.
func (uc *UseCase) Clear(ctx context.Context, actor domain.Actor) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	err := uc.journal.Update(ctx, actor, func(tx repository.Tx, record usecase.Record) error {
		if err := tx.Activity().Clear(ctx); err != nil {
			return err
		}
		record("🧹 Cleared the activity log")
		return nil
	})
	if err != nil {
		return err
	}
	uc.logger.Info("activity log cleared", zap.String("actor", actor.UserID))
	return nil
}

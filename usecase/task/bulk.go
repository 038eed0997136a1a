package task

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
	"github.com/fastygo/teamboard/usecase"
	"github.com/fastygo/teamboard/usecase/view"
)

type BulkAction string

const (
	BulkStatus   BulkAction = "status"
	BulkPriority BulkAction = "priority"
	BulkDelete   BulkAction = "delete"
)

// BulkInput applies Action to the selected tasks that are visible on the
// page described by Query. Selected ids outside that page are ignored.
type BulkInput struct {
	Action  BulkAction
	Value   string
	TaskIDs []string
	Query   Query
}

type BulkResult struct {
	Affected []string `json:"affected"`
	Ignored  int      `json:"ignored"`
}

func (uc *UseCase) Bulk(ctx context.Context, actor domain.Actor, in BulkInput) (*BulkResult, error) {
	var (
		status   domain.Status
		priority domain.Priority
		err      error
	)
	switch BulkAction(strings.ToLower(string(in.Action))) {
	case BulkStatus:
		if status, err = domain.ParseStatus(in.Value); err != nil {
			return nil, err
		}
	case BulkPriority:
		if !actor.IsAdmin() {
			return nil, domain.ErrForbidden
		}
		if priority, err = domain.ParsePriority(in.Value); err != nil {
			return nil, err
		}
	case BulkDelete:
		if !actor.IsAdmin() {
			return nil, domain.ErrForbidden
		}
	default:
		return nil, domain.Invalidf("unknown bulk action %q", in.Action)
	}
	action := BulkAction(strings.ToLower(string(in.Action)))
	if len(in.TaskIDs) == 0 {
		return nil, domain.Invalidf("no tasks selected")
	}

	result := &BulkResult{Affected: []string{}}
	err = uc.journal.Update(ctx, actor, func(tx repository.Tx, record usecase.Record) error {
		result.Affected = result.Affected[:0]
		names, err := view.LoadNames(ctx, tx)
		if err != nil {
			return err
		}
		page, err := uc.pageOf(ctx, tx, actor, names, in.Query)
		if err != nil {
			return err
		}

		selected := make(map[string]struct{}, len(in.TaskIDs))
		for _, id := range in.TaskIDs {
			selected[id] = struct{}{}
		}

		now := uc.journal.Now()
		for i := range page.Items {
			task := &page.Items[i]
			if _, ok := selected[task.ID]; !ok {
				continue
			}
			switch action {
			case BulkStatus:
				task.Status = status
				task.UpdatedAt = now
				err = tx.Tasks().Update(ctx, task)
			case BulkPriority:
				task.Priority = priority
				task.UpdatedAt = now
				err = tx.Tasks().Update(ctx, task)
			case BulkDelete:
				err = tx.Tasks().Delete(ctx, task.ID)
			}
			if err != nil {
				return err
			}
			result.Affected = append(result.Affected, task.ID)
		}
		result.Ignored = len(selected) - len(result.Affected)

		n := len(result.Affected)
		switch {
		case n == 0:
		case action == BulkStatus:
			record("📋 Set status of %d tasks to %s", n, status)
		case action == BulkPriority:
			record("📋 Set priority of %d tasks to %s", n, priority)
		case action == BulkDelete:
			record("📋 Deleted %d tasks", n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Debug("bulk task action",
		zap.String("action", string(action)),
		zap.Int("affected", len(result.Affected)),
		zap.Int("ignored", result.Ignored),
	)
	return result, nil
}

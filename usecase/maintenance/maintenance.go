package maintenance

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
	"github.com/fastygo/teamboard/usecase"
)

type UseCase struct {
	journal *usecase.Journal
	logger  *zap.Logger
}

func New(journal *usecase.Journal, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		journal: journal,
		logger:  logger,
	}
}

// Repair detaches orphaned team tasks. The system actor may run it unattended.
func (uc *UseCase) Repair(ctx context.Context, actor domain.Actor) (int, error) {
	if !actor.IsAdmin() {
		return 0, domain.ErrForbidden
	}

	var repaired int
	err := uc.journal.Update(ctx, actor, func(tx repository.Tx, record usecase.Record) error {
		n, err := DetachOrphans(ctx, tx)
		if err != nil {
			return err
		}
		repaired = n
		if n > 0 {
			record("🧹 Repaired %d orphaned tasks", n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if repaired > 0 {
		uc.logger.Info("orphaned tasks repaired", zap.Int("count", repaired), zap.String("actor", actor.UserID))
	}
	return repaired, nil
}

func (uc *UseCase) Export(ctx context.Context, actor domain.Actor) (*domain.Snapshot, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	snapshot := &domain.Snapshot{
		Version:    domain.SnapshotVersion,
		ExportDate: uc.journal.Now(),
	}
	err := uc.journal.View(ctx, func(tx repository.Tx) error {
		var err error
		if snapshot.Tasks, err = tx.Tasks().List(ctx); err != nil {
			return err
		}
		if snapshot.Teams, err = tx.Teams().List(ctx); err != nil {
			return err
		}
		snapshot.ActivityLog, err = tx.Activity().List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if snapshot.Tasks == nil {
		snapshot.Tasks = []domain.Task{}
	}
	if snapshot.Teams == nil {
		snapshot.Teams = []domain.Team{}
	}
	if snapshot.ActivityLog == nil {
		snapshot.ActivityLog = []domain.ActivityEntry{}
	}
	return snapshot, nil
}

type ImportResult struct {
	Tasks    int `json:"tasks"`
	Teams    int `json:"teams"`
	Activity int `json:"activity"`
	Repaired int `json:"repaired"`
}

// Import replaces tasks, teams and the activity log with the snapshot in raw.
// User references are resolved by id or username against the stored users;
// an unknown assignee or team member rejects the import. Nothing is written
// unless the whole document is valid. No activity entry is
// recorded so an export/import round trip is exact.
func (uc *UseCase) Import(ctx context.Context, actor domain.Actor, raw []byte) (*ImportResult, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if err := validateSnapshot(raw); err != nil {
		return nil, err
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeInvalid) {
			return nil, err
		}
		return nil, domain.Invalidf("snapshot rejected: %v", err)
	}
	if err := checkSnapshot(&snapshot); err != nil {
		return nil, err
	}

	activity := snapshot.ActivityLog
	if limit := uc.journal.Limit(); len(activity) > limit {
		activity = activity[:limit]
	}

	result := &ImportResult{
		Tasks:    len(snapshot.Tasks),
		Teams:    len(snapshot.Teams),
		Activity: len(activity),
	}
	err := uc.journal.Update(ctx, actor, func(tx repository.Tx, _ usecase.Record) error {
		refs, err := loadReferences(ctx, tx)
		if err != nil {
			return err
		}
		data, err := refs.resolve(&snapshot, activity)
		if err != nil {
			return err
		}
		if err := tx.Teams().ReplaceAll(ctx, data.teams); err != nil {
			return err
		}
		if err := tx.Tasks().ReplaceAll(ctx, data.tasks); err != nil {
			return err
		}
		if err := tx.Activity().ReplaceAll(ctx, data.activity); err != nil {
			return err
		}
		n, err := DetachOrphans(ctx, tx)
		result.Repaired = n
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("snapshot imported",
		zap.Int("tasks", result.Tasks),
		zap.Int("teams", result.Teams),
		zap.Int("activity", result.Activity),
		zap.Int("repaired", result.Repaired),
	)
	return result, nil
}

func checkSnapshot(s *domain.Snapshot) error {
	names := make(map[string]struct{}, len(s.Teams))
	teamIDs := make(map[string]struct{}, len(s.Teams))
	for i := range s.Teams {
		team := &s.Teams[i]
		team.NormalizeMembers()
		if err := team.Validate(); err != nil {
			return err
		}
		if _, dup := teamIDs[team.ID]; dup {
			return domain.Invalidf("duplicate team id %q", team.ID)
		}
		teamIDs[team.ID] = struct{}{}
		key := domain.FoldName(team.Name)
		if _, dup := names[key]; dup {
			return domain.Invalidf("duplicate team name %q", team.Name)
		}
		names[key] = struct{}{}
	}

	taskIDs := make(map[string]struct{}, len(s.Tasks))
	for i := range s.Tasks {
		task := &s.Tasks[i]
		if err := task.Validate(); err != nil {
			return err
		}
		if _, dup := taskIDs[task.ID]; dup {
			return domain.Invalidf("duplicate task id %q", task.ID)
		}
		taskIDs[task.ID] = struct{}{}
	}
	return nil
}

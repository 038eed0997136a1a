package team

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
	"github.com/fastygo/teamboard/usecase"
	"github.com/fastygo/teamboard/usecase/maintenance"
	"github.com/fastygo/teamboard/usecase/view"
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

type Input struct {
	Name        string
	Description string
	Members     []string
}

type Patch struct {
	Name        *string
	Description *string
	Members     *[]string
}

func (uc *UseCase) List(ctx context.Context) ([]view.TeamView, error) {
	var out []view.TeamView
	err := uc.journal.View(ctx, func(tx repository.Tx) error {
		names, err := view.LoadNames(ctx, tx)
		if err != nil {
			return err
		}
		teams, err := tx.Teams().List(ctx)
		if err != nil {
			return err
		}
		out = make([]view.TeamView, len(teams))
		for i, t := range teams {
			out[i] = names.Team(t)
		}
		return nil
	})
	return out, err
}

func (uc *UseCase) Get(ctx context.Context, id string) (*view.TeamView, error) {
	var out *view.TeamView
	err := uc.journal.View(ctx, func(tx repository.Tx) error {
		team, err := tx.Teams().GetByID(ctx, id)
		if err != nil {
			return err
		}
		out, err = present(ctx, tx, *team)
		return err
	})
	return out, err
}

func (uc *UseCase) Create(ctx context.Context, actor domain.Actor, in Input) (*view.TeamView, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	now := uc.journal.Now()
	team := domain.Team{
		ID:          domain.NewID(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		CreatedBy:   actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var out *view.TeamView
	err := uc.journal.Update(ctx, actor, func(tx repository.Tx, record usecase.Record) error {
		members, err := resolveMembers(ctx, tx, in.Members)
		if err != nil {
			return err
		}
		team.Members = members
		if err := team.Validate(); err != nil {
			return err
		}
		if err := ensureUniqueName(ctx, tx, team.ID, team.Name); err != nil {
			return err
		}
		if err := tx.Teams().Create(ctx, &team); err != nil {
			return err
		}
		record("👥 Created team \"%s\"", team.Name)

		if err := uc.repair(ctx, tx); err != nil {
			return err
		}
		out, err = present(ctx, tx, team)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update changes a team. Existing tasks keep the roster they were created with.
func (uc *UseCase) Update(ctx context.Context, actor domain.Actor, id string, patch Patch) (*view.TeamView, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	var out *view.TeamView
	err := uc.journal.Update(ctx, actor, func(tx repository.Tx, record usecase.Record) error {
		team, err := tx.Teams().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if patch.Name != nil {
			team.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Description != nil {
			team.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.Members != nil {
			if team.Members, err = resolveMembers(ctx, tx, *patch.Members); err != nil {
				return err
			}
		}
		if err := team.Validate(); err != nil {
			return err
		}
		if err := ensureUniqueName(ctx, tx, team.ID, team.Name); err != nil {
			return err
		}
		team.UpdatedAt = uc.journal.Now()
		if err := tx.Teams().Update(ctx, team); err != nil {
			return err
		}
		record("✏️ Updated team \"%s\"", team.Name)

		if err := uc.repair(ctx, tx); err != nil {
			return err
		}
		out, err = present(ctx, tx, *team)
		return err
	})
	return out, err
}

// Delete removes a team after detaching every task linked to it. Both happen
// in one transaction.
func (uc *UseCase) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}

	detached := 0
	err := uc.journal.Update(ctx, actor, func(tx repository.Tx, record usecase.Record) error {
		team, err := tx.Teams().GetByID(ctx, id)
		if err != nil {
			return err
		}

		tasks, err := tx.Tasks().List(ctx)
		if err != nil {
			return err
		}
		detached = 0
		for i := range tasks {
			task := &tasks[i]
			if task.Assignment == nil || task.Assignment.TeamID() != team.ID {
				continue
			}
			task.Assignment = domain.DetachTeam(task.Assignment)
			if err := tx.Tasks().Update(ctx, task); err != nil {
				return err
			}
			detached++
		}

		if err := tx.Teams().Delete(ctx, team.ID); err != nil {
			return err
		}
		record("🗑️ Deleted team \"%s\"", team.Name)
		return uc.repair(ctx, tx)
	})
	if err != nil {
		return err
	}

	uc.logger.Info("team deleted", zap.String("team_id", id), zap.Int("detached_tasks", detached))
	return nil
}

func (uc *UseCase) repair(ctx context.Context, tx repository.Tx) error {
	n, err := maintenance.DetachOrphans(ctx, tx)
	if err != nil {
		return err
	}
	if n > 0 {
		uc.logger.Warn("detached orphaned tasks during team change", zap.Int("count", n))
	}
	return nil
}

func ensureUniqueName(ctx context.Context, tx repository.Tx, selfID, name string) error {
	teams, err := tx.Teams().List(ctx)
	if err != nil {
		return err
	}
	key := domain.FoldName(name)
	for _, t := range teams {
		if t.ID != selfID && domain.FoldName(t.Name) == key {
			return domain.ErrDuplicateTeamName
		}
	}
	return nil
}

// resolveMembers maps user ids or usernames to ids, dropping duplicates.
func resolveMembers(ctx context.Context, tx repository.Tx, refs []string) ([]string, error) {
	seen := make(map[string]struct{}, len(refs))
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		user, err := tx.Users().GetByID(ctx, ref)
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			user, err = tx.Users().GetByUsername(ctx, ref)
		}
		if err != nil {
			if domain.IsDomainError(err, domain.ErrCodeNotFound) {
				return nil, domain.Invalidf("unknown user %q", ref)
			}
			return nil, err
		}
		if _, dup := seen[user.ID]; dup {
			continue
		}
		seen[user.ID] = struct{}{}
		ids = append(ids, user.ID)
	}
	return ids, nil
}

func present(ctx context.Context, tx repository.Tx, team domain.Team) (*view.TeamView, error) {
	names, err := view.LoadNames(ctx, tx)
	if err != nil {
		return nil, err
	}
	v := names.Team(team)
	return &v, nil
}

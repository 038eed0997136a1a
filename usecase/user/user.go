package user

import (
	"context"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
	"github.com/fastygo/teamboard/usecase"
	"github.com/fastygo/teamboard/usecase/auth"
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

type CreateInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

type Patch struct {
	Username *string
	Email    *string
	Password *string
	Role     *string
}

func (uc *UseCase) List(ctx context.Context) ([]view.UserView, error) {
	var out []view.UserView
	err := uc.journal.View(ctx, func(tx repository.Tx) error {
		users, err := tx.Users().List(ctx)
		if err != nil {
			return err
		}
		out = make([]view.UserView, len(users))
		for i, u := range users {
			out[i] = view.User(u)
		}
		return nil
	})
	return out, err
}

func (uc *UseCase) Get(ctx context.Context, id string) (*view.UserView, error) {
	var out *view.UserView
	err := uc.journal.View(ctx, func(tx repository.Tx) error {
		u, err := tx.Users().GetByID(ctx, id)
		if err != nil {
			return err
		}
		v := view.User(*u)
		out = &v
		return nil
	})
	return out, err
}

// Create registers a user. Admin only.
func (uc *UseCase) Create(ctx context.Context, actor domain.Actor, in CreateInput) (*view.UserView, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return uc.create(ctx, actor, in)
}

// Bootstrap creates the first administrator when the store holds no users.
// It reports whether a user was created.
func (uc *UseCase) Bootstrap(ctx context.Context, in CreateInput) (bool, error) {
	var empty bool
	err := uc.journal.View(ctx, func(tx repository.Tx) error {
		users, err := tx.Users().List(ctx)
		empty = len(users) == 0
		return err
	})
	if err != nil || !empty {
		return false, err
	}

	in.Role = string(domain.RoleAdmin)
	created, err := uc.create(ctx, domain.SystemActor, in)
	if err != nil {
		return false, err
	}
	uc.logger.Info("bootstrap administrator created", zap.String("user_id", created.ID), zap.String("username", created.Username))
	return true, nil
}

func (uc *UseCase) create(ctx context.Context, actor domain.Actor, in CreateInput) (*view.UserView, error) {
	username, err := domain.NormalizeUsername(in.Username)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	role := domain.RoleUser
	if strings.TrimSpace(in.Role) != "" {
		if role, err = domain.ParseRole(in.Role); err != nil {
			return nil, err
		}
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := uc.journal.Now()
	u := domain.User{
		ID:           domain.NewID(),
		Username:     username,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = uc.journal.Update(ctx, actor, func(tx repository.Tx, record usecase.Record) error {
		if err := ensureUnique(ctx, tx, u.ID, u.Username, u.Email); err != nil {
			return err
		}
		if err := tx.Users().Create(ctx, &u); err != nil {
			return err
		}
		record("👤 Created user \"%s\"", u.Username)
		return nil
	})
	if err != nil {
		return nil, err
	}
	v := view.User(u)
	return &v, nil
}

// Update edits a user. Users may change their own name, email and password;
// only admins may edit others or change roles. A rename touches this record only.
func (uc *UseCase) Update(ctx context.Context, actor domain.Actor, id string, patch Patch) (*view.UserView, error) {
	self := actor.UserID == id
	if !actor.IsAdmin() && (!self || patch.Role != nil) {
		return nil, domain.ErrForbidden
	}

	var out *view.UserView
	err := uc.journal.Update(ctx, actor, func(tx repository.Tx, record usecase.Record) error {
		u, err := tx.Users().GetByID(ctx, id)
		if err != nil {
			return err
		}
		previous := u.Username

		if patch.Username != nil {
			if u.Username, err = domain.NormalizeUsername(*patch.Username); err != nil {
				return err
			}
		}
		if patch.Email != nil {
			if u.Email, err = normalizeEmail(*patch.Email); err != nil {
				return err
			}
		}
		if patch.Password != nil {
			if u.PasswordHash, err = auth.HashPassword(*patch.Password); err != nil {
				return err
			}
		}
		if patch.Role != nil {
			role, err := domain.ParseRole(*patch.Role)
			if err != nil {
				return err
			}
			if self && role != domain.RoleAdmin {
				return domain.Invalidf("administrators cannot demote themselves")
			}
			u.Role = role
		}
		if err := ensureUnique(ctx, tx, u.ID, u.Username, u.Email); err != nil {
			return err
		}

		u.UpdatedAt = uc.journal.Now()
		if err := tx.Users().Update(ctx, u); err != nil {
			return err
		}
		if previous != u.Username {
			record("✏️ Renamed user \"%s\" to \"%s\"", previous, u.Username)
		} else {
			record("✏️ Updated user \"%s\"", u.Username)
		}

		v := view.User(*u)
		out = &v
		return nil
	})
	return out, err
}

// Delete removes a user and every reference to it in one transaction.
// Assignments lose the user, emptied tasks and teams are deleted, and
// authorship in tasks, comments, teams and the activity log becomes the
// deleted-user sentinel.
func (uc *UseCase) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	if actor.UserID == id {
		return domain.Invalidf("you cannot delete your own account")
	}

	var stats cascadeStats
	err := uc.journal.Update(ctx, actor, func(tx repository.Tx, record usecase.Record) error {
		u, err := tx.Users().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if stats, err = cascadeDelete(ctx, tx, id); err != nil {
			return err
		}
		if err := tx.Users().Delete(ctx, id); err != nil {
			return err
		}
		record("🗑️ Deleted user \"%s\"", u.Username)
		return nil
	})
	if err != nil {
		return err
	}

	uc.logger.Info("user deleted",
		zap.String("user_id", id),
		zap.Int("tasks_deleted", stats.tasksDeleted),
		zap.Int("tasks_updated", stats.tasksUpdated),
		zap.Int("teams_deleted", stats.teamsDeleted),
		zap.Int("teams_updated", stats.teamsUpdated),
		zap.Int("orphans_repaired", stats.repaired),
	)
	return nil
}

type cascadeStats struct {
	tasksDeleted int
	tasksUpdated int
	teamsDeleted int
	teamsUpdated int
	repaired     int
}

func cascadeDelete(ctx context.Context, tx repository.Tx, userID string) (cascadeStats, error) {
	var stats cascadeStats

	tasks, err := tx.Tasks().List(ctx)
	if err != nil {
		return stats, err
	}
	for i := range tasks {
		task := &tasks[i]
		assignment, removed := domain.RemoveAssignee(task.Assignment, userID)
		if removed && assignment == nil {
			if err := tx.Tasks().Delete(ctx, task.ID); err != nil {
				return stats, err
			}
			stats.tasksDeleted++
			continue
		}

		changed := removed
		task.Assignment = assignment
		if task.CreatedBy == userID {
			task.CreatedBy = domain.DeletedUserID
			changed = true
		}
		for j := range task.Comments {
			if task.Comments[j].AuthorID == userID {
				task.Comments[j].AuthorID = domain.DeletedUserID
				changed = true
			}
		}
		if !changed {
			continue
		}
		if err := tx.Tasks().Update(ctx, task); err != nil {
			return stats, err
		}
		stats.tasksUpdated++
	}

	teams, err := tx.Teams().List(ctx)
	if err != nil {
		return stats, err
	}
	for i := range teams {
		team := &teams[i]
		removed := team.RemoveMember(userID)
		if removed && len(team.Members) == 0 {
			if err := tx.Teams().Delete(ctx, team.ID); err != nil {
				return stats, err
			}
			stats.teamsDeleted++
			continue
		}
		changed := removed
		if team.CreatedBy == userID {
			team.CreatedBy = domain.DeletedUserID
			changed = true
		}
		if !changed {
			continue
		}
		if err := tx.Teams().Update(ctx, team); err != nil {
			return stats, err
		}
		stats.teamsUpdated++
	}

	entries, err := tx.Activity().List(ctx)
	if err != nil {
		return stats, err
	}
	rewritten := false
	for i := range entries {
		if entries[i].UserID == userID {
			entries[i].UserID = domain.DeletedUserID
			rewritten = true
		}
	}
	if rewritten {
		if err := tx.Activity().ReplaceAll(ctx, entries); err != nil {
			return stats, err
		}
	}

	if stats.teamsDeleted > 0 {
		if stats.repaired, err = maintenance.DetachOrphans(ctx, tx); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func ensureUnique(ctx context.Context, tx repository.Tx, selfID, username, email string) error {
	if existing, err := tx.Users().GetByUsername(ctx, username); err == nil {
		if existing.ID != selfID {
			return domain.ErrDuplicateUsername
		}
	} else if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return err
	}

	if existing, err := tx.Users().GetByEmail(ctx, email); err == nil {
		if existing.ID != selfID {
			return domain.ErrDuplicateEmail
		}
	} else if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return err
	}
	return nil
}

func normalizeEmail(value string) (string, error) {
	value = strings.TrimSpace(value)
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return "", domain.Invalidf("invalid email address %q", value)
	}
	return strings.ToLower(value), nil
}

package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
	"github.com/fastygo/teamboard/repository/memory"
	"github.com/fastygo/teamboard/usecase"
	"github.com/fastygo/teamboard/usecase/auth"
	taskUC "github.com/fastygo/teamboard/usecase/task"
	teamUC "github.com/fastygo/teamboard/usecase/team"
)

var admin = domain.Actor{UserID: "admin", Role: domain.RoleAdmin}

type fixture struct {
	store *memory.Store
	users *UseCase
	tasks *taskUC.UseCase
	teams *teamUC.UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStoreFrom(&memory.State{
		Users: []domain.User{{ID: "admin", Username: "root", Email: "root@example.com", Role: domain.RoleAdmin}},
	})
	journal := usecase.NewJournal(store, nil, nil, usecase.WithClock(func() time.Time {
		return time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	}))
	return &fixture{
		store: store,
		users: New(journal, nil),
		tasks: taskUC.New(journal, 10, nil),
		teams: teamUC.New(journal, nil),
	}
}

func (f *fixture) create(t *testing.T, username string) domain.Actor {
	t.Helper()
	u, err := f.users.Create(context.Background(), admin, CreateInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	return domain.Actor{UserID: u.ID, Role: u.Role}
}

func (f *fixture) state(t *testing.T) (tasks []domain.Task, teams []domain.Team, log []domain.ActivityEntry) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.store.View(ctx, func(tx repository.Tx) error {
		var err error
		if tasks, err = tx.Tasks().List(ctx); err != nil {
			return err
		}
		if teams, err = tx.Teams().List(ctx); err != nil {
			return err
		}
		log, err = tx.Activity().List(ctx)
		return err
	}))
	return tasks, teams, log
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u, err := f.users.Create(ctx, admin, CreateInput{Username: "alice", Email: "Alice@Example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.Equal(t, "alice@example.com", u.Email)

	tests := []struct {
		name string
		in   CreateInput
		want error
	}{
		{"duplicate username", CreateInput{Username: "ALICE", Email: "other@example.com", Password: "secret123"}, domain.ErrDuplicateUsername},
		{"duplicate email", CreateInput{Username: "alice2", Email: "alice@example.com", Password: "secret123"}, domain.ErrDuplicateEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.users.Create(ctx, admin, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	invalid := []CreateInput{
		{Username: "", Email: "x@example.com", Password: "secret123"},
		{Username: "x", Email: "not-an-email", Password: "secret123"},
		{Username: "x", Email: "x@example.com", Password: "123"},
		{Username: "x", Email: "x@example.com", Password: "secret123", Role: "owner"},
	}
	for _, in := range invalid {
		_, err := f.users.Create(ctx, admin, in)
		assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "%+v", in)
	}

	_, err = f.users.Create(ctx, domain.Actor{UserID: u.ID, Role: domain.RoleUser}, CreateInput{Username: "y", Email: "y@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUsernameRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.create(t, "alice")

	rejected := []string{
		"bob@example.com",
		"root@",
		"Deleted User",
		"deleted-user",
		"  SYSTEM ",
		"system",
	}
	for _, name := range rejected {
		t.Run(name, func(t *testing.T) {
			_, err := f.users.Create(ctx, admin, CreateInput{Username: name, Email: "fresh@example.com", Password: "secret123"})
			assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "create %q: %v", name, err)

			_, err = f.users.Update(ctx, alice, alice.UserID, Patch{Username: &name})
			assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "rename %q: %v", name, err)
		})
	}

	users, err := f.users.List(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	assert.ElementsMatch(t, []string{"root", "alice"}, names)

	renamed := "Systematic"
	u, err := f.users.Update(ctx, alice, alice.UserID, Patch{Username: &renamed})
	require.NoError(t, err)
	assert.Equal(t, "Systematic", u.Username)
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := New(usecase.NewJournal(store, nil, nil), nil)

	created, err := uc.Bootstrap(ctx, CreateInput{Username: "admin", Email: "admin@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.True(t, created)

	users, err := uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, domain.RoleAdmin, users[0].Role)

	created, err = uc.Bootstrap(ctx, CreateInput{Username: "other", Email: "other@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.False(t, created)
}

func TestUpdate_RenameIsVisibleEverywhere(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.create(t, "alice")
	f.create(t, "bob")

	task, err := f.tasks.Create(ctx, admin, taskUC.CreateInput{Title: "Docs", TaskType: "custom", AssignedTo: []string{"alice", "bob"}})
	require.NoError(t, err)
	_, err = f.tasks.AddComment(ctx, alice, task.ID, "hello")
	require.NoError(t, err)

	renamed, err := f.users.Update(ctx, alice, alice.UserID, Patch{Username: ptr("alicia")})
	require.NoError(t, err)
	assert.Equal(t, "alicia", renamed.Username)

	got, err := f.tasks.Get(ctx, admin, task.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alicia", "bob"}, got.AssigneeNames)
	assert.Equal(t, "alicia", got.Comments[0].AuthorName)

	page, err := f.tasks.List(ctx, admin, taskUC.Query{Assignee: "alicia"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	_, _, log := f.state(t)
	assert.Equal(t, `✏️ Renamed user "alice" to "alicia"`, log[0].Message)
}

func TestUpdate_Permissions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.create(t, "alice")
	bob := f.create(t, "bob")

	_, err := f.users.Update(ctx, alice, bob.UserID, Patch{Username: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.users.Update(ctx, alice, alice.UserID, Patch{Role: ptr("admin")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.users.Update(ctx, admin, admin.UserID, Patch{Role: ptr("user")})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.users.Update(ctx, alice, alice.UserID, Patch{Username: ptr("BOB")})
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)

	promoted, err := f.users.Update(ctx, admin, bob.UserID, Patch{Role: ptr("Admin")})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, promoted.Role)

	changed, err := f.users.Update(ctx, alice, alice.UserID, Patch{Password: ptr("newsecret")})
	require.NoError(t, err)
	assert.Equal(t, "alice", changed.Username)
}

func TestDelete_Cascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.create(t, "alice")
	f.create(t, "bob")

	solo, err := f.tasks.Create(ctx, admin, taskUC.CreateInput{Title: "Solo", AssignedTo: []string{"alice"}})
	require.NoError(t, err)
	pair, err := f.tasks.Create(ctx, admin, taskUC.CreateInput{Title: "Pair", TaskType: "custom", AssignedTo: []string{"alice", "bob"}})
	require.NoError(t, err)
	_, err = f.tasks.AddComment(ctx, alice, pair.ID, "from alice")
	require.NoError(t, err)

	onlyAlice, err := f.teams.Create(ctx, admin, teamUC.Input{Name: "Alone", Members: []string{"alice"}})
	require.NoError(t, err)
	linked, err := f.tasks.Create(ctx, admin, taskUC.CreateInput{Title: "Linked", TaskType: "custom", AssignedTo: []string{"alice", "bob"}})
	require.NoError(t, err)
	_, err = f.tasks.Update(ctx, admin, linked.ID, taskUC.Patch{
		TaskType:   ptr("team"),
		TeamID:     ptr(onlyAlice.ID),
		AssignedTo: ptr([]string{"alice", "bob"}),
	})
	require.NoError(t, err)
	mixed, err := f.teams.Create(ctx, admin, teamUC.Input{Name: "Mixed", Members: []string{"alice", "bob"}})
	require.NoError(t, err)

	assert.ErrorIs(t, f.users.Delete(ctx, alice, admin.UserID), domain.ErrForbidden)
	assert.True(t, domain.IsDomainError(f.users.Delete(ctx, admin, admin.UserID), domain.ErrCodeInvalid))

	require.NoError(t, f.users.Delete(ctx, admin, alice.UserID))

	tasks, teams, log := f.state(t)
	byID := map[string]domain.Task{}
	for _, task := range tasks {
		byID[task.ID] = task
	}

	assert.NotContains(t, byID, solo.ID)

	require.Contains(t, byID, pair.ID)
	pairTask := byID[pair.ID]
	assert.Equal(t, domain.TaskTypeIndividual, pairTask.Type())
	assert.Equal(t, domain.DeletedUserID, pairTask.Comments[0].AuthorID)

	require.Contains(t, byID, linked.ID)
	linkedTask := byID[linked.ID]
	assert.Empty(t, linkedTask.Assignment.TeamID())
	assert.Equal(t, domain.TaskTypeIndividual, linkedTask.Type())

	require.Len(t, teams, 1)
	assert.Equal(t, mixed.ID, teams[0].ID)
	assert.NotContains(t, teams[0].Members, alice.UserID)

	for _, e := range log {
		assert.NotEqual(t, alice.UserID, e.UserID)
	}
	assert.Equal(t, `🗑️ Deleted user "alice"`, log[0].Message)

	got, err := f.tasks.Get(ctx, admin, pair.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeletedUserName, got.Comments[0].AuthorName)
}

func TestPasswordIsHashed(t *testing.T) {
	f := newFixture(t)
	alice := f.create(t, "alice")

	var stored *domain.User
	require.NoError(t, f.store.View(context.Background(), func(tx repository.Tx) error {
		var err error
		stored, err = tx.Users().GetByID(context.Background(), alice.UserID)
		return err
	}))
	assert.NotEqual(t, "secret123", stored.PasswordHash)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "secret123"))
}

func ptr[T any](v T) *T { return &v }

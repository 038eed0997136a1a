package team

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
	taskUC "github.com/fastygo/teamboard/usecase/task"
	"github.com/fastygo/teamboard/usecase/view"
)

var (
	admin = domain.Actor{UserID: "admin", Role: domain.RoleAdmin}
	alice = domain.Actor{UserID: "u-alice", Role: domain.RoleUser}
)

type fixture struct {
	store *memory.Store
	teams *UseCase
	tasks *taskUC.UseCase
}

func newFixture(t *testing.T, state *memory.State) *fixture {
	t.Helper()
	if state == nil {
		state = &memory.State{}
	}
	state.Users = append(state.Users,
		domain.User{ID: "admin", Username: "root", Role: domain.RoleAdmin},
		domain.User{ID: "u-alice", Username: "alice", Role: domain.RoleUser},
		domain.User{ID: "u-bob", Username: "bob", Role: domain.RoleUser},
	)
	store := memory.NewStoreFrom(state)
	journal := usecase.NewJournal(store, nil, nil, usecase.WithClock(func() time.Time {
		return time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	}))
	return &fixture{store: store, teams: New(journal, nil), tasks: taskUC.New(journal, 10, nil)}
}

func (f *fixture) task(t *testing.T, id string) *domain.Task {
	t.Helper()
	var out *domain.Task
	require.NoError(t, f.store.View(context.Background(), func(tx repository.Tx) error {
		var err error
		out, err = tx.Tasks().GetByID(context.Background(), id)
		return err
	}))
	return out
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	created, err := f.teams.Create(ctx, admin, Input{Name: " Eng ", Members: []string{"alice", "u-bob", "ALICE"}})
	require.NoError(t, err)
	assert.Equal(t, "Eng", created.Name)
	assert.Equal(t, []string{"u-alice", "u-bob"}, created.Members)
	assert.Equal(t, []string{"alice", "bob"}, created.MemberNames)

	_, err = f.teams.Create(ctx, admin, Input{Name: "eng", Members: []string{"alice"}})
	assert.ErrorIs(t, err, domain.ErrDuplicateTeamName)

	_, err = f.teams.Create(ctx, admin, Input{Name: "Ops"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.teams.Create(ctx, admin, Input{Name: "Ops", Members: []string{"ghost"}})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.teams.Create(ctx, alice, Input{Name: "Ops", Members: []string{"alice"}})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdate_KeepsExistingTaskRoster(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	team, err := f.teams.Create(ctx, admin, Input{Name: "Eng", Members: []string{"alice", "bob"}})
	require.NoError(t, err)
	task, err := f.tasks.Create(ctx, admin, taskUC.CreateInput{Title: "Ship", TaskType: "team", TeamID: team.ID})
	require.NoError(t, err)

	updated, err := f.teams.Update(ctx, admin, team.ID, Patch{Name: ptr("Platform"), Members: &[]string{"bob"}})
	require.NoError(t, err)
	assert.Equal(t, "Platform", updated.Name)
	assert.Equal(t, []string{"u-bob"}, updated.Members)

	stored := f.task(t, task.ID)
	assert.Equal(t, []string{"u-alice", "u-bob"}, stored.Assignment.Assignees())

	got, err := f.tasks.Get(ctx, admin, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Platform", got.TeamName)

	_, err = f.teams.Update(ctx, admin, "missing", Patch{Name: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrTeamNotFound)
}

func TestDelete_DetachesLinkedTasks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	team, err := f.teams.Create(ctx, admin, Input{Name: "Eng", Members: []string{"alice", "bob"}})
	require.NoError(t, err)
	task, err := f.tasks.Create(ctx, admin, taskUC.CreateInput{Title: "Ship", TaskType: "team", TeamID: team.ID})
	require.NoError(t, err)
	other, err := f.tasks.Create(ctx, admin, taskUC.CreateInput{Title: "Solo", AssignedTo: []string{"bob"}})
	require.NoError(t, err)

	require.NoError(t, f.teams.Delete(ctx, admin, team.ID))

	got, err := f.tasks.Get(ctx, admin, task.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, got.AssigneeNames)
	assert.Empty(t, got.TeamID)
	assert.Empty(t, got.TeamName)
	assert.Equal(t, domain.TaskTypeCustom, got.TaskType)

	assert.Equal(t, domain.TaskTypeIndividual, f.task(t, other.ID).Type())

	_, err = f.teams.Get(ctx, team.ID)
	assert.ErrorIs(t, err, domain.ErrTeamNotFound)
	assert.ErrorIs(t, f.teams.Delete(ctx, admin, team.ID), domain.ErrTeamNotFound)
}

func TestMutations_RepairPreexistingOrphans(t *testing.T) {
	ctx := context.Background()
	orphan, err := domain.NewTeamLinked("team-gone", []string{"u-alice"})
	require.NoError(t, err)
	f := newFixture(t, &memory.State{
		Tasks: []domain.Task{{
			ID: "orphan", Title: "Old", Status: domain.StatusTodo, Priority: domain.PriorityLow, Assignment: orphan,
		}},
	})

	_, err = f.teams.Create(ctx, admin, Input{Name: "New", Members: []string{"bob"}})
	require.NoError(t, err)

	stored := f.task(t, "orphan")
	assert.Equal(t, domain.TaskTypeIndividual, stored.Type())
	assert.Equal(t, []string{"u-alice"}, stored.Assignment.Assignees())
}

func TestList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	for _, name := range []string{"B", "A"} {
		_, err := f.teams.Create(ctx, admin, Input{Name: name, Members: []string{"alice"}})
		require.NoError(t, err)
	}

	teams, err := f.teams.List(ctx)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, []string{"B", "A"}, []string{teams[0].Name, teams[1].Name})
	assert.IsType(t, view.TeamView{}, teams[0])
}

func ptr[T any](v T) *T { return &v }

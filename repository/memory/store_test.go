package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
)

func newTask(t *testing.T, id string) *domain.Task {
	a, err := domain.NewIndividual("u1")
	require.NoError(t, err)
	return &domain.Task{ID: id, Title: id, Status: domain.StatusTodo, Priority: domain.PriorityMedium, Assignment: a}
}

func TestStore_UpdateRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	require.NoError(t, store.Update(ctx, func(tx repository.Tx) error {
		return tx.Tasks().Create(ctx, newTask(t, "keep"))
	}))

	boom := errors.New("boom")
	err := store.Update(ctx, func(tx repository.Tx) error {
		if err := tx.Tasks().Create(ctx, newTask(t, "discard")); err != nil {
			return err
		}
		if err := tx.Teams().Create(ctx, &domain.Team{ID: "team", Name: "Eng", Members: []string{"u1"}}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, store.View(ctx, func(tx repository.Tx) error {
		tasks, err := tx.Tasks().List(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "keep", tasks[0].ID)

		teams, err := tx.Teams().List(ctx)
		require.NoError(t, err)
		assert.Empty(t, teams)
		return nil
	}))
}

func TestStore_ViewDoesNotLeakWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	require.NoError(t, store.View(ctx, func(tx repository.Tx) error {
		return tx.Tasks().Create(ctx, newTask(t, "ghost"))
	}))
	require.NoError(t, store.View(ctx, func(tx repository.Tx) error {
		tasks, err := tx.Tasks().List(ctx)
		require.NoError(t, err)
		assert.Empty(t, tasks)
		return nil
	}))
}

func TestActivity_AppendKeepsNewestWithinLimit(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	require.NoError(t, store.Update(ctx, func(tx repository.Tx) error {
		for i := 0; i < 5; i++ {
			entry := domain.ActivityEntry{ID: fmt.Sprintf("e%d", i), Timestamp: time.Unix(int64(i), 0)}
			if err := tx.Activity().Append(ctx, entry, 3); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, store.View(ctx, func(tx repository.Tx) error {
		entries, err := tx.Activity().List(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, []string{"e4", "e3", "e2"}, []string{entries[0].ID, entries[1].ID, entries[2].ID})
		return nil
	}))
}

func TestRepositories_NotFound(t *testing.T) {
	ctx := context.Background()
	tx := NewTx(nil)

	_, err := tx.Users().GetByID(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.ErrorIs(t, tx.Tasks().Delete(ctx, "x"), domain.ErrTaskNotFound)
	assert.ErrorIs(t, tx.Teams().Update(ctx, &domain.Team{ID: "x"}), domain.ErrTeamNotFound)
	assert.False(t, tx.Dirty(CollectionTasks))
}

func TestUsers_LookupIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	tx := NewTx(nil)
	require.NoError(t, tx.Users().Create(ctx, &domain.User{ID: "u1", Username: "Alice", Email: "alice@example.com"}))

	u, err := tx.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	u, err = tx.Users().GetByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.True(t, tx.Dirty(CollectionUsers))
}

func TestSessionRepository_Expiry(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(time.Minute).(*sessionRepository)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	require.NoError(t, repo.Save(ctx, &domain.Session{ID: "s1", UserID: "u1"}))
	_, err := repo.Get(ctx, "s1")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestAttemptRepository_Window(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := NewAttemptRepository().WithClock(func() time.Time { return now })

	for i := 1; i <= 3; i++ {
		n, err := repo.Increment(ctx, "login:bob", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	now = now.Add(2 * time.Minute)
	n, err := repo.Count(ctx, "login:bob")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.Increment(ctx, "login:bob", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

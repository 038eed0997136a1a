package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bbolt "go.etcd.io/bbolt"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
	"github.com/fastygo/teamboard/repository/memory"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "teamboard.db")
	store, err := Open(path, "")
	require.NoError(t, err)
	return store, path
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	store, path := openTemp(t)

	linked, err := domain.NewTeamLinked("t1", []string{"u1", "u2"})
	require.NoError(t, err)

	require.NoError(t, store.Update(ctx, func(tx repository.Tx) error {
		if err := tx.Users().Create(ctx, &domain.User{ID: "u1", Username: "alice", Role: domain.RoleAdmin}); err != nil {
			return err
		}
		if err := tx.Teams().Create(ctx, &domain.Team{ID: "t1", Name: "Eng", Members: []string{"u1", "u2"}}); err != nil {
			return err
		}
		return tx.Tasks().Create(ctx, &domain.Task{
			ID: "task1", Title: "Ship", Status: domain.StatusTodo, Priority: domain.PriorityHigh, Assignment: linked,
		})
	}))
	require.NoError(t, store.Close())

	reopened, err := Open(path, "")
	require.NoError(t, err)
	defer reopened.Close()

	require.NoError(t, reopened.View(ctx, func(tx repository.Tx) error {
		task, err := tx.Tasks().GetByID(ctx, "task1")
		require.NoError(t, err)
		assert.Equal(t, domain.TaskTypeTeam, task.Type())
		assert.Equal(t, "t1", task.Assignment.TeamID())
		assert.Equal(t, []string{"u1", "u2"}, task.Assignment.Assignees())

		u, err := tx.Users().GetByUsername(ctx, "ALICE")
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)
		return nil
	}))
	assert.NoError(t, reopened.Ping(ctx))
}

func TestStore_FailedUpdateWritesNothing(t *testing.T) {
	ctx := context.Background()
	store, _ := openTemp(t)
	defer store.Close()

	err := store.Update(ctx, func(tx repository.Tx) error {
		if err := tx.Teams().Create(ctx, &domain.Team{ID: "t1", Name: "Eng", Members: []string{"u1"}}); err != nil {
			return err
		}
		return domain.ErrForbidden
	})
	require.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, store.View(ctx, func(tx repository.Tx) error {
		teams, err := tx.Teams().List(ctx)
		require.NoError(t, err)
		assert.Empty(t, teams)
		return nil
	}))
}

func TestStore_CorruptedDocument(t *testing.T) {
	ctx := context.Background()
	store, _ := openTemp(t)
	defer store.Close()

	require.NoError(t, store.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(store.bucket).Put([]byte(memory.CollectionTasks), []byte("{not json"))
	}))

	err := store.View(ctx, func(tx repository.Tx) error { return nil })
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeCorrupted))
}

func TestStore_ClosedDatabase(t *testing.T) {
	var store *Store
	assert.ErrorIs(t, store.Ping(context.Background()), bbolt.ErrDatabaseNotOpen)
	assert.NoError(t, store.Close())
}

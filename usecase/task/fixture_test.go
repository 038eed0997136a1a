package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
	"github.com/fastygo/teamboard/repository/memory"
	"github.com/fastygo/teamboard/usecase"
)

var (
	fixedNow = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	admin    = domain.Actor{UserID: "admin", Role: domain.RoleAdmin}
	alice    = domain.Actor{UserID: "u-alice", Role: domain.RoleUser}
	bob      = domain.Actor{UserID: "u-bob", Role: domain.RoleUser}
	carol    = domain.Actor{UserID: "u-carol", Role: domain.RoleUser}
)

type fixture struct {
	store *memory.Store
	uc    *UseCase
}

func newFixture(t *testing.T, pageSize int) *fixture {
	t.Helper()
	store := memory.NewStoreFrom(&memory.State{
		Users: []domain.User{
			{ID: "admin", Username: "root", Email: "root@example.com", Role: domain.RoleAdmin},
			{ID: "u-alice", Username: "alice", Email: "alice@example.com", Role: domain.RoleUser},
			{ID: "u-bob", Username: "bob", Email: "bob@example.com", Role: domain.RoleUser},
			{ID: "u-carol", Username: "carol", Email: "carol@example.com", Role: domain.RoleUser},
		},
		Teams: []domain.Team{
			{ID: "team-eng", Name: "Eng", Members: []string{"u-alice", "u-bob"}, CreatedBy: "admin"},
		},
	})
	journal := usecase.NewJournal(store, nil, nil, usecase.WithClock(func() time.Time { return fixedNow }))
	return &fixture{store: store, uc: New(journal, pageSize, nil)}
}

func (f *fixture) activity(t *testing.T) []string {
	t.Helper()
	var messages []string
	require.NoError(t, f.store.View(context.Background(), func(tx repository.Tx) error {
		entries, err := tx.Activity().List(context.Background())
		for _, e := range entries {
			messages = append(messages, e.Message)
		}
		return err
	}))
	return messages
}

func (f *fixture) stored(t *testing.T, id string) *domain.Task {
	t.Helper()
	var out *domain.Task
	require.NoError(t, f.store.View(context.Background(), func(tx repository.Tx) error {
		var err error
		out, err = tx.Tasks().GetByID(context.Background(), id)
		return err
	}))
	return out
}

func ptr[T any](v T) *T { return &v }

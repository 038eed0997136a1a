package activity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository/memory"
	"github.com/fastygo/teamboard/usecase"
)

var (
	admin = domain.Actor{UserID: "admin", Role: domain.RoleAdmin}
	alice = domain.Actor{UserID: "u-alice", Role: domain.RoleUser}
	now   = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
)

func newUseCase(pageSize int) *UseCase {
	var entries []domain.ActivityEntry
	for i := 0; i < 5; i++ {
		actor := admin
		if i%2 == 0 {
			actor = alice
		}
		entries = append(entries, domain.ActivityEntry{
			ID:        fmt.Sprintf("e%d", i),
			UserID:    actor.UserID,
			Role:      actor.Role,
			Message:   fmt.Sprintf("entry %d", i),
			Timestamp: now.Add(-time.Duration(i) * time.Minute),
		})
	}
	entries = append(entries, domain.ActivityEntry{ID: "gone", UserID: "u-removed", Message: "left"})

	store := memory.NewStoreFrom(&memory.State{
		Users: []domain.User{
			{ID: "admin", Username: "root", Role: domain.RoleAdmin},
			{ID: "u-alice", Username: "alice", Role: domain.RoleUser},
		},
		Activity: entries,
	})
	journal := usecase.NewJournal(store, nil, nil, usecase.WithClock(func() time.Time { return now }))
	return New(journal, pageSize, nil)
}

func TestList_AdminSeesEverything(t *testing.T) {
	uc := newUseCase(4)

	page, err := uc.List(context.Background(), admin, false, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 4)
	assert.Equal(t, "e0", page.Items[0].ID)
	assert.Equal(t, "alice", page.Items[0].UserName)

	last, err := uc.List(context.Background(), admin, false, 9)
	require.NoError(t, err)
	assert.Equal(t, 2, last.Page)
	require.Len(t, last.Items, 2)
	assert.Equal(t, domain.DeletedUserName, last.Items[1].UserName)
}

func TestList_Mine(t *testing.T) {
	uc := newUseCase(10)

	own, err := uc.List(context.Background(), admin, true, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, own.Total)

	// A regular user is restricted to their own entries either way.
	forced, err := uc.List(context.Background(), alice, false, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, forced.Total)
	for _, item := range forced.Items {
		assert.Equal(t, "u-alice", item.UserID)
	}
}

func TestClear(t *testing.T) {
	uc := newUseCase(10)

	assert.ErrorIs(t, uc.Clear(context.Background(), alice), domain.ErrForbidden)

	require.NoError(t, uc.Clear(context.Background(), admin))
	page, err := uc.List(context.Background(), admin, false, 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "🧹 Cleared the activity log", page.Items[0].Message)
	assert.Equal(t, "admin", page.Items[0].UserID)
	assert.Equal(t, now, page.Items[0].Timestamp)
}

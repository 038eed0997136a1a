package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
	"github.com/fastygo/teamboard/repository/memory"
)

type recordingPublisher struct {
	published [][]domain.ActivityEntry
	err       error
}

func (p *recordingPublisher) PublishActivity(ctx context.Context, entries []domain.ActivityEntry) error {
	p.published = append(p.published, entries)
	return p.err
}

var (
	actor = domain.Actor{UserID: "admin", Role: domain.RoleAdmin}
	now   = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
)

func activity(t *testing.T, j *Journal) []domain.ActivityEntry {
	t.Helper()
	var entries []domain.ActivityEntry
	require.NoError(t, j.View(context.Background(), func(tx repository.Tx) error {
		var err error
		entries, err = tx.Activity().List(context.Background())
		return err
	}))
	return entries
}

func TestJournal_RecordsNewestFirst(t *testing.T) {
	pub := &recordingPublisher{}
	j := NewJournal(memory.NewStore(), pub, nil, WithClock(func() time.Time { return now }))

	err := j.Update(context.Background(), actor, func(tx repository.Tx, record Record) error {
		record("first %d", 1)
		record("second")
		return nil
	})
	require.NoError(t, err)

	entries := activity(t, j)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Message)
	assert.Equal(t, "first 1", entries[1].Message)
	assert.Equal(t, "admin", entries[0].UserID)
	assert.Equal(t, domain.RoleAdmin, entries[0].Role)
	assert.Equal(t, now, entries[0].Timestamp)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)

	require.Len(t, pub.published, 1)
	assert.Len(t, pub.published[0], 2)
}

func TestJournal_FailedUpdateRecordsNothing(t *testing.T) {
	pub := &recordingPublisher{}
	j := NewJournal(memory.NewStore(), pub, nil)
	boom := errors.New("boom")

	err := j.Update(context.Background(), actor, func(tx repository.Tx, record Record) error {
		record("never")
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, activity(t, j))
	assert.Empty(t, pub.published)
}

func TestJournal_PublishFailureIsNotFatal(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	j := NewJournal(memory.NewStore(), pub, nil)

	err := j.Update(context.Background(), actor, func(tx repository.Tx, record Record) error {
		record("kept")
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, activity(t, j), 1)
}

func TestJournal_NothingRecordedSkipsPublish(t *testing.T) {
	pub := &recordingPublisher{}
	j := NewJournal(memory.NewStore(), pub, nil)

	require.NoError(t, j.Update(context.Background(), actor, func(tx repository.Tx, record Record) error {
		return nil
	}))
	assert.Empty(t, pub.published)
}

func TestJournal_ActivityLimit(t *testing.T) {
	j := NewJournal(memory.NewStore(), nil, nil, WithActivityLimit(3))
	assert.Equal(t, 3, j.Limit())

	for i := 0; i < 5; i++ {
		require.NoError(t, j.Update(context.Background(), actor, func(tx repository.Tx, record Record) error {
			record("entry %d", i)
			return nil
		}))
	}

	entries := activity(t, j)
	require.Len(t, entries, 3)
	assert.Equal(t, "entry 4", entries[0].Message)
	assert.Equal(t, "entry 2", entries[2].Message)

	assert.Equal(t, domain.ActivityLogLimit, NewJournal(memory.NewStore(), nil, nil, WithActivityLimit(0)).Limit())
}

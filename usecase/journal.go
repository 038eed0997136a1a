package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
)

// ActivityPublisher receives activity entries once the transaction that produced them has committed.
type ActivityPublisher interface {
	PublishActivity(ctx context.Context, entries []domain.ActivityEntry) error
}

// Record queues one activity message for the running transaction.
type Record func(format string, args ...interface{})

// Journal runs store transactions on behalf of an actor and appends the
// activity entries they record in the same transaction.
type Journal struct {
	store     repository.Store
	publisher ActivityPublisher
	logger    *zap.Logger
	limit     int
	now       func() time.Time
}

type JournalOption func(*Journal)

// WithActivityLimit overrides the number of retained activity entries.
func WithActivityLimit(limit int) JournalOption {
	return func(j *Journal) {
		if limit > 0 {
			j.limit = limit
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) JournalOption {
	return func(j *Journal) {
		if now != nil {
			j.now = now
		}
	}
}

func NewJournal(store repository.Store, publisher ActivityPublisher, logger *zap.Logger, opts ...JournalOption) *Journal {
	if logger == nil {
		logger = zap.NewNop()
	}
	j := &Journal{
		store:     store,
		publisher: publisher,
		logger:    logger,
		limit:     domain.ActivityLogLimit,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *Journal) Now() time.Time {
	return j.now().UTC()
}

func (j *Journal) Limit() int {
	return j.limit
}

func (j *Journal) Store() repository.Store {
	return j.store
}

func (j *Journal) View(ctx context.Context, fn func(tx repository.Tx) error) error {
	return j.store.View(ctx, fn)
}

// Update runs fn in a write transaction. Entries recorded by fn are appended
// to the activity log before commit and published after it.
func (j *Journal) Update(ctx context.Context, actor domain.Actor, fn func(tx repository.Tx, record Record) error) error {
	var entries []domain.ActivityEntry
	err := j.store.Update(ctx, func(tx repository.Tx) error {
		entries = entries[:0]
		record := func(format string, args ...interface{}) {
			entries = append(entries, domain.ActivityEntry{
				ID:        domain.NewID(),
				UserID:    actor.UserID,
				Role:      actor.Role,
				Message:   fmt.Sprintf(format, args...),
				Timestamp: j.Now(),
			})
		}
		if err := fn(tx, record); err != nil {
			return err
		}
		for _, entry := range entries {
			if err := tx.Activity().Append(ctx, entry, j.limit); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	j.publish(ctx, entries)
	return nil
}

func (j *Journal) publish(ctx context.Context, entries []domain.ActivityEntry) {
	if j.publisher == nil || len(entries) == 0 {
		return
	}
	if err := j.publisher.PublishActivity(ctx, entries); err != nil {
		j.logger.Warn("failed to publish activity", zap.Int("entries", len(entries)), zap.Error(err))
	}
}

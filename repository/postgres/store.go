package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/teamboard/repository"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Postgres-backed repository.Store. Every View and Update
// runs inside its own database transaction.
func NewStore(pool *pgxpool.Pool) repository.Store {
	return &store{pool: pool}
}

func (s *store) View(ctx context.Context, fn func(tx repository.Tx) error) error {
	return s.run(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly}, fn)
}

// Update retries the whole transaction when Postgres aborts it with a
// serialization failure or a deadlock, so fn must be safe to run again.
func (s *store) Update(ctx context.Context, fn func(tx repository.Tx) error) error {
	return retry(ctx, updateAttempts, func() error {
		return s.run(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, fn)
	})
}

const (
	updateAttempts = 3
	retryBackoff   = 20 * time.Millisecond
)

// SQLSTATE codes for transactions that may succeed when rerun.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
}

func retry(ctx context.Context, attempts int, fn func() error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil || !isRetryable(err) || attempt >= attempts {
			return err
		}
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
}

func (s *store) run(ctx context.Context, opts pgx.TxOptions, fn func(tx repository.Tx) error) (err error) {
	dbTx, err := s.pool.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := dbTx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = errors.Join(err, rbErr)
			}
		}
	}()

	if err = fn(&txRepos{q: dbTx}); err != nil {
		return err
	}
	return dbTx.Commit(ctx)
}

func (s *store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *store) Close() error {
	s.pool.Close()
	return nil
}

type txRepos struct {
	q querier
}

func (t *txRepos) Users() repository.UserRepository        { return &userRepository{q: t.q} }
func (t *txRepos) Tasks() repository.TaskRepository        { return &taskRepository{q: t.q} }
func (t *txRepos) Teams() repository.TeamRepository        { return &teamRepository{q: t.q} }
func (t *txRepos) Activity() repository.ActivityRepository { return &activityRepository{q: t.q} }

// Package bolt persists every collection as one JSON document per key in a
// single BoltDB bucket. Each Update rewrites the touched documents inside
// one Bolt transaction, so cross-collection changes commit together.
package bolt

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
	"github.com/fastygo/teamboard/repository/memory"
)

const defaultBucket = "collections"

// Store implements repository.Store on top of BoltDB.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = defaultBucket
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

func (s *Store) View(ctx context.Context, fn func(tx repository.Tx) error) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(btx *bolt.Tx) error {
		state, err := load(btx.Bucket(s.bucket))
		if err != nil {
			return err
		}
		return fn(memory.NewTx(state))
	})
}

func (s *Store) Update(ctx context.Context, fn func(tx repository.Tx) error) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(btx *bolt.Tx) error {
		b := btx.Bucket(s.bucket)
		state, err := load(b)
		if err != nil {
			return err
		}
		tx := memory.NewTx(state)
		if err := fn(tx); err != nil {
			return err
		}
		return save(b, tx)
	})
}

func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(s.bucket) == nil {
			return bolt.ErrBucketNotFound
		}
		return nil
	})
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Stats exposes Bolt statistics for monitoring endpoints.
func (s *Store) Stats() bolt.Stats {
	if s == nil || s.db == nil {
		return bolt.Stats{}
	}
	return s.db.Stats()
}

func load(b *bolt.Bucket) (*memory.State, error) {
	state := &memory.State{}
	targets := map[string]interface{}{
		memory.CollectionUsers:    &state.Users,
		memory.CollectionTasks:    &state.Tasks,
		memory.CollectionTeams:    &state.Teams,
		memory.CollectionActivity: &state.Activity,
	}
	for _, key := range memory.Collections {
		raw := b.Get([]byte(key))
		if len(raw) == 0 {
			continue
		}
		if err := json.Unmarshal(raw, targets[key]); err != nil {
			return nil, domain.Corrupted(key, err)
		}
	}
	return state, nil
}

func save(b *bolt.Bucket, tx *memory.Tx) error {
	state := tx.State()
	docs := map[string]interface{}{
		memory.CollectionUsers:    nonNil(state.Users),
		memory.CollectionTasks:    nonNil(state.Tasks),
		memory.CollectionTeams:    nonNil(state.Teams),
		memory.CollectionActivity: nonNil(state.Activity),
	}
	for _, key := range memory.Collections {
		if !tx.Dirty(key) {
			continue
		}
		payload, err := json.Marshal(docs[key])
		if err != nil {
			return err
		}
		if err := b.Put([]byte(key), payload); err != nil {
			return err
		}
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

var _ repository.Store = (*Store)(nil)

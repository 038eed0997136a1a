package memory

import (
	"context"
	"sync"

	"github.com/fastygo/teamboard/repository"
)

// Store is an in-process repository.Store. Each Update works on a copy of the
// state which replaces the current one only when fn succeeds.
type Store struct {
	mu    sync.RWMutex
	state *State
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{state: &State{}}
}

// NewStoreFrom seeds the store with an existing state.
func NewStoreFrom(state *State) *Store {
	if state == nil {
		state = &State{}
	}
	return &Store{state: state.Clone()}
}

func (s *Store) View(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	s.mu.RLock()
	snapshot := s.state.Clone()
	s.mu.RUnlock()
	return fn(NewTx(snapshot))
}

func (s *Store) Update(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.Clone()
	if err := fn(NewTx(work)); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return checkContext(ctx)
}

func (s *Store) Close() error {
	return nil
}

var _ repository.Store = (*Store)(nil)

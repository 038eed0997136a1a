package repository

import "context"

// Tx groups the repositories reachable inside one transaction.
type Tx interface {
	Users() UserRepository
	Tasks() TaskRepository
	Teams() TeamRepository
	Activity() ActivityRepository
}

// Store runs functions against a consistent view of every collection.
// An Update either commits all writes made through its Tx or none of them.
type Store interface {
	View(ctx context.Context, fn func(tx Tx) error) error
	Update(ctx context.Context, fn func(tx Tx) error) error
	Ping(ctx context.Context) error
	Close() error
}

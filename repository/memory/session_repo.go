package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
)

type sessionRepository struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]domain.Session
}

// NewSessionRepository keeps sessions in process memory, expiring them lazily.
func NewSessionRepository(ttl time.Duration) repository.SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &sessionRepository{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]domain.Session),
	}
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if session.IsExpired(r.now()) {
		delete(r.sessions, id)
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = r.now()
	}
	if session.ExpiresAt.Before(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}
	r.mu.Lock()
	r.sessions[session.ID] = *session
	r.mu.Unlock()
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
	return nil
}

func (r *sessionRepository) Extend(ctx context.Context, id string, ttlSeconds int) error {
	duration := time.Duration(ttlSeconds) * time.Second
	if duration <= 0 {
		duration = r.ttl
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.ExpiresAt = r.now().Add(duration)
	r.sessions[id] = session
	return nil
}

type attempt struct {
	count   int
	expires time.Time
}

// AttemptRepository counts failed logins in memory.
type AttemptRepository struct {
	mu       sync.Mutex
	now      func() time.Time
	attempts map[string]attempt
}

func NewAttemptRepository() *AttemptRepository {
	return &AttemptRepository{now: time.Now, attempts: make(map[string]attempt)}
}

// WithClock overrides the time source, for tests.
func (r *AttemptRepository) WithClock(now func() time.Time) *AttemptRepository {
	r.now = now
	return r
}

func (r *AttemptRepository) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	a, ok := r.attempts[key]
	if !ok || !a.expires.After(now) {
		a = attempt{expires: now.Add(window)}
	}
	a.count++
	r.attempts[key] = a
	return a.count, nil
}

func (r *AttemptRepository) Count(ctx context.Context, key string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attempts[key]
	if !ok || !a.expires.After(r.now()) {
		delete(r.attempts, key)
		return 0, nil
	}
	return a.count, nil
}

func (r *AttemptRepository) Reset(ctx context.Context, key string) error {
	r.mu.Lock()
	delete(r.attempts, key)
	r.mu.Unlock()
	return nil
}

var _ repository.AttemptRepository = (*AttemptRepository)(nil)

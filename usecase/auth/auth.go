package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/pkg/token"
	"github.com/fastygo/teamboard/repository"
	"github.com/fastygo/teamboard/usecase/view"
)

// Tokens issues and verifies access tokens.
type Tokens interface {
	Issue(userID, role, sessionID string) (string, time.Time, error)
	Parse(raw string) (*token.Claims, error)
}

type Config struct {
	MaxAttempts   int
	AttemptWindow time.Duration
	SessionTTL    time.Duration
}

type UseCase struct {
	store    repository.Store
	sessions repository.SessionRepository
	attempts repository.AttemptRepository
	tokens   Tokens
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

func New(store repository.Store, sessions repository.SessionRepository, attempts repository.AttemptRepository, tokens Tokens, cfg Config, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = 15 * time.Minute
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	return &UseCase{
		store:    store,
		sessions: sessions,
		attempts: attempts,
		tokens:   tokens,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

type LoginInput struct {
	Identifier string
	Password   string
	UserAgent  string
	RemoteAddr string
}

type LoginResult struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      view.UserView `json:"user"`
}

// Identity is the authenticated caller of a request.
type Identity struct {
	Actor     domain.Actor
	SessionID string
}

// Login accepts a username or an email address. Unknown users and wrong
// passwords produce the same error, and repeated failures lock the
// identifier out for the attempt window.
func (uc *UseCase) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	identifier := domain.FoldName(in.Identifier)
	if identifier == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	key := "login:" + identifier

	if uc.attempts != nil {
		count, err := uc.attempts.Count(ctx, key)
		if err != nil {
			uc.logger.Warn("failed to read login attempts", zap.Error(err))
		} else if count >= uc.cfg.MaxAttempts {
			return nil, domain.ErrTooManyAttempts
		}
	}

	var found *domain.User
	err := uc.store.View(ctx, func(tx repository.Tx) error {
		var err error
		if strings.Contains(identifier, "@") {
			found, err = tx.Users().GetByEmail(ctx, identifier)
		} else {
			found, err = tx.Users().GetByUsername(ctx, identifier)
		}
		return err
	})
	if err != nil && !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return nil, err
	}
	if found == nil || !CheckPassword(found.PasswordHash, in.Password) {
		uc.recordFailure(ctx, key)
		return nil, domain.ErrInvalidCredentials
	}

	if uc.attempts != nil {
		if err := uc.attempts.Reset(ctx, key); err != nil {
			uc.logger.Warn("failed to reset login attempts", zap.Error(err))
		}
	}

	session, err := uc.CreateSession(ctx, found.ID, in.UserAgent, in.RemoteAddr)
	if err != nil {
		return nil, err
	}
	signed, expires, err := uc.tokens.Issue(found.ID, string(found.Role), session.ID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to issue token", err)
	}

	uc.logger.Info("user logged in", zap.String("user_id", found.ID), zap.String("session_id", session.ID))
	return &LoginResult{
		Token:     signed,
		ExpiresAt: expires,
		User:      view.User(*found),
	}, nil
}

func (uc *UseCase) recordFailure(ctx context.Context, key string) {
	if uc.attempts == nil {
		return
	}
	n, err := uc.attempts.Increment(ctx, key, uc.cfg.AttemptWindow)
	if err != nil {
		uc.logger.Warn("failed to count login attempt", zap.Error(err))
		return
	}
	if n >= uc.cfg.MaxAttempts {
		uc.logger.Warn("login locked out", zap.String("key", key), zap.Int("attempts", n))
	}
}

// Logout revokes the session. Revoking an unknown session is not an error.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	err := uc.RevokeSession(ctx, sessionID)
	if err != nil && !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return err
	}
	return nil
}

// Authenticate verifies the token, the session it is bound to and the user's
// current role, which may have changed since the token was issued.
func (uc *UseCase) Authenticate(ctx context.Context, raw string) (*Identity, error) {
	claims, err := uc.tokens.Parse(raw)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	session, err := uc.GetSession(ctx, claims.SessionID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if session.UserID != claims.UserID {
		return nil, domain.ErrUnauthorized
	}

	var current *domain.User
	err = uc.store.View(ctx, func(tx repository.Tx) error {
		var err error
		current, err = tx.Users().GetByID(ctx, claims.UserID)
		return err
	})
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			_ = uc.sessions.Delete(ctx, session.ID)
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	return &Identity{
		Actor:     domain.Actor{UserID: current.ID, Role: current.Role},
		SessionID: session.ID,
	}, nil
}

// Refresh extends the session and issues a fresh token for it.
func (uc *UseCase) Refresh(ctx context.Context, identity Identity) (*LoginResult, error) {
	session, err := uc.RefreshSession(ctx, identity.SessionID, uc.cfg.SessionTTL)
	if err != nil {
		return nil, err
	}

	var current *domain.User
	err = uc.store.View(ctx, func(tx repository.Tx) error {
		var err error
		current, err = tx.Users().GetByID(ctx, session.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}

	signed, expires, err := uc.tokens.Issue(current.ID, string(current.Role), session.ID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to issue token", err)
	}
	return &LoginResult{Token: signed, ExpiresAt: expires, User: view.User(*current)}, nil
}

func (uc *UseCase) CreateSession(ctx context.Context, userID, userAgent, remoteAddr string) (*domain.Session, error) {
	now := uc.now()
	session := &domain.Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		UserAgent:  userAgent,
		RemoteAddr: remoteAddr,
		CreatedAt:  now,
		ExpiresAt:  now.Add(uc.cfg.SessionTTL),
	}

	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (uc *UseCase) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(uc.now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (uc *UseCase) RefreshSession(ctx context.Context, sessionID string, ttl time.Duration) (*domain.Session, error) {
	session, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Extend(ctx, sessionID, int(ttl.Seconds())); err != nil {
		return nil, err
	}
	session.ExpiresAt = uc.now().Add(ttl)
	return session, nil
}

func (uc *UseCase) RevokeSession(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}

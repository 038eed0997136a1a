package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/pkg/token"
	"github.com/fastygo/teamboard/repository"
	"github.com/fastygo/teamboard/repository/memory"
)

type fixture struct {
	uc       *UseCase
	store    *memory.Store
	sessions repository.SessionRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	store := memory.NewStoreFrom(&memory.State{
		Users: []domain.User{
			{ID: "u-alice", Username: "Alice", Email: "alice@example.com", PasswordHash: hash, Role: domain.RoleUser},
		},
	})
	issuer, err := token.NewIssuer("test-secret", "teamboard", time.Hour)
	require.NoError(t, err)

	sessions := memory.NewSessionRepository(time.Hour)
	uc := New(store, sessions, memory.NewAttemptRepository(), issuer, Config{MaxAttempts: 3}, nil)
	return &fixture{uc: uc, store: store, sessions: sessions}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
	}{
		{"username", "alice"},
		{"username any case", "ALICE"},
		{"email", "Alice@Example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			result, err := f.uc.Login(context.Background(), LoginInput{Identifier: tt.identifier, Password: "correct horse"})
			require.NoError(t, err)
			assert.NotEmpty(t, result.Token)
			assert.Equal(t, "u-alice", result.User.ID)

			identity, err := f.uc.Authenticate(context.Background(), result.Token)
			require.NoError(t, err)
			assert.Equal(t, domain.Actor{UserID: "u-alice", Role: domain.RoleUser}, identity.Actor)
		})
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Login(context.Background(), LoginInput{Identifier: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.uc.Login(context.Background(), LoginInput{Identifier: "nobody", Password: "correct horse"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.uc.Login(context.Background(), LoginInput{Identifier: "", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_Lockout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.uc.Login(ctx, LoginInput{Identifier: "alice", Password: "wrong"})
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	}

	_, err := f.uc.Login(ctx, LoginInput{Identifier: "alice", Password: "correct horse"})
	assert.ErrorIs(t, err, domain.ErrTooManyAttempts)
}

func TestLogin_SuccessResetsAttempts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _ = f.uc.Login(ctx, LoginInput{Identifier: "alice", Password: "wrong"})
	}
	_, err := f.uc.Login(ctx, LoginInput{Identifier: "alice", Password: "correct horse"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, _ = f.uc.Login(ctx, LoginInput{Identifier: "alice", Password: "wrong"})
	}
	_, err = f.uc.Login(ctx, LoginInput{Identifier: "alice", Password: "correct horse"})
	assert.NoError(t, err)
}

func TestAuthenticate_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	other, err := token.NewIssuer("other-secret", "teamboard", time.Hour)
	require.NoError(t, err)
	forged, _, err := other.Issue("u-alice", "admin", "s1")
	require.NoError(t, err)
	_, err = f.uc.Authenticate(ctx, forged)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.uc.Login(ctx, LoginInput{Identifier: "alice", Password: "correct horse"})
	require.NoError(t, err)
	identity, err := f.uc.Authenticate(ctx, result.Token)
	require.NoError(t, err)

	require.NoError(t, f.uc.Logout(ctx, identity.SessionID))
	require.NoError(t, f.uc.Logout(ctx, identity.SessionID))

	_, err = f.uc.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthenticate_UsesCurrentRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.uc.Login(ctx, LoginInput{Identifier: "alice", Password: "correct horse"})
	require.NoError(t, err)

	require.NoError(t, f.store.Update(ctx, func(tx repository.Tx) error {
		u, err := tx.Users().GetByID(ctx, "u-alice")
		if err != nil {
			return err
		}
		u.Role = domain.RoleAdmin
		return tx.Users().Update(ctx, u)
	}))

	identity, err := f.uc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.True(t, identity.Actor.IsAdmin())

	require.NoError(t, f.store.Update(ctx, func(tx repository.Tx) error {
		return tx.Users().Delete(ctx, "u-alice")
	}))
	_, err = f.uc.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.uc.Login(ctx, LoginInput{Identifier: "alice", Password: "correct horse"})
	require.NoError(t, err)
	identity, err := f.uc.Authenticate(ctx, result.Token)
	require.NoError(t, err)

	refreshed, err := f.uc.Refresh(ctx, *identity)
	require.NoError(t, err)
	assert.Equal(t, "u-alice", refreshed.User.ID)

	again, err := f.uc.Authenticate(ctx, refreshed.Token)
	require.NoError(t, err)
	assert.Equal(t, identity.SessionID, again.SessionID)

	require.NoError(t, f.uc.Logout(ctx, identity.SessionID))
	_, err = f.uc.Refresh(ctx, *identity)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "Correct horse"))
	assert.False(t, CheckPassword("", "correct horse"))
}

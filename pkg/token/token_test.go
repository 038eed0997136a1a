package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueParse(t *testing.T) {
	issuer, err := NewIssuer("secret", "teamboard", time.Hour)
	require.NoError(t, err)

	signed, expires, err := issuer.Issue("u1", "admin", "s1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := issuer.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "s1", claims.SessionID)
}

func TestParse_Rejects(t *testing.T) {
	issuer, err := NewIssuer("secret", "teamboard", time.Hour)
	require.NoError(t, err)

	expired, err := NewIssuer("secret", "teamboard", time.Hour)
	require.NoError(t, err)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, err := expired.Issue("u1", "user", "s1")
	require.NoError(t, err)

	foreign, err := NewIssuer("secret", "someone-else", time.Hour)
	require.NoError(t, err)
	wrongIssuer, _, err := foreign.Issue("u1", "user", "s1")
	require.NoError(t, err)

	noSession, _, err := issuer.Issue("u1", "user", "")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u1", SessionID: "s1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"garbage":      "abc.def.ghi",
		"expired":      stale,
		"issuer":       wrongIssuer,
		"no session":   noSession,
		"unsigned alg": none,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.Parse(raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNewIssuer(t *testing.T) {
	_, err := NewIssuer("", "x", time.Hour)
	assert.Error(t, err)

	issuer, err := NewIssuer("secret", "x", 0)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, issuer.TTL())
}

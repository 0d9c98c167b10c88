package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessToken_RoundTrip(t *testing.T) {
	tok, err := NewAccessToken("s3cret", "operator", "ADMIN", time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), tok.Exp, 5*time.Second)

	subject, role, err := ParseAccessToken("s3cret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "operator", subject)
	assert.Equal(t, "ADMIN", role)
}

func TestParseAccessToken_Rejects(t *testing.T) {
	expired, err := NewAccessToken("s3cret", "operator", "ADMIN", -time.Minute)
	require.NoError(t, err)
	valid, err := NewAccessToken("s3cret", "operator", "ADMIN", time.Minute)
	require.NoError(t, err)

	for name, tc := range map[string]struct{ secret, raw string }{
		"expired":      {"s3cret", expired.Token},
		"wrong secret": {"other", valid.Token},
		"garbage":      {"s3cret", "not.a.jwt"},
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := ParseAccessToken(tc.secret, tc.raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("pw", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "pw"))
	assert.False(t, VerifyPassword(hash, "PW"))

	assert.True(t, EqualSecret("pw", "pw"))
	assert.False(t, EqualSecret("pw", "pw "))
}

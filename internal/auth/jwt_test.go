package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	ts := TokenService{Secret: []byte("secret"), Issuer: "anihub", Duration: time.Hour}

	u := &User{ID: "u-1", Username: "alice", TokenVersion: 3}
	token, exp, err := ts.Sign(u)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := ts.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.Equal(t, "anihub", claims.Issuer)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	ts := TokenService{Secret: []byte("secret"), Issuer: "anihub", Duration: time.Hour}
	token, _, err := ts.Sign(&User{ID: "u-1", Username: "alice"})
	require.NoError(t, err)

	other := TokenService{Secret: []byte("different"), Issuer: "anihub", Duration: time.Hour}
	_, err = other.Parse(token)
	assert.Error(t, err)
}

func TestTokenRejectsExpired(t *testing.T) {
	ts := TokenService{Secret: []byte("secret"), Issuer: "anihub", Duration: -time.Minute}
	token, _, err := ts.Sign(&User{ID: "u-1", Username: "alice"})
	require.NoError(t, err)

	_, err = ts.Parse(token)
	assert.Error(t, err)
}

package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quepay/backend/internal/config"
)

func TestNewManager(t *testing.T) {
	_, err := NewManager(config.JWTConfig{AccessTokenTTL: time.Hour})
	assert.Error(t, err)

	_, err = NewManager(config.JWTConfig{SigningKey: "key"})
	assert.Error(t, err)

	m, err := NewManager(config.JWTConfig{SigningKey: "key", AccessTokenTTL: time.Hour})
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestNewJWTAndParse(t *testing.T) {
	m, err := NewManager(config.JWTConfig{SigningKey: "key", AccessTokenTTL: time.Hour})
	require.NoError(t, err)

	userID, err := uuid.NewV7()
	require.NoError(t, err)

	token, err := m.NewJWT(userID, "tester")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.ID)
	assert.Equal(t, "tester", claims.Username)

	ttl := time.Until(claims.ExpiresAt.Time)
	assert.Greater(t, ttl, 59*time.Minute)
	assert.LessOrEqual(t, ttl, time.Hour)
}

func TestParse_WrongKey(t *testing.T) {
	m1, err := NewManager(config.JWTConfig{SigningKey: "key-one", AccessTokenTTL: time.Hour})
	require.NoError(t, err)
	m2, err := NewManager(config.JWTConfig{SigningKey: "key-two", AccessTokenTTL: time.Hour})
	require.NoError(t, err)

	userID, err := uuid.NewV7()
	require.NoError(t, err)

	token, err := m1.NewJWT(userID, "tester")
	require.NoError(t, err)

	_, err = m2.Parse(token)
	assert.Error(t, err)
}

func TestParse_Expired(t *testing.T) {
	m, err := NewManager(config.JWTConfig{SigningKey: "key", AccessTokenTTL: time.Nanosecond})
	require.NoError(t, err)

	userID, err := uuid.NewV7()
	require.NoError(t, err)

	token, err := m.NewJWT(userID, "tester")
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	_, err = m.Parse(token)
	assert.Error(t, err)
}

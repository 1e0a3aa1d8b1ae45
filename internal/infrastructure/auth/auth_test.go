package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", 60)

	token, err := svc.Generate(7, true)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.ResellerID)
	assert.True(t, claims.IsRoot)

	assert.Equal(t, int64(3600), svc.ExpiresIn())
}

func TestJWTService_RejectsForeignSignature(t *testing.T) {
	token, err := NewJWTService("secret-a", 60).Generate(7, false)
	require.NoError(t, err)

	_, err = NewJWTService("secret-b", 60).Verify(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsGarbage(t *testing.T) {
	_, err := NewJWTService("secret", 60).Verify("not.a.token")
	assert.Error(t, err)
}

func TestBcryptPasswordHasher(t *testing.T) {
	hasher := NewBcryptPasswordHasher(4)

	hash, err := hasher.Hash("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.NoError(t, hasher.Verify("hunter22", hash))
	assert.Error(t, hasher.Verify("wrong", hash))
}

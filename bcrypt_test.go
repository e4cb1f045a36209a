package docauth_test

import (
	"testing"

	"github.com/goliatone/go-docauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasherHashPassword(t *testing.T) {
	hasher := docauth.NewHasher(bcrypt.MinCost)

	t.Run("hashes and verifies a password", func(t *testing.T) {
		hash, err := hasher.HashPassword("Str0ng!Passphrase")
		require.NoError(t, err)
		assert.NotEmpty(t, hash)
		assert.NotEqual(t, "Str0ng!Passphrase", hash)

		assert.NoError(t, hasher.ComparePasswordAndHash("Str0ng!Passphrase", hash))
	})

	t.Run("same password hashes to different values", func(t *testing.T) {
		first, err := hasher.HashPassword("Str0ng!Passphrase")
		require.NoError(t, err)

		second, err := hasher.HashPassword("Str0ng!Passphrase")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.HashPassword("")
		require.Error(t, err)
		assert.ErrorIs(t, err, docauth.ErrNoEmptyPassword)
	})
}

func TestHasherComparePasswordAndHash(t *testing.T) {
	hasher := docauth.NewHasher(bcrypt.MinCost)

	hash, err := hasher.HashPassword("Str0ng!Passphrase")
	require.NoError(t, err)

	t.Run("mismatch reports invalid credentials", func(t *testing.T) {
		err := hasher.ComparePasswordAndHash("wrong-password", hash)
		require.Error(t, err)
		assert.ErrorIs(t, err, docauth.ErrInvalidCredentials)
	})

	t.Run("malformed hash fails closed", func(t *testing.T) {
		err := hasher.ComparePasswordAndHash("Str0ng!Passphrase", "not-a-bcrypt-hash")
		require.Error(t, err)
		assert.ErrorIs(t, err, docauth.ErrInvalidCredentials)
	})

	t.Run("empty hash fails closed", func(t *testing.T) {
		err := hasher.ComparePasswordAndHash("Str0ng!Passphrase", "")
		require.Error(t, err)
		assert.ErrorIs(t, err, docauth.ErrInvalidCredentials)
	})
}

func TestNewHasherCostClamping(t *testing.T) {
	t.Run("out of range cost falls back to default", func(t *testing.T) {
		hasher := docauth.NewHasher(99)

		hash, err := hasher.HashPassword("Str0ng!Passphrase")
		require.NoError(t, err)

		cost, err := bcrypt.Cost([]byte(hash))
		require.NoError(t, err)
		assert.Equal(t, docauth.DefaultBcryptCost, cost)
	})

	t.Run("explicit cost is honored", func(t *testing.T) {
		hasher := docauth.NewHasher(bcrypt.MinCost)

		hash, err := hasher.HashPassword("Str0ng!Passphrase")
		require.NoError(t, err)

		cost, err := bcrypt.Cost([]byte(hash))
		require.NoError(t, err)
		assert.Equal(t, bcrypt.MinCost, cost)
	})
}

func TestRandomPasswordHash(t *testing.T) {
	hasher := docauth.NewHasher(bcrypt.MinCost)

	hash := hasher.RandomPasswordHash()
	assert.NotEmpty(t, hash)

	_, err := bcrypt.Cost([]byte(hash))
	assert.NoError(t, err)
}

package docauth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-docauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := docauth.DefaultConfig("a-signing-key-that-is-long-enough-00")

	assert.Equal(t, "docauth", cfg.GetIssuer())
	assert.Equal(t, 2*time.Hour, cfg.GetAccessTokenTTL())
	assert.Equal(t, 7*24*time.Hour, cfg.GetRefreshTokenTTL())
	assert.Equal(t, 12, cfg.GetBcryptCost())
	assert.True(t, cfg.GetEnforcePasswordPolicy())

	assert.NoError(t, cfg.Validate())
}

func TestSimpleConfigValidate(t *testing.T) {
	base := func() *docauth.SimpleConfig {
		return docauth.DefaultConfig("a-signing-key-that-is-long-enough-00")
	}

	t.Run("requires a signing key", func(t *testing.T) {
		cfg := base()
		cfg.SigningKey = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("production requires a long signing key", func(t *testing.T) {
		cfg := base()
		cfg.SigningKey = "short"
		cfg.Production = true
		assert.Error(t, cfg.Validate())

		cfg.SigningKey = strings.Repeat("k", docauth.MinSigningKeyLength)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("development tolerates a short signing key", func(t *testing.T) {
		cfg := base()
		cfg.SigningKey = "short"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("TTLs must be positive", func(t *testing.T) {
		cfg := base()
		cfg.AccessTokenTTL = 0
		assert.Error(t, cfg.Validate())

		cfg = base()
		cfg.RefreshTokenTTL = -time.Hour
		assert.Error(t, cfg.Validate())
	})

	t.Run("refresh must outlive access", func(t *testing.T) {
		cfg := base()
		cfg.AccessTokenTTL = 48 * time.Hour
		cfg.RefreshTokenTTL = time.Hour
		assert.Error(t, cfg.Validate())
	})

	t.Run("bcrypt cost must be in range", func(t *testing.T) {
		cfg := base()
		cfg.BcryptCost = 99
		require.Error(t, cfg.Validate())

		cfg.BcryptCost = 0
		assert.NoError(t, cfg.Validate())
	})
}

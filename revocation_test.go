package docauth_test

import (
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-docauth"
	"github.com/stretchr/testify/assert"
)

func TestRevocationListMembership(t *testing.T) {
	list := docauth.NewRevocationList()

	assert.False(t, list.IsRevoked("token-a"))

	list.Revoke("token-a", time.Now().Add(time.Hour))

	assert.True(t, list.IsRevoked("token-a"))
	assert.False(t, list.IsRevoked("token-b"))
	assert.Equal(t, 1, list.Len())
}

func TestRevocationListIgnoresEmptyToken(t *testing.T) {
	list := docauth.NewRevocationList()

	list.Revoke("", time.Now().Add(time.Hour))

	assert.False(t, list.IsRevoked(""))
	assert.Equal(t, 0, list.Len())
}

func TestRevocationListIdempotentRevoke(t *testing.T) {
	list := docauth.NewRevocationList()

	list.Revoke("token-a", time.Now().Add(time.Hour))
	list.Revoke("token-a", time.Now().Add(2*time.Hour))

	assert.True(t, list.IsRevoked("token-a"))
	assert.Equal(t, 1, list.Len())
}

func TestRevocationListEviction(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	list := docauth.NewRevocationList(docauth.WithRevocationClock(clock))

	list.Revoke("expired", now.Add(30*time.Minute))
	list.Revoke("alive", now.Add(2*time.Hour))
	list.Revoke("no-expiry", time.Time{})

	now = now.Add(time.Hour)
	list.EvictExpired()

	assert.False(t, list.IsRevoked("expired"))
	assert.True(t, list.IsRevoked("alive"))
	assert.True(t, list.IsRevoked("no-expiry"))
	assert.Equal(t, 2, list.Len())
}

func TestRevocationListStopIsIdempotent(t *testing.T) {
	list := docauth.NewRevocationList(docauth.WithEvictionInterval(time.Millisecond))
	list.Start()

	list.Stop()
	list.Stop()
}

func TestRevocationListConcurrentAccess(t *testing.T) {
	list := docauth.NewRevocationList()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			list.Revoke("shared-token", time.Now().Add(time.Hour))
		}()
		go func() {
			defer wg.Done()
			list.IsRevoked("shared-token")
		}()
	}
	wg.Wait()

	assert.True(t, list.IsRevoked("shared-token"))
	assert.Equal(t, 1, list.Len())
}

package credential

import (
	"context"
	"errors"
	"testing"
	"time"

	"order-notifier/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingExchanger struct {
	calls  int
	expiry time.Time
	err    error
}

func (e *countingExchanger) AccessToken(_ context.Context, _ models.ServiceCredential) (models.AccessToken, error) {
	e.calls++
	if e.err != nil {
		return models.AccessToken{}, e.err
	}
	return models.AccessToken{Value: "token-" + string(rune('0'+e.calls)), Expiry: e.expiry}, nil
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) (models.AccessToken, bool, error) {
	return models.AccessToken{}, false, errors.New("redis down")
}

func (failingCache) Set(context.Context, string, models.AccessToken, time.Duration) error {
	return errors.New("redis down")
}

func TestCachingProvider(t *testing.T) {
	ctx := context.Background()
	cred := models.ServiceCredential{ClientEmail: "notifier@shop-app", PrivateKey: "k", ProjectID: "shop-app"}
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	newProvider := func(next Exchanger, cache TokenCache) *CachingProvider {
		p := NewCachingProvider(next, cache, time.Minute, zap.NewNop())
		p.now = func() time.Time { return now }
		return p
	}

	t.Run("Second call is served from cache", func(t *testing.T) {
		next := &countingExchanger{expiry: now.Add(time.Hour)}
		cache := NewMemoryCache()
		cache.now = func() time.Time { return now }
		p := newProvider(next, cache)

		first, err := p.AccessToken(ctx, cred)
		require.NoError(t, err)
		second, err := p.AccessToken(ctx, cred)
		require.NoError(t, err)

		assert.Equal(t, 1, next.calls)
		assert.Equal(t, first, second)
	})

	t.Run("Token close to expiry is refreshed", func(t *testing.T) {
		next := &countingExchanger{expiry: now.Add(30 * time.Second)}
		p := newProvider(next, NewMemoryCache())

		_, err := p.AccessToken(ctx, cred)
		require.NoError(t, err)
		_, err = p.AccessToken(ctx, cred)
		require.NoError(t, err)

		assert.Equal(t, 2, next.calls)
	})

	t.Run("Different service accounts do not share tokens", func(t *testing.T) {
		next := &countingExchanger{expiry: now.Add(time.Hour)}
		cache := NewMemoryCache()
		cache.now = func() time.Time { return now }
		p := newProvider(next, cache)

		_, err := p.AccessToken(ctx, cred)
		require.NoError(t, err)
		other := cred
		other.ClientEmail = "other@shop-app"
		_, err = p.AccessToken(ctx, other)
		require.NoError(t, err)

		assert.Equal(t, 2, next.calls)
	})

	t.Run("Exchange errors are not cached", func(t *testing.T) {
		next := &countingExchanger{err: models.ErrCredentialExchangeFailed}
		p := newProvider(next, NewMemoryCache())

		_, err := p.AccessToken(ctx, cred)
		assert.ErrorIs(t, err, models.ErrCredentialExchangeFailed)
		_, err = p.AccessToken(ctx, cred)
		assert.ErrorIs(t, err, models.ErrCredentialExchangeFailed)
		assert.Equal(t, 2, next.calls)
	})

	t.Run("Cache failure falls back to exchange", func(t *testing.T) {
		next := &countingExchanger{expiry: now.Add(time.Hour)}
		p := newProvider(next, failingCache{})

		tok, err := p.AccessToken(ctx, cred)

		require.NoError(t, err)
		assert.Equal(t, "token-1", tok.Value)
	})
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := NewMemoryCache()
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Set(ctx, "k", models.AccessToken{Value: "v"}, time.Minute))

	got, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", got.Value)

	now = now.Add(2 * time.Minute)
	_, ok, err = cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

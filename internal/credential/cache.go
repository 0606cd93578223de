package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"order-notifier/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Exchanger получает access token по ключу сервис-аккаунта.
type Exchanger interface {
	AccessToken(ctx context.Context, cred models.ServiceCredential) (models.AccessToken, error)
}

// TokenCache хранит access token'ы с TTL.
type TokenCache interface {
	Get(ctx context.Context, key string) (models.AccessToken, bool, error)
	Set(ctx context.Context, key string, token models.AccessToken, ttl time.Duration) error
}

// CachingProvider переиспользует access token, пока до его истечения остается больше skew.
// Ключ кэша - client_email + scope, так что смена ключа сервис-аккаунта дает новый токен.
type CachingProvider struct {
	next   Exchanger
	cache  TokenCache
	skew   time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewCachingProvider оборачивает next кэшем.
func NewCachingProvider(next Exchanger, cache TokenCache, skew time.Duration, logger *zap.Logger) *CachingProvider {
	return &CachingProvider{
		next:   next,
		cache:  cache,
		skew:   skew,
		now:    time.Now,
		logger: logger.Named("caching_token_provider"),
	}
}

func cacheKey(cred models.ServiceCredential) string {
	return "fcm_access_token:" + cred.ClientEmail + "|" + MessagingScope
}

// AccessToken returns a cached token when it is still valid, otherwise exchanges a new one.
// Cache failures are logged and fall through to a fresh exchange.
func (p *CachingProvider) AccessToken(ctx context.Context, cred models.ServiceCredential) (models.AccessToken, error) {
	key := cacheKey(cred)

	cached, ok, err := p.cache.Get(ctx, key)
	switch {
	case err != nil:
		tokenCacheLookupsTotal.WithLabelValues("error").Inc()
		p.logger.Warn("Token cache lookup failed, exchanging a fresh token", zap.Error(err))
	case ok && cached.Valid(p.now(), p.skew):
		tokenCacheLookupsTotal.WithLabelValues("hit").Inc()
		return cached, nil
	default:
		tokenCacheLookupsTotal.WithLabelValues("miss").Inc()
	}

	tok, err := p.next.AccessToken(ctx, cred)
	if err != nil {
		return models.AccessToken{}, err
	}

	if tok.Expiry.IsZero() {
		return tok, nil
	}
	ttl := tok.Expiry.Sub(p.now()) - p.skew
	if ttl <= 0 {
		return tok, nil
	}
	if err := p.cache.Set(ctx, key, tok, ttl); err != nil {
		p.logger.Warn("Failed to store access token in cache", zap.Error(err))
	}
	return tok, nil
}

// --- In-memory cache ---

type memoryEntry struct {
	token     models.AccessToken
	expiresAt time.Time
}

// MemoryCache - кэш токенов в памяти процесса.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) (models.AccessToken, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return models.AccessToken{}, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return models.AccessToken{}, false, nil
	}
	return e.token, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, token models.AccessToken, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{token: token, expiresAt: c.now().Add(ttl)}
	return nil
}

// --- Redis cache ---

// RedisCache хранит токены в Redis, чтобы несколько инстансов делили один токен.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (models.AccessToken, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.AccessToken{}, false, nil
		}
		return models.AccessToken{}, false, fmt.Errorf("failed to get token from redis: %w", err)
	}
	var tok models.AccessToken
	if err := json.Unmarshal(raw, &tok); err != nil {
		return models.AccessToken{}, false, fmt.Errorf("failed to decode cached token: %w", err)
	}
	return tok, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, token models.AccessToken, ttl time.Duration) error {
	raw, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set token in redis: %w", err)
	}
	return nil
}

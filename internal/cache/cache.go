package cache

import (
	"context"
	"encoding/json"
	"time"

	"credscan/pkg/models"

	"github.com/redis/go-redis/v9"
)

// Cache is the caching interface. All cache operations go through here.
// Implementations must be safe for concurrent use.
type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	SetResult(ctx context.Context, contentHash string, result *models.AnalysisResult, ttl time.Duration) error
	GetResult(ctx context.Context, contentHash string) (*models.AnalysisResult, bool, error)
	IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error)
}

// RedisCache implements the Cache interface using go-redis/v9.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new RedisCache from a Redis URL.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisCache{client: redis.NewClient(opts)}, nil
}

// Close releases the underlying client connections.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// SetResult caches a completed analysis result keyed by content hash, so
// repeated submissions of identical content skip the scoring pipeline.
func (c *RedisCache) SetResult(ctx context.Context, contentHash string, result *models.AnalysisResult, ttl time.Duration) error {
	b, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, ResultKey(contentHash), b, ttl).Err()
}

func (c *RedisCache) GetResult(ctx context.Context, contentHash string) (*models.AnalysisResult, bool, error) {
	val, err := c.client.Get(ctx, ResultKey(contentHash)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var result models.AnalysisResult
	if err := json.Unmarshal(val, &result); err != nil {
		return nil, false, err
	}
	return &result, true, nil
}

func (c *RedisCache) IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, expiry)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

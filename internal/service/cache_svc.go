package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ContentWarnings/Backend/internal/metrics"
	"github.com/ContentWarnings/Backend/internal/model"
)

const (
	WarningCacheTTL = 5 * time.Minute
	MovieCacheTTL   = 2 * time.Minute
)

// CacheService provides a Redis cache-aside layer for warning and movie
// list reads. A CacheService with a nil client turns every call into a no-op.
type CacheService struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewCacheService connects to redisURL. If the URL is empty or the server is
// unreachable, it returns a disabled cache rather than an error.
func NewCacheService(redisURL string, log zerolog.Logger) *CacheService {
	if redisURL == "" {
		log.Info().Msg("redis: no URL configured, caching disabled")
		return &CacheService{log: log}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis: invalid URL, caching disabled")
		return &CacheService{log: log}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis: connection failed, caching disabled")
		_ = rdb.Close()
		return &CacheService{log: log}
	}

	log.Info().Msg("redis: connected, caching enabled")
	return &CacheService{rdb: rdb, log: log}
}

// NewCacheServiceWithClient wraps an existing client. Used by tests.
func NewCacheServiceWithClient(rdb *redis.Client, log zerolog.Logger) *CacheService {
	return &CacheService{rdb: rdb, log: log}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	if c == nil {
		return nil
	}
	return c.rdb
}

func (c *CacheService) enabled() bool {
	return c != nil && c.rdb != nil
}

// GetWarning returns the cached public view of a warning, or nil on a miss.
func (c *CacheService) GetWarning(ctx context.Context, id string) (*model.WarningView, error) {
	var v model.WarningView
	ok, err := c.get(ctx, warningKey(id), &v)
	if !ok || err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *CacheService) SetWarning(ctx context.Context, v *model.WarningView) error {
	return c.set(ctx, warningKey(v.ID), v, WarningCacheTTL)
}

// GetMovieWarnings returns the cached warning list for a movie, or nil on a miss.
func (c *CacheService) GetMovieWarnings(ctx context.Context, movieID int64) ([]model.WarningView, error) {
	var vs []model.WarningView
	ok, err := c.get(ctx, movieKey(movieID), &vs)
	if !ok || err != nil {
		return nil, err
	}
	if vs == nil {
		vs = []model.WarningView{}
	}
	return vs, nil
}

func (c *CacheService) SetMovieWarnings(ctx context.Context, movieID int64, vs []model.WarningView) error {
	return c.set(ctx, movieKey(movieID), vs, MovieCacheTTL)
}

// Invalidate drops the cached warning and its movie list. Errors are logged,
// never returned: a stale read is preferable to failing a write.
func (c *CacheService) Invalidate(ctx context.Context, warningID string, movieID int64) {
	if !c.enabled() {
		return
	}
	keys := []string{movieKey(movieID)}
	if warningID != "" {
		keys = append(keys, warningKey(warningID))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Str("warning_id", warningID).Int64("movie_id", movieID).Msg("cache: invalidate error")
	}
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if !c.enabled() {
		return nil
	}
	return c.rdb.Close()
}

func (c *CacheService) get(ctx context.Context, key string, dst any) (bool, error) {
	if !c.enabled() {
		return false, nil
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		metrics.CacheMiss()
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	metrics.CacheHit()
	return true, nil
}

func (c *CacheService) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	if !c.enabled() {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, ttl).Err()
}

func warningKey(id string) string {
	return fmt.Sprintf("warning:%s", id)
}

func movieKey(movieID int64) string {
	return fmt.Sprintf("movie:%d:warnings", movieID)
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisConfig holds connection settings for the shared cache
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// RedisCache stores values as JSON strings and tags as Redis sets.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache connects to Redis and pings it. Callers fall back to
// NewMemoryCache when this returns an error.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return &RedisCache{client: client, ttl: cfg.TTL, prefix: cfg.Prefix}, nil
}

func (c *RedisCache) key(k string) string    { return c.prefix + "cache:" + k }
func (c *RedisCache) tagKey(t string) string { return c.prefix + "tag:" + t }
func (c *RedisCache) verKey(t string) string { return c.prefix + "ver:" + t }

func (c *RedisCache) verKeys(tags []string) []string {
	keys := make([]string, len(tags))
	for i, t := range tags {
		keys[i] = c.verKey(t)
	}
	return keys
}

type mgetter interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

// versions reads the current version of each tag; a missing counter is 0
func (c *RedisCache) versions(ctx context.Context, r mgetter, tags []string) (map[string]int64, error) {
	out := make(map[string]int64, len(tags))
	if len(tags) == 0 {
		return out, nil
	}
	vals, err := r.MGet(ctx, c.verKeys(tags)...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis tag versions: %w", err)
	}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			out[tags[i]] = 0
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("redis tag version %s: %w", tags[i], err)
		}
		out[tags[i]] = n
	}
	return out, nil
}

func (c *RedisCache) Stamp(ctx context.Context, tags ...string) (Stamp, error) {
	versions, err := c.versions(ctx, c.client, tags)
	if err != nil {
		return Stamp{}, err
	}
	return Stamp{versions: versions}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value any, stamp Stamp, tags ...string) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	write := func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.key(key), data, c.ttl)
		for _, tag := range tags {
			pipe.SAdd(ctx, c.tagKey(tag), c.key(key))
			if c.ttl > 0 {
				// tag sets outlive their members by one TTL so a late Set never loses its tag
				pipe.Expire(ctx, c.tagKey(tag), 2*c.ttl)
			}
		}
		return nil
	}

	stamped := stamp.tags()
	if len(stamped) == 0 {
		if _, err := c.client.TxPipelined(ctx, write); err != nil {
			return fmt.Errorf("redis set %s: %w", key, err)
		}
		return nil
	}

	// WATCH the version counters so an invalidation between the check and
	// the write aborts the transaction
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := c.versions(ctx, tx, stamped)
		if err != nil {
			return err
		}
		if !stamp.current(func(tag string) int64 { return current[tag] }) {
			return nil
		}
		_, err = tx.TxPipelined(ctx, write)
		return err
	}, c.verKeys(stamped)...)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		members, err := c.client.SMembers(ctx, c.tagKey(tag)).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("redis tag %s: %w", tag, err)
		}
		keys := append(members, c.tagKey(tag))
		pipe := c.client.TxPipeline()
		pipe.Incr(ctx, c.verKey(tag))
		pipe.Del(ctx, keys...)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("redis invalidate %s: %w", tag, err)
		}
	}
	return nil
}

// Close releases the connection pool
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// New returns a Redis-backed cache when enabled and reachable, otherwise an
// in-process cache. A Redis failure never prevents startup.
func New(ctx context.Context, enabled bool, cfg RedisConfig, logger *slog.Logger) Cache {
	if !enabled {
		logger.Info("redis disabled, using in-memory cache")
		return NewMemoryCache(cfg.TTL)
	}

	rc, err := NewRedisCache(ctx, cfg)
	if err != nil {
		logger.Warn("redis unavailable, using in-memory cache", "error", err)
		return NewMemoryCache(cfg.TTL)
	}

	logger.Info("redis cache connected", "addr", cfg.Addr, "db", cfg.DB)
	return rc
}

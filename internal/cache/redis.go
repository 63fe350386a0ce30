package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/baharkarakas/typing-backend/internal/models"
)

const DefaultPrefix = "typing:leaders:"

// RedisLeaderboard stores JSON-encoded leaderboard pages in Redis.
type RedisLeaderboard struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisLeaderboard connects to url and pings it.
func NewRedisLeaderboard(ctx context.Context, url, prefix string, ttl time.Duration) (*RedisLeaderboard, error) {
	if url == "" {
		return nil, errors.New("redis URL is required")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisLeaderboard{client: client, prefix: prefix, ttl: ttl}, nil
}

func (c *RedisLeaderboard) genKey() string {
	return c.prefix + "gen"
}

func (c *RedisLeaderboard) key(gen int64, limit int) string {
	return c.prefix + "g" + strconv.FormatInt(gen, 10) + ":" + strconv.Itoa(limit)
}

func (c *RedisLeaderboard) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisLeaderboard) Get(ctx context.Context, limit int) ([]models.TypingTest, int64, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, 0, err
	}
	b, err := c.client.Get(ctx, c.key(gen, limit)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, gen, ErrCacheMiss
		}
		return nil, gen, err
	}
	var tests []models.TypingTest
	if err := json.Unmarshal(b, &tests); err != nil {
		return nil, gen, err
	}
	return tests, gen, nil
}

// Set writes under gen; pages for an outdated generation are never read and expire with the TTL.
func (c *RedisLeaderboard) Set(ctx context.Context, gen int64, limit int, tests []models.TypingTest) error {
	b, err := json.Marshal(tests)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(gen, limit), b, c.ttl).Err()
}

// Invalidate bumps the generation, orphaning every cached page.
func (c *RedisLeaderboard) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, c.genKey()).Err()
}

func (c *RedisLeaderboard) Close() error {
	return c.client.Close()
}

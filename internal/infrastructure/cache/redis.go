package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pnrdesk-service/pkg/pnr"
)

// ParseResult is the cached payload: the record plus the warnings that came
// with it, so a cache hit reproduces the original response exactly.
type ParseResult struct {
	Parsed   *pnr.ParsedPNR `json:"parsed"`
	Warnings []pnr.Warning  `json:"warnings"`
}

// RedisCache caches parse results keyed by a digest of the raw text and the
// reservation system it came from.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a redis-backed parse cache
func NewRedisCache(addr, password string, db int, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		ttl:    ttl,
	}
}

// GetParseResult returns the cached result for the text, or nil on a miss
func (c *RedisCache) GetParseResult(ctx context.Context, text string, source pnr.GDS) (*ParseResult, error) {
	data, err := c.client.Get(ctx, parseKey(text, source)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var result ParseResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SetParseResult stores a parse result under the text digest
func (c *RedisCache) SetParseResult(ctx context.Context, text string, source pnr.GDS, result *ParseResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, parseKey(text, source), payload, c.ttl).Err()
}

// Ping checks the connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying client
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func parseKey(text string, source pnr.GDS) string {
	sum := sha256.Sum256([]byte(string(source) + "\x00" + text))
	return fmt.Sprintf("cache:parse:%s", hex.EncodeToString(sum[:]))
}

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/pulsefeed-backend/internal/platform/logger"
)

// ViralCache caches viral-content lookups so the hot discovery surface does
// not hit the velocity table on every request. A nil *viralCache receiver is
// not used; callers keep a nil interface when Redis is not configured.
type ViralCache interface {
	Get(ctx context.Context, key string) ([]uuid.UUID, bool)
	Set(ctx context.Context, key string, ids []uuid.UUID, ttl time.Duration)
	Close() error
}

type viralCache struct {
	log *logger.Logger
	rdb *goredis.Client
}

// NewViralCache returns (nil, nil) when REDIS_ADDR is unset; the cache is
// optional.
func NewViralCache(log *logger.Logger) (ViralCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    strings.TrimSpace(os.Getenv("REDIS_PASSWORD")),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &viralCache{log: log.With("client", "ViralCache"), rdb: rdb}, nil
}

func (c *viralCache) Get(ctx context.Context, key string) ([]uuid.UUID, bool) {
	raw, err := c.rdb.Get(ctx, "viral:"+key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("viral cache read failed", "error", err)
		}
		return nil, false
	}
	var ids []uuid.UUID
	if err := json.Unmarshal(raw, &ids); err != nil {
		c.log.Warn("viral cache entry malformed", "error", err)
		return nil, false
	}
	return ids, true
}

func (c *viralCache) Set(ctx context.Context, key string, ids []uuid.UUID, ttl time.Duration) {
	raw, err := json.Marshal(ids)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, "viral:"+key, raw, ttl).Err(); err != nil {
		c.log.Warn("viral cache write failed", "error", err)
	}
}

func (c *viralCache) Close() error {
	return c.rdb.Close()
}

package oracle

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/gabriellangon/narrando-backend/internal/model"
)

// RedisCache is a time-boxed distance/path cache shared across planner
// instances. It bounds the growth the in-process map cannot: entries expire
// after TTL instead of living for the process lifetime.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache connects using a REDIS_URL-style address. A zero ttl
// defaults to 24h; rounded coordinate keys barely drift day to day.
func NewRedisCache(url string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCache{rdb: redis.NewClient(opt), ttl: ttl}, nil
}

func (c *RedisCache) GetDistance(ctx context.Context, key string) (float64, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	v, err := c.rdb.Get(ctx, "dist:"+key).Result()
	if err != nil {
		return 0, false
	}
	m, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return m, true
}

func (c *RedisCache) SetDistance(ctx context.Context, key string, meters float64) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_ = c.rdb.Set(ctx, "dist:"+key, strconv.FormatFloat(meters, 'f', -1, 64), c.ttl).Err()
}

func (c *RedisCache) GetPath(ctx context.Context, key string) ([]model.Location, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	v, err := c.rdb.Get(ctx, "path:"+key).Bytes()
	if err != nil {
		return nil, false
	}
	var path []model.Location
	if err := json.Unmarshal(v, &path); err != nil {
		return nil, false
	}
	return path, true
}

func (c *RedisCache) SetPath(ctx context.Context, key string, path []model.Location) {
	data, err := json.Marshal(path)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_ = c.rdb.Set(ctx, "path:"+key, data, c.ttl).Err()
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error { return c.rdb.Close() }

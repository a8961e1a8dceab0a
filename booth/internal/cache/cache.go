// Package cache keeps the course list in Redis; courses are read on every
// preview and change rarely.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Astemirdum/booth-service/booth/internal/model"
)

type Config struct {
	Enabled  bool          `envconfig:"REDIS_ENABLED" default:"false"`
	Addr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	TTL      time.Duration `envconfig:"REDIS_COURSES_TTL" default:"5m"`
}

type Courses interface {
	Get(ctx context.Context) ([]model.Course, bool)
	Set(ctx context.Context, cs []model.Course)
	Invalidate(ctx context.Context)
}

func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "redis ping")
	}
	return client, nil
}

const coursesKey = "booth:courses"

type RedisCourses struct {
	rdb redis.UniversalClient
	ttl time.Duration
	log *zap.Logger
}

func NewRedisCourses(rdb redis.UniversalClient, ttl time.Duration, log *zap.Logger) *RedisCourses {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCourses{rdb: rdb, ttl: ttl, log: log.Named("cache")}
}

// Get reports a miss on any Redis error; the caller falls back to the store.
func (c *RedisCourses) Get(ctx context.Context) ([]model.Course, bool) {
	b, err := c.rdb.Get(ctx, coursesKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Debug("get courses", zap.Error(err))
		}
		return nil, false
	}
	var cs []model.Course
	if err := json.Unmarshal(b, &cs); err != nil {
		c.log.Warn("decode cached courses", zap.Error(err))
		return nil, false
	}
	return cs, true
}

func (c *RedisCourses) Set(ctx context.Context, cs []model.Course) {
	b, err := json.Marshal(cs)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, coursesKey, b, c.ttl).Err(); err != nil {
		c.log.Debug("set courses", zap.Error(err))
	}
}

func (c *RedisCourses) Invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, coursesKey).Err(); err != nil {
		c.log.Warn("invalidate courses", zap.Error(err))
	}
}

type Noop struct{}

func (Noop) Get(context.Context) ([]model.Course, bool) { return nil, false }
func (Noop) Set(context.Context, []model.Course)        {}
func (Noop) Invalidate(context.Context)                 {}

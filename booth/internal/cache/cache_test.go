package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/booth-service/booth/internal/model"
)

func TestRedisCourses_Unreachable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()
	c := NewRedisCourses(rdb, time.Minute, zap.NewNop())
	ctx := context.Background()

	c.Set(ctx, []model.Course{{ID: "1", Name: "math"}})
	_, ok := c.Get(ctx)
	require.False(t, ok)
	c.Invalidate(ctx)
}

func TestNoop(t *testing.T) {
	var c Courses = Noop{}
	c.Set(context.Background(), []model.Course{{Name: "x"}})
	_, ok := c.Get(context.Background())
	require.False(t, ok)
}

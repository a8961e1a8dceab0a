package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewConfig(t *testing.T) {
	t.Setenv("BOOTH_HTTP_PORT", "9090")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("BOOKING_CHUNK_SIZE", "100")

	cfg := NewConfig(WithLogLevel(zapcore.DebugLevel), WithStoreBackend("memory"))

	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, "memory", cfg.Store.Backend)
	require.Equal(t, 100, cfg.Booking.ChunkSize)
	require.Equal(t, 8, cfg.Booking.CheckConcurrency)
	require.Equal(t, 3, cfg.Timeouts.MaxAttempts)
	require.Equal(t, 200*time.Millisecond, cfg.Timeouts.InitialBackoff)
	require.Equal(t, zapcore.DebugLevel, cfg.Log.LogLevel)
	require.Equal(t, "none", cfg.Events.Broker)
	require.Same(t, cfg, NewConfig())

	loc, err := cfg.Location()
	require.NoError(t, err)
	require.Equal(t, "Asia/Tokyo", loc.String())
}

func TestMasked(t *testing.T) {
	cfg := &Config{}
	cfg.Database.Password = "secret"
	cfg.Redis.Password = "secret"
	cfg.Events.RabbitMQ.URL = "amqp://booth:secret@mq:5672/vhost"

	m := masked(cfg)
	require.Equal(t, "***", m.Database.Password)
	require.Equal(t, "***", m.Redis.Password)
	require.Equal(t, "amqp://booth:xxxxx@mq:5672/vhost", m.Events.RabbitMQ.URL)
	require.Equal(t, "secret", cfg.Database.Password)

	require.Equal(t, "amqp://mq:5672/", redactURL("amqp://mq:5672/"))
	require.Equal(t, "***", redactURL("amqp://booth:secret@mq:%zz"))
}

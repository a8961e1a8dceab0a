package config

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/Astemirdum/booth-service/booth/internal/cache"
	"github.com/Astemirdum/booth-service/booth/internal/events"
	"github.com/Astemirdum/booth-service/pkg/logger"
	"github.com/Astemirdum/booth-service/pkg/postgres"
)

type HTTPServer struct {
	Host        string        `yaml:"host" envconfig:"BOOTH_HTTP_HOST" default:"0.0.0.0"`
	Port        string        `yaml:"port" envconfig:"BOOTH_HTTP_PORT" default:"8080"`
	ReadTimeout time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	// WriteTimeout of zero keeps the live stream open indefinitely.
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE"`
}

type Store struct {
	Backend string `yaml:"backend" envconfig:"STORE_BACKEND" default:"memory"`
}

type Booking struct {
	TimeZone         string `yaml:"timezone" envconfig:"BOOKING_TZ" default:"Asia/Tokyo"`
	ChunkSize        int    `yaml:"chunkSize" envconfig:"BOOKING_CHUNK_SIZE" default:"500"`
	CheckConcurrency int    `yaml:"checkConcurrency" envconfig:"BOOKING_CHECK_CONCURRENCY" default:"8"`
}

type Timeouts struct {
	Read           time.Duration `yaml:"read" envconfig:"TIMEOUT_READ" default:"5s"`
	Write          time.Duration `yaml:"write" envconfig:"TIMEOUT_WRITE" default:"10s"`
	Log            time.Duration `yaml:"log" envconfig:"TIMEOUT_LOG" default:"5s"`
	MaxAttempts    int           `yaml:"maxAttempts" envconfig:"TIMEOUT_MAX_ATTEMPTS" default:"3"`
	InitialBackoff time.Duration `yaml:"initialBackoff" envconfig:"TIMEOUT_INITIAL_BACKOFF" default:"200ms"`
	MaxBackoff     time.Duration `yaml:"maxBackoff" envconfig:"TIMEOUT_MAX_BACKOFF" default:"2s"`
}

type Config struct {
	Server   HTTPServer  `yaml:"server"`
	Database postgres.DB `yaml:"db"`
	Store    Store       `yaml:"store"`
	Redis    cache.Config
	Events   events.Config
	Booking  Booking    `yaml:"booking"`
	Timeouts Timeouts   `yaml:"timeouts"`
	Log      logger.Log `yaml:"log"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment once; later calls return the same config.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		// options win over the environment
		for _, op := range ops {
			op(&config)
		}
		cfg = &config
		printConfig(cfg)
	})

	return cfg
}

// Location resolves Booking.TimeZone; "today" is computed in it.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Booking.TimeZone)
}

func printConfig(cfg *Config) {
	jscfg, _ := json.MarshalIndent(masked(cfg), "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}

// masked hides every credential, including those embedded in URLs.
func masked(cfg *Config) Config {
	m := *cfg
	m.Database.Password = "***"
	m.Redis.Password = "***"
	m.Events.RabbitMQ.URL = redactURL(m.Events.RabbitMQ.URL)
	return m
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}

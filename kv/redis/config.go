package redis

import (
	"time"

	rclient "github.com/redis/go-redis/v9"
)

// Config содержит конфигурацию для подключения к Redis
type Config struct {
	Addr            string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password        string        `envconfig:"REDIS_PASSWORD"`
	DB              int           `envconfig:"REDIS_DB" default:"0"`
	KeyPrefix       string        `envconfig:"REDIS_KEY_PREFIX" default:"resume-mailer:"`
	MaxRetries      int           `envconfig:"REDIS_MAX_RETRIES" default:"3"`
	MinRetryBackoff time.Duration `envconfig:"REDIS_MIN_RETRY_BACKOFF" default:"8ms"`
	MaxRetryBackoff time.Duration `envconfig:"REDIS_MAX_RETRY_BACKOFF" default:"512ms"`
	DialTimeout     time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout     time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout    time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
	PoolSize        int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
}

// withDefaults заполняет нулевые поля, когда Config собран вручную.
// Пустой KeyPrefix остаётся пустым.
func (cfg Config) withDefaults() Config {
	def := func(d *time.Duration, v time.Duration) {
		if *d == 0 {
			*d = v
		}
	}

	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.PoolSize == 0 {
		cfg.PoolSize = 10
	}
	def(&cfg.MinRetryBackoff, 8*time.Millisecond)
	def(&cfg.MaxRetryBackoff, 512*time.Millisecond)
	def(&cfg.DialTimeout, 5*time.Second)
	def(&cfg.ReadTimeout, 3*time.Second)
	def(&cfg.WriteTimeout, 3*time.Second)
	return cfg
}

func (cfg Config) options() *rclient.Options {
	return &rclient.Options{
		Addr:            cfg.Addr,
		Password:        cfg.Password,
		DB:              cfg.DB,
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: cfg.MinRetryBackoff,
		MaxRetryBackoff: cfg.MaxRetryBackoff,
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		PoolSize:        cfg.PoolSize,
	}
}

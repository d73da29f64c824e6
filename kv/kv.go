package kv

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/pure-golang/resume-mailer/kv/memory"
	"github.com/pure-golang/resume-mailer/kv/noop"
	"github.com/pure-golang/resume-mailer/kv/redis"
)

// Provider определяет тип key-value хранилища
type Provider string

const (
	ProviderRedis  Provider = "redis"  // Redis хранилище
	ProviderMemory Provider = "memory" // хранилище в памяти процесса
	ProviderNoop   Provider = "noop"   // ничего не хранит
)

// Config содержит конфигурацию для key-value хранилища
type Config struct {
	Provider        Provider      `envconfig:"KV_PROVIDER" default:"memory"`
	CleanupInterval time.Duration `envconfig:"KV_MEMORY_CLEANUP_INTERVAL" default:"1m"`
	Redis           redis.Config  `ignored:"true"` // заполняется отдельно, используется когда ProviderRedis
}

// Store определяет интерфейс key-value хранилища
type Store interface {
	// Строки
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Expire(ctx context.Context, key string, expiration time.Duration) error

	// Хэши
	HGet(ctx context.Context, key, field string) (string, error)
	HSet(ctx context.Context, key, field string, value interface{}) error
	HSetValues(ctx context.Context, key string, values map[string]interface{}) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error

	// Подключение
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*redis.Client)(nil)
	_ Store = (*memory.Store)(nil)
	_ Store = (*noop.Store)(nil)
)

// New создаёт Store выбранного провайдера
func New(ctx context.Context, cfg Config, logger *slog.Logger) (Store, error) {
	switch cfg.Provider {
	case ProviderRedis:
		return redis.Connect(ctx, cfg.Redis, logger)
	case ProviderMemory, "":
		return memory.NewStore(cfg.CleanupInterval), nil
	case ProviderNoop:
		return noop.NewStore(), nil
	default:
		return nil, errors.Errorf("unknown kv provider: %s", cfg.Provider)
	}
}

// IsNotFound сообщает, что ключ или поле отсутствует, независимо от провайдера
func IsNotFound(err error) bool {
	return errors.Is(err, redis.ErrKeyNotFound) ||
		errors.Is(err, memory.ErrKeyNotFound) ||
		errors.Is(err, noop.ErrKeyNotFound)
}

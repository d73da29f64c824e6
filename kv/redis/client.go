package redis

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	rclient "github.com/redis/go-redis/v9"
)

// Client реализует kv.Store поверх Redis. Все ключи получают префикс
// из конфигурации, чтобы несколько сервисов могли делить одну базу.
type Client struct {
	rdb    *rclient.Client
	cfg    Config
	logger *slog.Logger

	mx     sync.RWMutex
	closed bool
}

// Connect создаёт новое подключение к Redis и проверяет его через PING
func Connect(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.WithGroup("redis")

	client := &Client{
		rdb:    rclient.NewClient(cfg.options()),
		cfg:    cfg,
		logger: logger,
	}
	if err := client.Ping(ctx); err != nil {
		_ = client.rdb.Close()
		return nil, err
	}

	logger.Info("connected to redis", "addr", cfg.Addr, "db", cfg.DB, "prefix", cfg.KeyPrefix)
	return client, nil
}

func (c *Client) key(k string) string {
	return c.cfg.KeyPrefix + k
}

func (c *Client) keys(ks []string) []string {
	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = c.key(k)
	}
	return out
}

// run выполняет команду внутри span. redis.Nil превращается в ErrKeyNotFound,
// остальные ошибки оборачиваются описанием msg.
func (c *Client) run(ctx context.Context, op, key, msg string, cmd func(ctx context.Context) error) error {
	c.mx.RLock()
	closed := c.closed
	c.mx.RUnlock()
	if closed {
		return ErrClosed
	}

	ctx, span := startSpan(ctx, op, key, c.cfg.DB)
	defer span.End()

	err := cmd(ctx)
	switch {
	case err == nil:
	case errors.Is(err, rclient.Nil):
		err = ErrKeyNotFound
	default:
		err = errors.Wrap(err, msg)
	}
	finishSpan(span, err)
	return err
}

// Close закрывает подключение к Redis. Повторный вызов безопасен.
func (c *Client) Close() error {
	c.mx.Lock()
	defer c.mx.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if err := c.rdb.Close(); err != nil && !errors.Is(err, rclient.ErrClosed) {
		return errors.Wrap(err, "failed to close redis connection")
	}
	c.logger.Debug("redis connection closed")
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.run(ctx, "Ping", "", "failed to ping redis", func(ctx context.Context) error {
		return c.rdb.Ping(ctx).Err()
	})
}

func (c *Client) Get(ctx context.Context, key string) (val string, err error) {
	err = c.run(ctx, "Get", key, "failed to get key "+key, func(ctx context.Context) error {
		val, err = c.rdb.Get(ctx, c.key(key)).Result()
		return err
	})
	return val, err
}

// Set сохраняет значение; expiration 0 означает без TTL
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.run(ctx, "Set", key, "failed to set key "+key, func(ctx context.Context) error {
		return c.rdb.Set(ctx, c.key(key), value, expiration).Err()
	})
}

func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.run(ctx, "Delete", "", "failed to delete keys", func(ctx context.Context) error {
		return c.rdb.Del(ctx, c.keys(keys)...).Err()
	})
}

func (c *Client) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return c.run(ctx, "Expire", key, "failed to set expiration for key "+key, func(ctx context.Context) error {
		return c.rdb.Expire(ctx, c.key(key), expiration).Err()
	})
}

func (c *Client) HGet(ctx context.Context, key, field string) (val string, err error) {
	err = c.run(ctx, "HGet", key, "failed to get hash field "+field, func(ctx context.Context) error {
		val, err = c.rdb.HGet(ctx, c.key(key), field).Result()
		return err
	})
	return val, err
}

func (c *Client) HSet(ctx context.Context, key, field string, value interface{}) error {
	return c.HSetValues(ctx, key, map[string]interface{}{field: value})
}

// HSetValues устанавливает несколько полей хеша одной командой
func (c *Client) HSetValues(ctx context.Context, key string, values map[string]interface{}) error {
	if len(values) == 0 {
		return nil
	}
	return c.run(ctx, "HSet", key, "failed to set hash fields in key "+key, func(ctx context.Context) error {
		return c.rdb.HSet(ctx, c.key(key), values).Err()
	})
}

// HGetAll возвращает пустую карту для отсутствующего ключа
func (c *Client) HGetAll(ctx context.Context, key string) (val map[string]string, err error) {
	err = c.run(ctx, "HGetAll", key, "failed to get hash "+key, func(ctx context.Context) error {
		val, err = c.rdb.HGetAll(ctx, c.key(key)).Result()
		return err
	})
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (c *Client) HDel(ctx context.Context, key string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return c.run(ctx, "HDel", key, "failed to delete hash fields from key "+key, func(ctx context.Context) error {
		return c.rdb.HDel(ctx, c.key(key), fields...).Err()
	})
}

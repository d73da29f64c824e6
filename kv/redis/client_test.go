package redis

import (
	"context"
	"testing"
	"time"

	rclient "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// offlineClient не подключается к серверу: годится для проверок без сети
func offlineClient() *Client {
	return &Client{
		rdb:    rclient.NewClient(&rclient.Options{Addr: "127.0.0.1:1", MaxRetries: -1}),
		cfg:    Config{}.withDefaults(),
		logger: testLogger(),
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()

	assert.Equal(t, "localhost:6379", cfg.Addr)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 8*time.Millisecond, cfg.MinRetryBackoff)
	assert.Equal(t, 512*time.Millisecond, cfg.MaxRetryBackoff)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.Equal(t, 10, cfg.PoolSize)

	custom := Config{Addr: "redis:6380", PoolSize: 3}.withDefaults()
	assert.Equal(t, "redis:6380", custom.Addr)
	assert.Equal(t, 3, custom.PoolSize)
}

func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := Connect(ctx, Config{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping redis")
}

func TestClient_CloseTwice(t *testing.T) {
	c := offlineClient()
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestClient_EmptyArguments(t *testing.T) {
	c := offlineClient()
	defer c.Close()

	ctx := context.Background()
	assert.NoError(t, c.Delete(ctx))
	assert.NoError(t, c.HDel(ctx, "key"))
	assert.NoError(t, c.HSetValues(ctx, "key", nil))
}

func TestClient_ClosedRejectsCommands(t *testing.T) {
	c := offlineClient()
	require.NoError(t, c.Close())

	ctx := context.Background()
	assert.ErrorIs(t, c.Ping(ctx), ErrClosed)
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, c.HSet(ctx, "k", "f", "v"), ErrClosed)
}

func TestClient_KeyPrefix(t *testing.T) {
	c := offlineClient()
	defer c.Close()

	assert.Equal(t, "k", c.key("k"))

	c.cfg.KeyPrefix = "resume-mailer:"
	assert.Equal(t, "resume-mailer:history:me@gmail.com", c.key("history:me@gmail.com"))
	assert.Equal(t, []string{"resume-mailer:a", "resume-mailer:b"}, c.keys([]string{"a", "b"}))
}

package redis

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type RedisSuite struct {
	suite.Suite
	container testcontainers.Container
	client    *Client
}

func TestRedisSuite(t *testing.T) {
	suite.Run(t, new(RedisSuite))
}

func (s *RedisSuite) SetupSuite() {
	if testing.Short() {
		s.T().Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	s.Require().NoError(err, "failed to start container")
	s.container = container

	host, err := container.Host(ctx)
	s.Require().NoError(err, "failed to get container host")

	port, err := container.MappedPort(ctx, "6379")
	s.Require().NoError(err, "failed to get container port")

	s.client, err = Connect(ctx, Config{Addr: fmt.Sprintf("%s:%s", host, port.Port()), KeyPrefix: "it:"}, testLogger())
	s.Require().NoError(err)
}

func (s *RedisSuite) TearDownSuite() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			s.T().Logf("failed to close client: %v", err)
		}
	}
	if s.container != nil {
		if err := s.container.Terminate(context.Background()); err != nil {
			s.T().Logf("failed to terminate container: %v", err)
		}
	}
}

func (s *RedisSuite) TestSetGetDelete() {
	ctx := context.Background()

	s.Require().NoError(s.client.Set(ctx, "draft:a", `{"subject":"hi"}`, 0))
	val, err := s.client.Get(ctx, "draft:a")
	s.Require().NoError(err)
	s.Equal(`{"subject":"hi"}`, val)

	s.Require().NoError(s.client.Delete(ctx, "draft:a"))
	_, err = s.client.Get(ctx, "draft:a")
	s.ErrorIs(err, ErrKeyNotFound)
}

func (s *RedisSuite) TestSetWithTTL() {
	ctx := context.Background()

	s.Require().NoError(s.client.Set(ctx, "ttl:a", "v", 500*time.Millisecond))
	s.Eventually(func() bool {
		_, err := s.client.Get(ctx, "ttl:a")
		return err == ErrKeyNotFound
	}, 3*time.Second, 100*time.Millisecond)
}

func (s *RedisSuite) TestHashOperations() {
	ctx := context.Background()
	key := "history:me@gmail.com"
	s.T().Cleanup(func() { _ = s.client.Delete(ctx, key) })

	s.Require().NoError(s.client.HSetValues(ctx, key, map[string]interface{}{
		"a@x.com": "2026-01-01T00:00:00Z",
		"b@x.com": "2026-01-02T00:00:00Z",
	}))
	s.Require().NoError(s.client.HSet(ctx, key, "c@x.com", "2026-01-03T00:00:00Z"))

	val, err := s.client.HGet(ctx, key, "b@x.com")
	s.Require().NoError(err)
	s.Equal("2026-01-02T00:00:00Z", val)

	_, err = s.client.HGet(ctx, key, "zzz@x.com")
	s.ErrorIs(err, ErrKeyNotFound)

	all, err := s.client.HGetAll(ctx, key)
	s.Require().NoError(err)
	s.Len(all, 3)

	s.Require().NoError(s.client.HDel(ctx, key, "a@x.com"))
	all, err = s.client.HGetAll(ctx, key)
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *RedisSuite) TestExpire() {
	ctx := context.Background()

	s.Require().NoError(s.client.HSet(ctx, "exp:h", "f", "v"))
	s.Require().NoError(s.client.Expire(ctx, "exp:h", 300*time.Millisecond))
	s.Eventually(func() bool {
		all, err := s.client.HGetAll(ctx, "exp:h")
		return err == nil && len(all) == 0
	}, 3*time.Second, 100*time.Millisecond)
}

func (s *RedisSuite) TestConcurrentOperations() {
	ctx := context.Background()
	key := "concurrent:h"
	s.T().Cleanup(func() { _ = s.client.Delete(ctx, key) })

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.NoError(s.client.HSet(ctx, key, fmt.Sprintf("r%d@x.com", i), i))
		}(i)
	}
	wg.Wait()

	all, err := s.client.HGetAll(ctx, key)
	s.Require().NoError(err)
	s.Len(all, 20)
}

func (s *RedisSuite) TestContextCancellation() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.client.Get(ctx, "any")
	s.Error(err)
}

func (s *RedisSuite) TestKeyPrefix() {
	ctx := context.Background()
	s.T().Cleanup(func() { _ = s.client.Delete(ctx, "draft:p") })

	s.Require().NoError(s.client.Set(ctx, "draft:p", "v", 0))

	n, err := s.client.rdb.Exists(ctx, "it:draft:p").Result()
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	n, err = s.client.rdb.Exists(ctx, "draft:p").Result()
	s.Require().NoError(err)
	s.Zero(n)
}

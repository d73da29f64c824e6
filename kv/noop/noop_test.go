package noop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_WritesAreDiscarded(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "v", time.Minute))
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, s.HSet(ctx, "h", "f", "v"))
	require.NoError(t, s.HSetValues(ctx, "h", map[string]interface{}{"g": 1}))
	_, err = s.HGet(ctx, "h", "f")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	all, err := s.HGetAll(ctx, "h")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStore_OtherOperations(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	assert.NoError(t, s.Delete(ctx, "a", "b"))
	assert.NoError(t, s.Expire(ctx, "a", time.Second))
	assert.NoError(t, s.HDel(ctx, "h", "f"))
	assert.NoError(t, s.Ping(ctx))
	assert.NoError(t, s.Close())
}

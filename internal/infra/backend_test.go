package infra

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneyfer/moneyfer/internal/config"
	"github.com/moneyfer/moneyfer/internal/logging"
	"github.com/moneyfer/moneyfer/internal/store"
)

func TestOpenMemory(t *testing.T) {
	res, err := Open(context.Background(), config.Config{StoreBackend: config.BackendMemory}, logging.Discard())
	require.NoError(t, err)
	defer res.Close()

	assert.NotNil(t, res.Backend)
	assert.Nil(t, res.Cache)
	assert.NoError(t, res.Ping(context.Background()))
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Config{StoreBackend: config.BackendRedis, RedisURL: "redis://" + mr.Addr()}

	res, err := Open(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	defer res.Close()

	require.NotNil(t, res.Cache)
	_, ok := res.Backend.(*store.RedisBackend)
	assert.True(t, ok)
	assert.NoError(t, res.Ping(context.Background()))
}

func TestOpenMemoryToleratesMissingRedis(t *testing.T) {
	cfg := config.Config{StoreBackend: config.BackendMemory, RedisURL: "redis://127.0.0.1:1"}
	res, err := Open(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	defer res.Close()
	assert.Nil(t, res.Cache)
}

func TestOpenRedisRequiresConnection(t *testing.T) {
	cfg := config.Config{StoreBackend: config.BackendRedis, RedisURL: "redis://127.0.0.1:1"}
	_, err := Open(context.Background(), cfg, logging.Discard())
	assert.Error(t, err)
}

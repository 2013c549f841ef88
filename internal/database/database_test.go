package database

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radiusdt/vector-insights/internal/config"
)

func TestDisabledStores(t *testing.T) {
	_, err := NewPostgresDB(context.Background(), config.DatabaseConfig{}, zap.NewNop())
	assert.True(t, errors.Is(err, ErrDisabled))

	_, err = NewRedisDB(context.Background(), config.RedisConfig{}, zap.NewNop())
	assert.True(t, errors.Is(err, ErrDisabled))
}

func TestNewRedisDB(t *testing.T) {
	mr := miniredis.RunT(t)

	db, err := NewRedisDB(context.Background(), config.RedisConfig{Enabled: true, Addr: mr.Addr()}, zap.NewNop())
	require.NoError(t, err)

	var c Checker = db
	assert.Equal(t, "redis", c.Name())
	assert.NoError(t, c.Health(context.Background()))

	mr.Close()
	assert.Error(t, db.Health(context.Background()))
	assert.NoError(t, db.Close())
}

func TestNewRedisDBUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisDB(context.Background(), config.RedisConfig{Enabled: true, Addr: addr}, zap.NewNop())
	assert.Error(t, err)
}

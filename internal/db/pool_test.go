package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolConfig_Defaults(t *testing.T) {
	cfg, err := poolConfig("postgres://user:pw@db.internal:5432/agentlink", PoolConfig{})
	require.NoError(t, err)

	assert.EqualValues(t, 10, cfg.MaxConns)
	assert.EqualValues(t, 1, cfg.MinConns)
	assert.Equal(t, 30*time.Minute, cfg.MaxConnLifetime)
	assert.Equal(t, "db.internal", cfg.ConnConfig.Host)
	assert.Equal(t, "agentlink", cfg.ConnConfig.Database)
	assert.Nil(t, cfg.AfterConnect)
}

func TestPoolConfig_Overrides(t *testing.T) {
	cfg, err := poolConfig("postgres://localhost/agentlink", PoolConfig{
		MaxConns: 25,
		MinConns: 3,
		Prepared: map[string]string{"get_job": "SELECT 1"},
	})
	require.NoError(t, err)

	assert.EqualValues(t, 25, cfg.MaxConns)
	assert.EqualValues(t, 3, cfg.MinConns)
	assert.NotNil(t, cfg.AfterConnect)
}

func TestConnect_InvalidConnString(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://%zz", PoolConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db: parse config")
}

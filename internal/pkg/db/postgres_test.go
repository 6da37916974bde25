package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-clock-bot/internal/config"
)

func TestPoolConfig_Defaults(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host: "localhost", Port: 5432, User: "clockbot", Password: "secret", Name: "clockbot",
	}

	pc, err := PoolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, int32(1), pc.MinConns)
	assert.Equal(t, 10*time.Second, pc.ConnConfig.ConnectTimeout)
	assert.Equal(t, time.Hour, pc.MaxConnLifetime)
	assert.Equal(t, 30*time.Minute, pc.MaxConnIdleTime)
	assert.Equal(t, "localhost", pc.ConnConfig.Host)
	assert.Equal(t, uint16(5432), pc.ConnConfig.Port)
	assert.Equal(t, "clockbot", pc.ConnConfig.Database)
}

func TestPoolConfig_Overrides(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host: "db", Port: 6543, User: "u", Name: "n",
		PoolSize:        7,
		ConnectTimeout:  3 * time.Second,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: time.Minute,
	}

	pc, err := PoolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, int32(7), pc.MaxConns)
	assert.Equal(t, 3*time.Second, pc.ConnConfig.ConnectTimeout)
	assert.Equal(t, 5*time.Minute, pc.MaxConnLifetime)
	assert.Equal(t, time.Minute, pc.MaxConnIdleTime)
}

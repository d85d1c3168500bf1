package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/placementhub/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Database.Host = "db.internal"
	cfg.Database.Port = "5432"
	cfg.Database.User = "placement"
	cfg.Database.Password = "secret"
	cfg.Database.DBName = "placementhub"
	cfg.Database.MaxOpenConns = 10
	cfg.Database.MaxIdleConns = 2
	cfg.Database.ConnMaxLifetime = "30m"
	return cfg
}

func TestPoolConfig(t *testing.T) {
	poolCfg, err := PoolConfig(testConfig())
	require.NoError(t, err)

	assert.Equal(t, int32(10), poolCfg.MaxConns)
	assert.Equal(t, int32(2), poolCfg.MinConns)
	assert.Equal(t, 30*time.Minute, poolCfg.MaxConnLifetime)
	assert.Equal(t, "db.internal", poolCfg.ConnConfig.Host)
	assert.Equal(t, "placementhub", poolCfg.ConnConfig.Database)
	assert.Equal(t, "placementhub", poolCfg.ConnConfig.RuntimeParams["application_name"])
}

func TestPoolConfig_Fallbacks(t *testing.T) {
	cfg := testConfig()
	cfg.Database.ConnMaxLifetime = "forever"
	cfg.Database.MaxOpenConns = 4
	cfg.Database.MaxIdleConns = 9

	poolCfg, err := PoolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, poolCfg.MaxConnLifetime)
	assert.Equal(t, int32(4), poolCfg.MaxConns)
	assert.Zero(t, poolCfg.MinConns, "idle floor above the cap is ignored")
}

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/placementhub/internal/config"
	"github.com/yigit/placementhub/internal/pkg/helpers"
	"github.com/yigit/placementhub/internal/pkg/logger"
)

const (
	connectTimeout    = 10 * time.Second
	healthCheckPeriod = time.Minute
	maxConnIdleTime   = 15 * time.Minute
)

// PoolConfig translates the database section of cfg into pgxpool settings.
func PoolConfig(cfg *config.Config) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.GetPostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	dbCfg := cfg.Database
	if dbCfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(dbCfg.MaxOpenConns)
	}
	if dbCfg.MaxIdleConns > 0 && int32(dbCfg.MaxIdleConns) <= poolCfg.MaxConns {
		poolCfg.MinConns = int32(dbCfg.MaxIdleConns)
	}
	poolCfg.MaxConnLifetime = helpers.ParseDuration(dbCfg.ConnMaxLifetime, time.Hour)
	poolCfg.MaxConnIdleTime = maxConnIdleTime
	poolCfg.HealthCheckPeriod = healthCheckPeriod
	poolCfg.ConnConfig.RuntimeParams["application_name"] = "placementhub"
	return poolCfg, nil
}

// Connect opens the pool backing every repository and verifies it with a ping.
// Connections that fail a ping on acquire are discarded.
func Connect(cfg *config.Config) (*pgxpool.Pool, error) {
	log := logger.Component("postgres")

	poolCfg, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}
	poolCfg.BeforeAcquire = func(ctx context.Context, conn *pgx.Conn) bool {
		if err := conn.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("Dropping unhealthy connection")
			return false
		}
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	log.Info().
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.DBName).
		Int32("maxConns", poolCfg.MaxConns).
		Int32("minConns", poolCfg.MinConns).
		Msg("Connected to PostgreSQL")
	return pool, nil
}

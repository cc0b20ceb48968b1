package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfig describes how the PostgreSQL pool backing the record store is sized.
type PoolConfig struct {
	URL            string
	MaxConns       int32
	ConnectTimeout time.Duration
}

const (
	defaultMaxConns       = 10
	defaultConnectTimeout = 5 * time.Second
)

// ErrMissingURL is returned when no connection string is configured.
var ErrMissingURL = errors.New("database url must not be empty")

// poolConfig parses the connection string and applies pool limits.
func poolConfig(cfg PoolConfig) (*pgxpool.Config, error) {
	if cfg.URL == "" {
		return nil, ErrMissingURL
	}
	if cfg.MaxConns < 0 {
		return nil, fmt.Errorf("invalid max connections: %d", cfg.MaxConns)
	}

	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}

	pc.MaxConns = defaultMaxConns
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.ConnConfig.ConnectTimeout = defaultConnectTimeout
	if cfg.ConnectTimeout > 0 {
		pc.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}
	pc.MaxConnLifetime = time.Hour
	pc.MaxConnIdleTime = 15 * time.Minute
	pc.HealthCheckPeriod = 30 * time.Second
	return pc, nil
}

// Connect opens a pgx pool and verifies connectivity with a ping.
func Connect(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

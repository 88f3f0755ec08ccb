package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"profileapi/src/infra/config"
)

// NewPostgresDialer returns a Dialer that opens pgx connections using cfg.
func NewPostgresDialer(cfg config.DatabaseConfig) (Dialer, error) {
	connCfg, err := pgx.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	connCfg.ConnectTimeout = cfg.ConnectTimeout

	return func(ctx context.Context) (Conn, error) {
		conn, err := pgx.ConnectConfig(ctx, connCfg.Copy())
		if err != nil {
			return nil, err
		}
		return conn, nil
	}, nil
}

// Open creates the PostgreSQL pool and attempts one warm-up borrow.
// An unreachable store is logged, not returned: the server starts in
// degraded mode and the readiness gate reports the outage per request.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*Pool, error) {
	dial, err := NewPostgresDialer(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := NewPool(cfg, dial, log)
	if err != nil {
		return nil, err
	}

	if err := pool.Ready(ctx); err != nil {
		log.Warn("database not reachable at startup",
			"host", cfg.Host,
			"port", cfg.Port,
			"database", cfg.Name,
			"error", err,
		)
		return pool, nil
	}

	log.Info("database connection established",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Name,
		"pool_size", cfg.PoolSize,
	)

	return pool, nil
}

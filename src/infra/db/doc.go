// Package db provides database connection management.
//
// This package is responsible for:
//   - a bounded connection pool with a FIFO wait queue (Pool)
//   - scoped acquisition so connections are always returned (Pool.WithConn)
//   - liveness probing for the readiness gate (Pool.Ready)
//   - pool metrics for Prometheus (PoolCollector)
//
// Example usage:
//
//	pool, err := db.Open(ctx, cfg.Database, log)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	err = pool.WithConn(ctx, func(ctx context.Context, conn db.Conn) error {
//	    rows, err := conn.Query(ctx, "SELECT 1")
//	    ...
//	})
package db

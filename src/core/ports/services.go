package ports

import (
	"context"

	"profileapi/src/core/domain"
)

// ConnectionPool is the view of the database pool used outside infra.
type ConnectionPool interface {
	// Ready borrows a connection and immediately releases it.
	Ready(ctx context.Context) error

	// Stats returns a snapshot of pool occupancy.
	Stats() domain.PoolStats
}

package usecase

import (
	"context"
	"log/slog"

	"profileapi/src/core/domain"
	"profileapi/src/core/ports"
)

// HealthService runs the database diagnostic behind /api/db-test.
type HealthService struct {
	repo ports.ProfileRepository
	pool ports.ConnectionPool
	log  *slog.Logger
}

// NewHealthService creates a new HealthService.
func NewHealthService(repo ports.ProfileRepository, pool ports.ConnectionPool, log *slog.Logger) *HealthService {
	return &HealthService{
		repo: repo,
		pool: pool,
		log:  log,
	}
}

// DatabaseStatus is the outcome of a successful database probe.
type DatabaseStatus struct {
	Status string           `json:"status"`
	Result map[string]any   `json:"result"`
	Pool   domain.PoolStats `json:"pool"`
}

// CheckDatabase issues a trivial query and reports pool occupancy.
func (s *HealthService) CheckDatabase(ctx context.Context) (*DatabaseStatus, error) {
	row, err := s.repo.Probe(ctx)
	if err != nil {
		s.log.Warn("database probe failed", "error", err)
		return nil, err
	}
	return &DatabaseStatus{
		Status: "Database connection successful",
		Result: row,
		Pool:   s.pool.Stats(),
	}, nil
}

package repo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"profileapi/src/core/domain"
	"profileapi/src/core/ports"
	"profileapi/src/infra/db"
)

const (
	lookupProfileQuery = `SELECT * FROM user_data WHERE email = $1`
	probeQuery         = `SELECT 1 AS solution`
)

var _ ports.ProfileRepository = (*ProfileRepository)(nil)

// ProfileRepository implements ports.ProfileRepository using pgx.
type ProfileRepository struct {
	pool *db.Pool
	log  *slog.Logger
}

// NewProfileRepository constructs a repository backed by pool.
func NewProfileRepository(pool *db.Pool, log *slog.Logger) *ProfileRepository {
	return &ProfileRepository{
		pool: pool,
		log:  log,
	}
}

func (r *ProfileRepository) LookupByKey(ctx context.Context, email string) (domain.Profile, error) {
	rows, err := r.query(ctx, lookupProfileQuery, email)
	if err != nil {
		return nil, err
	}

	switch len(rows) {
	case 0:
		return nil, domain.NewNotFoundError("User")
	case 1:
	default:
		r.log.Warn("duplicate profile rows, using the first",
			"rows", len(rows),
		)
	}

	return domain.Profile(rows[0]), nil
}

func (r *ProfileRepository) Probe(ctx context.Context) (map[string]any, error) {
	rows, err := r.query(ctx, probeQuery)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("probe query returned no rows")
	}
	return rows[0], nil
}

// query runs sql on a borrowed connection and collects every row as a
// column-name map. Unavailable errors are returned unwrapped so callers can
// tell them apart from query failures.
func (r *ProfileRepository) query(ctx context.Context, sql string, args ...any) ([]map[string]any, error) {
	var out []map[string]any
	err := r.pool.WithConn(ctx, func(ctx context.Context, conn db.Conn) error {
		rows, err := conn.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToMap)
		return err
	})
	if err != nil {
		if domain.IsUnavailable(err) {
			return nil, err
		}
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return out, nil
}

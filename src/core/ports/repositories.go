// Package ports defines interfaces (ports) that connect core domain to infrastructure.
// These interfaces follow the ports and adapters (hexagonal) architecture pattern.
//
// Ports are defined here in the core layer, while implementations (adapters)
// live in src/infra. This keeps the core free of database concerns.
package ports

import (
	"context"

	"profileapi/src/core/domain"
)

// ProfileRepository looks up read-only user profiles.
type ProfileRepository interface {
	// LookupByKey returns the profile stored under email.
	// It returns domain.ErrNotFound when no row matches and an error wrapping
	// domain.ErrUnavailable when no connection could be borrowed. If several
	// rows share the key, the first row returned by the store wins.
	LookupByKey(ctx context.Context, email string) (domain.Profile, error)

	// Probe runs a trivial liveness query and returns its single row.
	Probe(ctx context.Context) (map[string]any, error)
}

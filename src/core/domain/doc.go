// Package domain contains the core domain model for the application.
//
// This package defines:
//   - Profile: a read-only user_data row keyed by email
//   - PoolStats: a snapshot of connection pool occupancy
//   - Domain Errors: not found, invalid input and dependency unavailable
//
// Rules for this package:
//   - No external dependencies except the standard library
//   - No infrastructure concerns (database, HTTP, etc.)
package domain

// Package repo contains PostgreSQL implementations of repository interfaces.
//
// This package implements the ports defined in src/core/ports.
// Repositories receive the connection pool via constructor injection and
// borrow connections only through db.Pool.WithConn, so a connection is
// released on every exit path.
package repo

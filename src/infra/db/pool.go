package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/puddle/v2"

	"profileapi/src/core/domain"
	"profileapi/src/infra/config"
)

// closeTimeout bounds closing a connection the pool is discarding.
const closeTimeout = 5 * time.Second

// Conn is the part of a pgx connection the pool lends out.
// *pgx.Conn satisfies it, as do pgxmock connections in tests.
type Conn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Dialer opens a new session with the store.
type Dialer func(ctx context.Context) (Conn, error)

// dialError marks failures raised while establishing a session so they can
// be told apart from acquire timeouts.
type dialError struct {
	err error
}

func (e *dialError) Error() string { return "connect: " + e.err.Error() }
func (e *dialError) Unwrap() error { return e.err }

// dialingKey carries a per-borrow flag that is set while its dial runs.
type dialingKey struct{}

// Pool is a bounded set of reusable connections.
//
// At most cfg.PoolSize connections are checked out at any time. Borrowers
// beyond that wait in FIFO order for at most cfg.AcquireTimeout, and are
// turned away immediately once cfg.QueueLimit borrowers are already waiting.
// Connections are dialed lazily.
type Pool struct {
	res *puddle.Pool[Conn]
	cfg config.DatabaseConfig
	log *slog.Logger

	// pending counts callers currently inside Borrow.
	pending atomic.Int32
}

// NewPool creates a pool that dials connections with dial.
func NewPool(cfg config.DatabaseConfig, dial Dialer, log *slog.Logger) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pool{cfg: cfg, log: log}

	res, err := puddle.NewPool(&puddle.Config[Conn]{
		Constructor: func(ctx context.Context) (Conn, error) {
			if d, ok := ctx.Value(dialingKey{}).(*atomic.Bool); ok {
				d.Store(true)
				defer d.Store(false)
			}
			ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
			defer cancel()
			conn, err := dial(ctx)
			if err != nil {
				return nil, &dialError{err: err}
			}
			return conn, nil
		},
		Destructor: p.destroy,
		MaxSize:    int32(cfg.PoolSize),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	p.res = res

	return p, nil
}

func (p *Pool) destroy(conn Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := conn.Close(ctx); err != nil {
		p.log.Debug("closing pooled connection failed", "error", err)
	}
}

// Borrow checks out a connection. The caller must Release the lease on
// every path; prefer WithConn, which does so automatically.
//
// Failures wrap domain.ErrUnavailable with a reason describing why no
// connection could be lent.
func (p *Pool) Borrow(ctx context.Context) (*Lease, error) {
	pending := p.pending.Add(1)
	defer p.pending.Add(-1)

	if p.cfg.QueueLimit > 0 {
		stat := p.res.Stat()
		free := stat.MaxResources() - stat.AcquiredResources()
		if queued := pending - 1 - free; queued >= int32(p.cfg.QueueLimit) {
			return nil, domain.NewUnavailableError(domain.ReasonQueueFull, nil)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.AcquireTimeout)
	defer cancel()

	// The constructor sees the acquire context's values, so it can report
	// whether this borrow was still dialing when its deadline passed.
	dialing := new(atomic.Bool)
	ctx = context.WithValue(ctx, dialingKey{}, dialing)

	for {
		res, err := p.res.Acquire(ctx)
		if err != nil {
			return nil, p.acquireError(err, dialing.Load())
		}

		if p.cfg.IdleCheckAfter > 0 && res.IdleDuration() > p.cfg.IdleCheckAfter {
			if err := res.Value().Ping(ctx); err != nil {
				p.log.Warn("discarding stale connection", "error", err)
				res.Destroy()
				continue
			}
		}

		return &Lease{res: res}, nil
	}
}

func (p *Pool) acquireError(err error, dialing bool) error {
	var de *dialError
	switch {
	case errors.As(err, &de):
		return domain.NewUnavailableError(domain.ReasonConnectFailed, de.err)
	case errors.Is(err, puddle.ErrClosedPool):
		return domain.NewUnavailableError(domain.ReasonPoolClosed, err)
	case dialing && errors.Is(err, context.DeadlineExceeded):
		return domain.NewUnavailableError(domain.ReasonConnectFailed, err)
	case errors.Is(err, context.DeadlineExceeded):
		return domain.NewUnavailableError(domain.ReasonPoolExhausted, err)
	case errors.Is(err, context.Canceled):
		return domain.NewUnavailableError(domain.ReasonCanceled, err)
	default:
		return domain.NewUnavailableError(domain.ReasonConnectFailed, err)
	}
}

// WithConn borrows a connection, runs fn with it and releases it on every
// exit path, including a panic inside fn.
func (p *Pool) WithConn(ctx context.Context, fn func(ctx context.Context, conn Conn) error) error {
	lease, err := p.Borrow(ctx)
	if err != nil {
		return err
	}
	defer lease.Release()

	return fn(ctx, lease.Conn())
}

// Ready borrows a connection and immediately returns it, proving the store
// can currently serve a request.
func (p *Pool) Ready(ctx context.Context) error {
	lease, err := p.Borrow(ctx)
	if err != nil {
		return err
	}
	lease.Release()
	return nil
}

// Stats returns a snapshot of pool occupancy.
func (p *Pool) Stats() domain.PoolStats {
	stat := p.res.Stat()
	return domain.PoolStats{
		Capacity:        stat.MaxResources(),
		Acquired:        stat.AcquiredResources(),
		Idle:            stat.IdleResources(),
		Total:           stat.TotalResources(),
		Constructing:    stat.ConstructingResources(),
		Waiting:         p.pending.Load(),
		AcquireCount:    stat.AcquireCount(),
		CanceledAcquire: stat.CanceledAcquireCount(),
	}
}

// Reset closes every idle connection. Checked-out connections are closed
// when they are released.
func (p *Pool) Reset() {
	p.res.Reset()
}

// Close closes the pool, waiting for checked-out connections to be released.
// Call this during graceful shutdown.
func (p *Pool) Close() {
	p.res.Close()
	p.log.Info("database pool closed")
}

// Lease is a checked-out connection.
type Lease struct {
	res  *puddle.Resource[Conn]
	once sync.Once
}

// Conn returns the leased connection. It must not be used after Release.
func (l *Lease) Conn() Conn {
	return l.res.Value()
}

// Release returns the connection to the pool. Calling it more than once is a
// no-op. Connections that were closed while leased are discarded instead.
func (l *Lease) Release() {
	l.once.Do(func() {
		if c, ok := l.res.Value().(interface{ IsClosed() bool }); ok && c.IsClosed() {
			l.res.Destroy()
			return
		}
		l.res.Release()
	})
}

package db

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"profileapi/src/core/domain"
	"profileapi/src/infra/config"
	"profileapi/src/infra/logger"
)

type stubConn struct {
	id     int
	broken atomic.Bool
	closed atomic.Bool
}

func (c *stubConn) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("stub: query not supported")
}

func (c *stubConn) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func (c *stubConn) Ping(context.Context) error {
	if c.broken.Load() {
		return errors.New("stub: connection reset by peer")
	}
	return nil
}

func (c *stubConn) Close(context.Context) error {
	c.closed.Store(true)
	return nil
}

// closingConn reports itself closed, like a pgx.Conn after a fatal error.
type closingConn struct {
	stubConn
}

func (c *closingConn) IsClosed() bool { return true }

type stubDialer struct {
	mu    sync.Mutex
	conns []*stubConn
	err   error
}

func (d *stubDialer) dial(context.Context) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	c := &stubConn{id: len(d.conns) + 1}
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *stubDialer) dialed() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns)
}

// hangingDial models a store that silently drops connection attempts.
func hangingDial(ctx context.Context) (Conn, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func testDBConfig(size int) config.DatabaseConfig {
	return config.DatabaseConfig{
		PoolSize:       size,
		ConnectTimeout: time.Second,
		AcquireTimeout: 5 * time.Second,
		QueryTimeout:   time.Second,
	}
}

func newTestPool(t *testing.T, cfg config.DatabaseConfig, dial Dialer) *Pool {
	t.Helper()
	pool, err := NewPool(cfg, dial, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestPool_Capacity(t *testing.T) {
	t.Run("Should never lend more than capacity under concurrent load", func(t *testing.T) {
		d := &stubDialer{}
		pool := newTestPool(t, testDBConfig(10), d.dial)

		var active, peak atomic.Int32
		g, ctx := errgroup.WithContext(context.Background())
		for i := 0; i < 50; i++ {
			g.Go(func() error {
				return pool.WithConn(ctx, func(context.Context, Conn) error {
					n := active.Add(1)
					for {
						p := peak.Load()
						if n <= p || peak.CompareAndSwap(p, n) {
							break
						}
					}
					time.Sleep(5 * time.Millisecond)
					active.Add(-1)
					return nil
				})
			})
		}
		require.NoError(t, g.Wait())

		assert.LessOrEqual(t, peak.Load(), int32(10))
		assert.Positive(t, peak.Load())
		assert.LessOrEqual(t, d.dialed(), 10)

		stats := pool.Stats()
		assert.Equal(t, int32(10), stats.Capacity)
		assert.Zero(t, stats.Acquired)
		assert.Equal(t, stats.Total, stats.Idle)
		assert.Zero(t, stats.Waiting)
	})
}

func TestPool_WithConn(t *testing.T) {
	t.Run("Should release the connection when fn fails", func(t *testing.T) {
		d := &stubDialer{}
		pool := newTestPool(t, testDBConfig(2), d.dial)
		require.NoError(t, pool.Ready(context.Background()))
		idleBefore := pool.Stats().Idle

		boom := errors.New("boom")
		err := pool.WithConn(context.Background(), func(context.Context, Conn) error { return boom })

		assert.ErrorIs(t, err, boom)
		assert.Zero(t, pool.Stats().Acquired)
		assert.Equal(t, idleBefore, pool.Stats().Idle)
	})

	t.Run("Should release the connection when fn panics", func(t *testing.T) {
		d := &stubDialer{}
		pool := newTestPool(t, testDBConfig(1), d.dial)

		assert.Panics(t, func() {
			_ = pool.WithConn(context.Background(), func(context.Context, Conn) error { panic("handler bug") })
		})

		assert.Zero(t, pool.Stats().Acquired)
		require.NoError(t, pool.Ready(context.Background()))
	})

	t.Run("Should not call fn when no connection can be borrowed", func(t *testing.T) {
		d := &stubDialer{err: errors.New("password authentication failed")}
		pool := newTestPool(t, testDBConfig(1), d.dial)

		called := false
		err := pool.WithConn(context.Background(), func(context.Context, Conn) error {
			called = true
			return nil
		})

		assert.True(t, domain.IsUnavailable(err))
		assert.False(t, called)
	})
}

func TestPool_Borrow(t *testing.T) {
	t.Run("Should fail with pool_exhausted after the acquire timeout", func(t *testing.T) {
		cfg := testDBConfig(1)
		cfg.ConnectTimeout = 50 * time.Millisecond
		cfg.AcquireTimeout = 50 * time.Millisecond
		d := &stubDialer{}
		pool := newTestPool(t, cfg, d.dial)

		held, err := pool.Borrow(context.Background())
		require.NoError(t, err)
		defer held.Release()

		start := time.Now()
		_, err = pool.Borrow(context.Background())
		require.Error(t, err)
		assert.True(t, domain.IsUnavailable(err))
		assert.Equal(t, domain.ReasonPoolExhausted, domain.UnavailableReason(err))
		assert.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("Should fail with connect_failed when the store is unreachable", func(t *testing.T) {
		d := &stubDialer{err: errors.New("dial tcp 10.0.0.1:5432: connect: connection refused")}
		pool := newTestPool(t, testDBConfig(3), d.dial)

		_, err := pool.Borrow(context.Background())
		require.Error(t, err)
		assert.Equal(t, domain.ReasonConnectFailed, domain.UnavailableReason(err))
		assert.Contains(t, err.Error(), "connection refused")
		assert.Zero(t, pool.Stats().Total)
	})

	t.Run("Should fail with connect_failed when a dial hangs past the connect timeout", func(t *testing.T) {
		cfg := testDBConfig(1)
		cfg.ConnectTimeout = 30 * time.Millisecond
		cfg.AcquireTimeout = time.Second
		pool := newTestPool(t, cfg, hangingDial)

		_, err := pool.Borrow(context.Background())
		require.Error(t, err)
		assert.Equal(t, domain.ReasonConnectFailed, domain.UnavailableReason(err))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("Should fail with connect_failed when the borrow deadline passes mid-dial", func(t *testing.T) {
		cfg := testDBConfig(1)
		cfg.ConnectTimeout = time.Second
		cfg.AcquireTimeout = time.Second
		pool := newTestPool(t, cfg, hangingDial)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := pool.Borrow(ctx)
		require.Error(t, err)
		assert.Equal(t, domain.ReasonConnectFailed, domain.UnavailableReason(err))
		assert.Less(t, time.Since(start), 900*time.Millisecond)
	})

	t.Run("Should reject borrowers beyond the queue limit", func(t *testing.T) {
		cfg := testDBConfig(1)
		cfg.QueueLimit = 1
		d := &stubDialer{}
		pool := newTestPool(t, cfg, d.dial)

		held, err := pool.Borrow(context.Background())
		require.NoError(t, err)

		queued := make(chan error, 1)
		go func() {
			lease, err := pool.Borrow(context.Background())
			if err == nil {
				lease.Release()
			}
			queued <- err
		}()
		require.Eventually(t, func() bool { return pool.Stats().Waiting == 1 }, time.Second, time.Millisecond)

		_, err = pool.Borrow(context.Background())
		assert.Equal(t, domain.ReasonQueueFull, domain.UnavailableReason(err))

		held.Release()
		assert.NoError(t, <-queued)
	})

	t.Run("Should fail with pool_closed after Close", func(t *testing.T) {
		d := &stubDialer{}
		pool, err := NewPool(testDBConfig(1), d.dial, logger.Discard())
		require.NoError(t, err)
		pool.Close()

		_, err = pool.Borrow(context.Background())
		assert.Equal(t, domain.ReasonPoolClosed, domain.UnavailableReason(err))
	})

	t.Run("Should replace a stale idle connection whose ping fails", func(t *testing.T) {
		cfg := testDBConfig(1)
		cfg.IdleCheckAfter = 10 * time.Millisecond
		d := &stubDialer{}
		pool := newTestPool(t, cfg, d.dial)

		require.NoError(t, pool.Ready(context.Background()))
		require.Equal(t, 1, d.dialed())
		time.Sleep(20 * time.Millisecond)
		d.conns[0].broken.Store(true)

		lease, err := pool.Borrow(context.Background())
		require.NoError(t, err)
		defer lease.Release()

		assert.Same(t, d.conns[1], lease.Conn())
		assert.Eventually(t, d.conns[0].closed.Load, time.Second, time.Millisecond)
	})

	t.Run("Should reuse a recently used connection without pinging", func(t *testing.T) {
		cfg := testDBConfig(1)
		cfg.IdleCheckAfter = time.Hour
		d := &stubDialer{}
		pool := newTestPool(t, cfg, d.dial)

		require.NoError(t, pool.Ready(context.Background()))
		d.conns[0].broken.Store(true)

		require.NoError(t, pool.Ready(context.Background()))
		assert.Equal(t, 1, d.dialed())
	})
}

func TestLease_Release(t *testing.T) {
	t.Run("Should be safe to call twice", func(t *testing.T) {
		d := &stubDialer{}
		pool := newTestPool(t, testDBConfig(1), d.dial)

		lease, err := pool.Borrow(context.Background())
		require.NoError(t, err)
		lease.Release()
		assert.NotPanics(t, lease.Release)
		assert.Zero(t, pool.Stats().Acquired)
		assert.Equal(t, int32(1), pool.Stats().Idle)
	})

	t.Run("Should discard a connection that closed while leased", func(t *testing.T) {
		conn := &closingConn{}
		pool := newTestPool(t, testDBConfig(1), func(context.Context) (Conn, error) { return conn, nil })

		lease, err := pool.Borrow(context.Background())
		require.NoError(t, err)
		lease.Release()

		assert.Eventually(t, func() bool { return pool.Stats().Total == 0 }, time.Second, time.Millisecond)
		assert.Eventually(t, conn.closed.Load, time.Second, time.Millisecond)
	})
}

func TestPool_Reset(t *testing.T) {
	d := &stubDialer{}
	pool := newTestPool(t, testDBConfig(2), d.dial)
	require.NoError(t, pool.Ready(context.Background()))

	pool.Reset()

	assert.Zero(t, pool.Stats().Idle)
	assert.Eventually(t, d.conns[0].closed.Load, time.Second, time.Millisecond)
}

func TestNewPool(t *testing.T) {
	t.Run("Should reject an invalid configuration", func(t *testing.T) {
		d := &stubDialer{}
		_, err := NewPool(testDBConfig(0), d.dial, logger.Discard())
		assert.Error(t, err)
	})

	t.Run("Should reject a connect timeout longer than the acquire timeout", func(t *testing.T) {
		cfg := testDBConfig(1)
		cfg.ConnectTimeout = 10 * time.Second
		d := &stubDialer{}

		_, err := NewPool(cfg, d.dial, logger.Discard())
		assert.ErrorContains(t, err, "DB_CONNECT_TIMEOUT")
	})
}

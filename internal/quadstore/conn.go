package quadstore

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/roach88/quadstore/internal/docstore"
)

// ErrClosed is the cause reported by operations on a closed Store.
var ErrClosed = errors.New("quadstore: store closed")

// State is the connection state of a Store.
type State int

const (
	// StateUninitialized means no operation has needed the collection yet.
	StateUninitialized State = iota
	// StateConnecting means a connection attempt is in flight.
	StateConnecting
	// StateReady means the collection is established.
	StateReady
	// StateFailed means the single connection attempt failed. Not retried.
	StateFailed
	// StateClosed means Close was called.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// conn lazily establishes the collection exactly once.
//
// The first caller starts the attempt; every caller, the first included,
// waits on done or its own ctx. The attempt runs detached from callers'
// cancellation: a caller whose ctx ends stops waiting, the attempt continues.
type conn struct {
	connector docstore.Connector
	logger    *slog.Logger

	mu    sync.Mutex
	state State
	done  chan struct{}
	coll  docstore.Collection
	err   *Error
}

func newConn(connector docstore.Connector, logger *slog.Logger) *conn {
	return &conn{connector: connector, logger: logger}
}

func (c *conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// get returns the collection, starting the connection attempt if needed.
func (c *conn) get(ctx context.Context) (docstore.Collection, error) {
	c.mu.Lock()
	switch c.state {
	case StateReady:
		coll := c.coll
		c.mu.Unlock()
		return coll, nil
	case StateFailed:
		err := c.err
		c.mu.Unlock()
		return nil, err
	case StateClosed:
		c.mu.Unlock()
		return nil, newConnectionError(ErrClosed)
	case StateUninitialized:
		c.state = StateConnecting
		c.done = make(chan struct{})
		go c.connect(context.WithoutCancel(ctx), c.done)
	}
	done := c.done
	c.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, newConnectionError(ctx.Err())
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateReady:
		return c.coll, nil
	case StateFailed:
		return nil, c.err
	default:
		return nil, newConnectionError(ErrClosed)
	}
}

func (c *conn) connect(ctx context.Context, done chan struct{}) {
	defer close(done)

	c.logger.Debug("connecting to backing collection")
	coll, err := c.connector.Connect(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		// Closed while connecting: release what we got.
		if err == nil && coll != nil {
			if cerr := coll.Close(ctx); cerr != nil {
				c.logger.Warn("close collection after store closed", "error", cerr)
			}
		}
		return
	}
	if err != nil {
		c.state = StateFailed
		c.err = newConnectionError(err)
		c.logger.Error("connection failed", "error", err)
		return
	}
	c.state = StateReady
	c.coll = coll
	c.logger.Debug("backing collection ready")
}

// close releases the collection if ready. Idempotent.
func (c *conn) close(ctx context.Context) error {
	c.mu.Lock()
	prev := c.state
	coll := c.coll
	c.state = StateClosed
	c.coll = nil
	c.mu.Unlock()

	if prev == StateReady && coll != nil {
		return coll.Close(ctx)
	}
	return nil
}

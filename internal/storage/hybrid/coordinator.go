// Package hybrid implements the degrade-once access policy over two storage
// backends. A coordinator prefers the remote store and, on the first
// observed fault, permanently switches that entity class to the file store
// for the remainder of the process lifetime. There is no transition back.
//
// This is a deliberate simplicity/availability trade-off: it avoids flapping
// between backends under intermittent failures, at the cost of never
// recovering without a restart.
package hybrid

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/readnest/readnest/internal/common"
	"github.com/readnest/readnest/internal/logging"
	"github.com/readnest/readnest/internal/storage"
)

// Coordinator dispatches entity operations to the remote store while it is
// believed usable, and to the local file store afterwards. It holds one
// degrade flag per instance; construct one coordinator per entity class and
// inject it, rather than sharing ambient global state.
//
// The flag transition is idempotent: concurrent faults may both observe the
// remote state, and both flips land on the same terminal value.
type Coordinator[T any, P any] struct {
	name     string
	remote   storage.Store[T, P]
	local    storage.Store[T, P]
	log      logging.Logger
	degraded atomic.Bool
}

// New builds a coordinator for one entity class. A nil remote starts the
// coordinator degraded: every operation goes straight to the file store.
func New[T any, P any](name string, remote, local storage.Store[T, P], log logging.Logger) *Coordinator[T, P] {
	c := &Coordinator[T, P]{
		name:   name,
		remote: remote,
		local:  local,
		log:    log.With("collection", name),
	}
	if remote == nil {
		c.degraded.Store(true)
	}
	return c
}

// Degraded reports whether the coordinator has switched to the file store.
func (c *Coordinator[T, P]) Degraded() bool {
	return c.degraded.Load()
}

// fault records a remote failure and flips the coordinator to file-only.
// The triggering error is logged, never returned to the caller.
func (c *Coordinator[T, P]) fault(ctx context.Context, op string, err error) {
	if c.degraded.CompareAndSwap(false, true) {
		c.log.Warn(ctx, "remote store fault, degrading to file store for the rest of the process", "op", op, "error", err)
		return
	}
	c.log.Debug(ctx, "remote store fault after degrade", "op", op, "error", err)
}

// isFault reports whether err is a backend fault. Absence is an ordinary
// outcome and must not trigger a degrade.
func isFault(err error) bool {
	return err != nil && !errors.Is(err, common.ErrNotFound)
}

func (c *Coordinator[T, P]) List(ctx context.Context, owner string) ([]*T, error) {
	if !c.degraded.Load() {
		recs, err := c.remote.List(ctx, owner)
		if !isFault(err) {
			return recs, err
		}
		c.fault(ctx, "list", err)
	}
	return c.local.List(ctx, owner)
}

func (c *Coordinator[T, P]) Get(ctx context.Context, id string) (*T, error) {
	if !c.degraded.Load() {
		rec, err := c.remote.Get(ctx, id)
		if !isFault(err) {
			return rec, err
		}
		c.fault(ctx, "get", err)
	}
	return c.local.Get(ctx, id)
}

func (c *Coordinator[T, P]) Create(ctx context.Context, rec *T) (*T, error) {
	if !c.degraded.Load() {
		created, err := c.remote.Create(ctx, rec)
		if !isFault(err) {
			return created, err
		}
		c.fault(ctx, "create", err)
	}
	return c.local.Create(ctx, rec)
}

func (c *Coordinator[T, P]) Update(ctx context.Context, id string, patch P) (*T, error) {
	if !c.degraded.Load() {
		updated, err := c.remote.Update(ctx, id, patch)
		if !isFault(err) {
			return updated, err
		}
		c.fault(ctx, "update", err)
	}
	return c.local.Update(ctx, id, patch)
}

func (c *Coordinator[T, P]) Delete(ctx context.Context, id string) error {
	if !c.degraded.Load() {
		err := c.remote.Delete(ctx, id)
		if !isFault(err) {
			return err
		}
		c.fault(ctx, "delete", err)
	}
	return c.local.Delete(ctx, id)
}

func (c *Coordinator[T, P]) Search(ctx context.Context, owner, query string) ([]*T, error) {
	if !c.degraded.Load() {
		recs, err := c.remote.Search(ctx, owner, query)
		if !isFault(err) {
			return recs, err
		}
		c.fault(ctx, "search", err)
	}
	return c.local.Search(ctx, owner, query)
}

// Package join runs a fixed set of independent loads and, once every one
// has completed, hands their results to a single finalize step in
// definition order.
package join

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// LoadFunc produces one result.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// Policy decides what a failed load does to finalization.
type Policy int

const (
	// RequireAll skips finalize when any load fails.
	RequireAll Policy = iota
	// AllowPartial finalizes with whatever loads succeeded.
	AllowPartial
)

var ErrAlreadyRun = errors.New("barrier already run")

// Result is the outcome of the load at Index.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// OK reports whether the load succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

// ProgressFunc observes each completion. Calls are serialised.
type ProgressFunc[T any] func(r Result[T], completed, total int)

type Option[T any] func(*Barrier[T])

func WithPolicy[T any](p Policy) Option[T] {
	return func(b *Barrier[T]) { b.policy = p }
}

// WithLimit caps the number of loads running at once; n <= 0 means no cap.
func WithLimit[T any](n int) Option[T] {
	return func(b *Barrier[T]) { b.limit = n }
}

func WithProgress[T any](fn ProgressFunc[T]) Option[T] {
	return func(b *Barrier[T]) { b.progress = fn }
}

// Barrier owns the pending count and one result slot per load.
type Barrier[T any] struct {
	loads    []LoadFunc[T]
	policy   Policy
	limit    int
	progress ProgressFunc[T]

	started   atomic.Bool
	completed atomic.Int64
	progMu    sync.Mutex
	slots     []Result[T]
}

func New[T any](loads []LoadFunc[T], opts ...Option[T]) *Barrier[T] {
	b := &Barrier[T]{loads: loads, slots: make([]Result[T], len(loads))}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Total is the number of loads the barrier waits for.
func (b *Barrier[T]) Total() int { return len(b.loads) }

// Completed is the number of loads that have finished, successfully or not.
func (b *Barrier[T]) Completed() int { return int(b.completed.Load()) }

// Run starts every load and blocks until all have completed or ctx ends.
// finalize is called at most once, with one Result per load in definition
// order. Under RequireAll a failure cancels the remaining loads and
// finalize is skipped. Under AllowPartial finalize always runs and the
// returned error combines the individual failures.
func (b *Barrier[T]) Run(ctx context.Context, finalize func([]Result[T])) error {
	if !b.started.CompareAndSwap(false, true) {
		return ErrAlreadyRun
	}

	total := len(b.loads)
	if total == 0 {
		finalize(nil)
		return nil
	}

	var g *errgroup.Group
	gctx := ctx
	if b.policy == RequireAll {
		g, gctx = errgroup.WithContext(ctx)
	} else {
		g = new(errgroup.Group)
	}
	if b.limit > 0 {
		g.SetLimit(b.limit)
	}

	for i, load := range b.loads {
		i, load := i, load
		g.Go(func() error {
			v, err := load(gctx)
			if err == nil {
				err = gctx.Err()
			}
			b.complete(Result[T]{Index: i, Value: v, Err: err}, total)
			if err != nil && b.policy == RequireAll {
				return fmt.Errorf("load %d: %w", i, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if b.policy == RequireAll {
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	finalize(b.slots)

	var errs error
	for _, r := range b.slots {
		if r.Err != nil {
			errs = multierr.Append(errs, fmt.Errorf("load %d: %w", r.Index, r.Err))
		}
	}
	return errs
}

// complete fills the slot for r.Index and bumps the counter. Each slot is
// written by exactly one goroutine; the counter and the progress hook move
// together under progMu so observers see counts in increasing order.
func (b *Barrier[T]) complete(r Result[T], total int) {
	b.progMu.Lock()
	defer b.progMu.Unlock()
	b.slots[r.Index] = r
	n := int(b.completed.Add(1))
	if b.progress != nil {
		b.progress(r, n, total)
	}
}

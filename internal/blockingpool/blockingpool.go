// Package blockingpool bounds the number of goroutines allowed to run
// a blocking operation concurrently — file opens that may hit a cold
// disk, bcrypt comparisons, and calls into an embedded interpreter
// that cannot itself yield. It plays the same "bounded pool of
// workers" role as the teacher's httpserver/pool.go, but where that
// pool holds long-lived *http.Server values, this one holds nothing:
// it is a pure admission gate sized by config.ServerConfig's
// max_blocking_threads, acquired for the lifetime of one Do call.
//
// Only the embedded-interface workers (package iface) dispatch through
// a Pool; static-file opens and bcrypt comparisons run directly on the
// request goroutine and are not bounded by it.
package blockingpool

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Pool admits up to n concurrent blocking calls; callers beyond n
// block in Do until a slot frees up or ctx is canceled.
type Pool struct {
	sem *semaphore.Weighted
}

// New returns a Pool admitting at most n concurrent blocking calls.
// n<=0 is treated as 1, since a pool admitting nothing can never run
// anything.
func New(n int) *Pool {
	if n <= 0 {
		n = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(n))}
}

// Do runs fn after acquiring a slot, releasing it once fn returns. If
// ctx is canceled before a slot is free, Do returns ctx.Err() without
// running fn.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	return fn()
}

// Call is Do for functions that return a value alongside an error,
// the common shape for a blocking read or interpreter invocation.
func Call[T any](ctx context.Context, p *Pool, fn func() (T, error)) (T, error) {
	var result T
	err := p.Do(ctx, func() error {
		v, err := fn()
		result = v
		return err
	})
	return result, err
}

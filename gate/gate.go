// Package gate implements the task-supervision abstraction from the
// concurrency model: a gate groups long-lived server tasks (accept
// loops) together with the transient worker tasks they spawn per
// connection or per request, and cancels all of them atomically on
// shutdown. The server facade uses one gate for all of its listeners. Modeled on the cancellation-context idiom the teacher
// threads through its listener/server lifecycle (context.Context +
// sync.WaitGroup rather than a structured-concurrency runtime).
package gate

import (
	"context"
	"sync"
)

// Gate supervises its server tasks and their worker tasks.
type Gate struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// New creates a gate derived from parent.
func New(parent context.Context) *Gate {
	ctx, cancel := context.WithCancel(parent)
	return &Gate{ctx: ctx, cancel: cancel}
}

// Context returns the gate's cancellation context. Server and worker
// tasks should select on ctx.Done() at their suspension points.
func (g *Gate) Context() context.Context {
	return g.ctx
}

// Server spawns fn as a long-lived accept-loop task of the gate.
func (g *Gate) Server(fn func(ctx context.Context)) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		fn(g.ctx)
	}()
}

// Worker spawns fn as a per-connection or per-request task. Workers
// inherit the gate's cancellation: when the gate is cancelled, fn's
// ctx is already Done by the time it next checks it.
func (g *Gate) Worker(fn func(ctx context.Context)) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		fn(g.ctx)
	}()
}

// Cancel cancels the gate and blocks until every task it owns has
// returned. Idempotent.
func (g *Gate) Cancel() {
	g.once.Do(func() {
		g.cancel()
	})
	g.wg.Wait()
}

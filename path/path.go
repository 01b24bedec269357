// Package path implements the tagged-variant path handlers a virtual
// host dispatches to: a user closure, the static-file engine, the
// reverse-proxy engine, and the embedded-interface bridge. All four
// share one contract, generalized from the teacher's Handler
// interface (caddyhttp/httpserver/middleware.go) down to the single
// method the specification needs.
package path

import (
	"context"

	"github.com/ararog/vetis/reqres"
)

// HostPath is the contract every path handler variant implements.
type HostPath interface {
	// URI returns the configured literal prefix this path was
	// registered under.
	URI() string

	// Handle serves req, where tail is the request URI with the
	// matched prefix stripped (at most one leading slash kept).
	Handle(ctx context.Context, req *reqres.Request, tail string) (*reqres.Response, error)
}

// HandlerFunc is the opaque async callable variant: a user-supplied
// closure invoked directly, the simplest of the four variants.
type HandlerFunc func(ctx context.Context, req *reqres.Request, tail string) (*reqres.Response, error)

// HandlerPath wraps a HandlerFunc as a HostPath.
type HandlerPath struct {
	uri string
	fn  HandlerFunc
}

// NewHandlerPath returns a HostPath backed by fn, registered under uri.
func NewHandlerPath(uri string, fn HandlerFunc) *HandlerPath {
	return &HandlerPath{uri: uri, fn: fn}
}

func (h *HandlerPath) URI() string { return h.uri }

func (h *HandlerPath) Handle(ctx context.Context, req *reqres.Request, tail string) (*reqres.Response, error) {
	return h.fn(ctx, req, tail)
}

var (
	_ HostPath = (*HandlerPath)(nil)
)

package path

import (
	"context"

	"github.com/ararog/vetis/reqres"
)

// interfaceWorker is the subset of iface.Worker this package depends
// on, kept narrow to avoid an import cycle (iface depends on this
// package's sibling, config, not on path itself, but the Worker
// contract belongs conceptually to iface).
type interfaceWorker interface {
	Invoke(ctx context.Context, req *reqres.Request, tail string) (*reqres.Response, error)
}

// InterfacePath dispatches requests under its prefix to an embedded
// application worker (WSGI, ASGI, RSGI, PHP, or Ruby), the fourth
// HostPath variant alongside HandlerPath, StaticPath and ProxyPath.
type InterfacePath struct {
	uri    string
	worker interfaceWorker
}

// NewInterfacePath builds an InterfacePath dispatching to worker.
func NewInterfacePath(uri string, worker interfaceWorker) *InterfacePath {
	return &InterfacePath{uri: uri, worker: worker}
}

func (p *InterfacePath) URI() string { return p.uri }

func (p *InterfacePath) Handle(ctx context.Context, req *reqres.Request, tail string) (*reqres.Response, error) {
	return p.worker.Invoke(ctx, req, tail)
}

var _ HostPath = (*InterfacePath)(nil)

package iface

import (
	"context"

	"github.com/ararog/vetis/reqres"
)

// rubyWorker invokes a Rack application, whose env hash is itself
// modeled directly on WSGI's environ (Rack predates and borrows from
// it), plus the rack.* keys a Rack application expects in place of
// wsgi.*.
type rubyWorker struct {
	baseWorker
}

func (w *rubyWorker) Invoke(ctx context.Context, req *reqres.Request, tail string) (*reqres.Response, error) {
	env := w.commonEnviron(req, tail)
	env["rack.version"] = "1.3"
	env["rack.multithread"] = "true"
	env["rack.multiprocess"] = "false"
	env["rack.run_once"] = "false"

	resp, err := w.runAndCollect(ctx, env, req.Body)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

var _ Worker = (*rubyWorker)(nil)

package iface

import (
	"context"

	"github.com/ararog/vetis/reqres"
)

// wsgiWorker implements PEP 3333: a synchronous application(environ,
// start_response) call whose return value is an iterable of body
// chunks, collapsed here to the runner's body io.Writer since Go has
// no generator protocol to preserve.
type wsgiWorker struct {
	baseWorker
}

func (w *wsgiWorker) Invoke(ctx context.Context, req *reqres.Request, tail string) (*reqres.Response, error) {
	env := w.commonEnviron(req, tail)
	env["wsgi.version"] = "1.0"
	env["wsgi.multithread"] = "true"
	env["wsgi.multiprocess"] = "false"
	env["wsgi.run_once"] = "false"

	resp, err := w.runAndCollect(ctx, env, req.Body)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

var _ Worker = (*wsgiWorker)(nil)

package iface

import (
	"context"

	"github.com/ararog/vetis/reqres"
)

// asgiWorker models the ASGI HTTP scope as a flattened environ: a real
// binding would hand the application an asyncio event loop and a
// receive/send pair of awaitables, but the ScriptRunner seam already
// collapses that down to one synchronous call, so the scope's fields
// become environment keys the same way the WSGI worker's do.
type asgiWorker struct {
	baseWorker
}

func (w *asgiWorker) Invoke(ctx context.Context, req *reqres.Request, tail string) (*reqres.Response, error) {
	env := w.commonEnviron(req, tail)
	env["asgi.version"] = "3.0"
	env["asgi.spec_version"] = "2.3"
	env["asgi.type"] = "http"

	resp, err := w.runAndCollect(ctx, env, req.Body)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

var _ Worker = (*asgiWorker)(nil)

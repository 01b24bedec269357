package iface

import (
	"context"

	"github.com/ararog/vetis/reqres"
)

// rsgiWorker targets RSGI, the Rust-native sibling of ASGI used by
// servers like Granian: its scope carries the same request facts as
// WSGI/ASGI plus an explicit protocol identifier, so it reuses the
// same commonEnviron base with one additional key.
type rsgiWorker struct {
	baseWorker
}

func (w *rsgiWorker) Invoke(ctx context.Context, req *reqres.Request, tail string) (*reqres.Response, error) {
	env := w.commonEnviron(req, tail)
	env["rsgi.version"] = "1.0"

	resp, err := w.runAndCollect(ctx, env, req.Body)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

var _ Worker = (*rsgiWorker)(nil)

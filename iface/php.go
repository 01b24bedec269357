package iface

import (
	"context"

	"github.com/ararog/vetis/reqres"
)

// phpWorker invokes a PHP script under a CGI-style environ — the
// SCRIPT_FILENAME convention PHP's SAPI expects in place of WSGI's
// PATH_INFO-relative dispatch.
type phpWorker struct {
	baseWorker
}

func (w *phpWorker) Invoke(ctx context.Context, req *reqres.Request, tail string) (*reqres.Response, error) {
	env := w.commonEnviron(req, tail)
	env["GATEWAY_INTERFACE"] = "CGI/1.1"
	env["SCRIPT_FILENAME"] = w.directory + "/" + w.target

	resp, err := w.runAndCollect(ctx, env, req.Body)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

var _ Worker = (*phpWorker)(nil)

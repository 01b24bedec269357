package path

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ararog/vetis/reqres"
)

type stubWorker struct {
	gotTail string
	resp    *reqres.Response
	err     error
}

func (w *stubWorker) Invoke(ctx context.Context, req *reqres.Request, tail string) (*reqres.Response, error) {
	w.gotTail = tail
	return w.resp, w.err
}

func TestInterfacePath_DelegatesToWorker(t *testing.T) {
	w := &stubWorker{resp: reqres.Text(200, "ok")}
	ip := NewInterfacePath("/app", w)

	req := &reqres.Request{Request: httptest.NewRequest("GET", "/app/run", nil)}
	resp, err := ip.Handle(context.Background(), req, "/run")
	require.NoError(t, err)
	assert.Equal(t, "/run", w.gotTail)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestInterfacePath_URI(t *testing.T) {
	ip := NewInterfacePath("/app", &stubWorker{})
	assert.Equal(t, "/app", ip.URI())
}

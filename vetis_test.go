package vetis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ararog/vetis/config"
	"github.com/ararog/vetis/listener"
	"github.com/ararog/vetis/path"
	"github.com/ararog/vetis/reqres"
	"github.com/ararog/vetis/registry"
	"github.com/ararog/vetis/vhost"
)

func TestSplitHost_WithPort(t *testing.T) {
	host, port := splitHost("example.com:8080")
	assert.Equal(t, "example.com", host)
	assert.Equal(t, "8080", port)
}

func TestSplitHost_WithoutPort(t *testing.T) {
	host, port := splitHost("example.com")
	assert.Equal(t, "example.com", host)
	assert.Equal(t, "", port)
}

type okPath struct{}

func (okPath) URI() string { return "/" }
func (okPath) Handle(ctx context.Context, req *reqres.Request, tail string) (*reqres.Response, error) {
	return reqres.Text(http.StatusOK, "hi"), nil
}

func TestRoutingHandler_DispatchesToMatchingVirtualHost(t *testing.T) {
	reg := registry.New()
	vh := vhost.New(config.VirtualHostConfig{Hostname: "example.com", Port: 80}, []path.HostPath{okPath{}})
	reg.Add(vh)

	h := &routingHandler{reg: reg}
	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	req.Host = "example.com"

	rec := httptest.NewRecorder()
	listener.WithPortHandler(80, h).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hi", rec.Body.String())
}

func TestRoutingHandler_UnknownHostReturnsNotFound(t *testing.T) {
	reg := registry.New()
	h := &routingHandler{reg: reg}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "nowhere.test"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoutingHandler_EmptyHostReturnsBadRequest(t *testing.T) {
	reg := registry.New()
	h := &routingHandler{reg: reg}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = ""
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

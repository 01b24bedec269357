package vhost

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ararog/vetis/config"
	"github.com/ararog/vetis/path"
	"github.com/ararog/vetis/reqres"
)

type stubPath struct {
	uri  string
	tail string
}

func (s *stubPath) URI() string { return s.uri }

func (s *stubPath) Handle(ctx context.Context, req *reqres.Request, tail string) (*reqres.Response, error) {
	s.tail = tail
	resp := reqres.NewResponse(http.StatusOK)
	resp.WithText(s.uri)
	return resp, nil
}

func newReq(target string) *reqres.Request {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	return &reqres.Request{Request: r, BoundPort: 80}
}

func TestVirtualHost_LongestPrefixWins(t *testing.T) {
	root := &stubPath{uri: "/"}
	api := &stubPath{uri: "/api"}
	vh := New(config.VirtualHostConfig{Hostname: "example.com"}, []path.HostPath{root, api})

	resp, err := vh.Route(context.Background(), newReq("/api/users"))
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, "/api", body)
	assert.Equal(t, "/users", api.tail)
}

func TestVirtualHost_NoMatchIsNotFound(t *testing.T) {
	vh := New(config.VirtualHostConfig{Hostname: "example.com"}, nil)
	resp, err := vh.Route(context.Background(), newReq("/anything"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestVirtualHost_DefaultHeadersApplied(t *testing.T) {
	root := &stubPath{uri: "/"}
	vh := New(config.VirtualHostConfig{
		Hostname:       "example.com",
		DefaultHeaders: map[string]string{"X-Frame-Options": "DENY"},
	}, []path.HostPath{root})

	resp, err := vh.Route(context.Background(), newReq("/"))
	require.NoError(t, err)
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
}

func TestVirtualHost_MalformedAuthorizationHeaderIsUnauthorized(t *testing.T) {
	root := &stubPath{uri: "/"}
	vh := New(config.VirtualHostConfig{
		Hostname: "example.com",
		Auth:     &config.AuthConfig{Realm: "test", Users: map[string]string{}},
	}, []path.HostPath{root})

	req := newReq("/")
	req.Header.Set("Authorization", "Bearer not-basic")

	resp, err := vh.Route(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestVirtualHost_MissingAuthorizationHeaderIsUnauthorized(t *testing.T) {
	root := &stubPath{uri: "/"}
	vh := New(config.VirtualHostConfig{
		Hostname: "example.com",
		Auth:     &config.AuthConfig{Realm: "test", Users: map[string]string{}},
	}, []path.HostPath{root})

	resp, err := vh.Route(context.Background(), newReq("/"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("WWW-Authenticate"), "test")
}

func readBody(t *testing.T, resp *reqres.Response) string {
	t.Helper()
	buf := make([]byte, 64)
	n, _ := resp.Body.Read(buf)
	return string(buf[:n])
}

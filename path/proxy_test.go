package path

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ararog/vetis/reqres"
)

func TestSingleJoiningSlash(t *testing.T) {
	assert.Equal(t, "a/b", singleJoiningSlash("a/", "/b"))
	assert.Equal(t, "a/b", singleJoiningSlash("a", "b"))
	assert.Equal(t, "a/b", singleJoiningSlash("a/", "b"))
	assert.Equal(t, "a/b", singleJoiningSlash("a", "/b"))
	assert.Equal(t, "a", singleJoiningSlash("a", ""))
}

func TestProxyPath_ForwardsToUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/widgets", r.URL.Path)
		w.Header().Set("X-Upstream", "yes")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer upstream.Close()

	pp, err := NewProxyPath("/proxy", upstream.URL+"/api")
	require.NoError(t, err)

	req := &reqres.Request{Request: httptest.NewRequest(http.MethodGet, "/proxy/widgets", nil)}
	resp, err := pp.Handle(context.Background(), req, "/widgets")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "yes", resp.Header.Get("X-Upstream"))
}

func TestProxyPath_UpstreamUnreachableReturnsBadGateway(t *testing.T) {
	pp, err := NewProxyPath("/proxy", "http://127.0.0.1:1")
	require.NoError(t, err)

	req := &reqres.Request{Request: httptest.NewRequest(http.MethodGet, "/proxy/x", nil)}
	resp, err := pp.Handle(context.Background(), req, "/x")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestNewProxyPath_InvalidURL(t *testing.T) {
	_, err := NewProxyPath("/proxy", "://bad-url")
	assert.Error(t, err)
}

func TestProxyPath_URI(t *testing.T) {
	pp, err := NewProxyPath("/proxy", "http://example.com")
	require.NoError(t, err)
	assert.Equal(t, "/proxy", pp.URI())
}

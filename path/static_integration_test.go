package path

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ararog/vetis/config"
	"github.com/ararog/vetis/fdcache"
	"github.com/ararog/vetis/reqres"
)

func newTestStaticPath(t *testing.T, content string) *StaticPath {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.txt"), []byte(content), 0o644))

	sp, err := NewStaticPath(config.StaticPathConfig{
		URI:       "/static",
		Directory: dir,
	}, fdcache.New(8))
	require.NoError(t, err)
	return sp
}

func newTestRequest(method, target string) *reqres.Request {
	r := httptest.NewRequest(method, target, nil)
	return &reqres.Request{Request: r, BoundPort: 80}
}

func TestStaticPath_ServeWhole(t *testing.T) {
	sp := newTestStaticPath(t, "hello world")
	req := newTestRequest(http.MethodGet, "/static/hello.txt")

	resp, err := sp.Handle(context.Background(), req, "/hello.txt")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(body))
	resp.Body.Close()
}

func TestStaticPath_ServeRange(t *testing.T) {
	sp := newTestStaticPath(t, "0123456789")
	req := newTestRequest(http.MethodGet, "/static/hello.txt")
	req.Header.Set("Range", "bytes=2-4")

	resp, err := sp.Handle(context.Background(), req, "/hello.txt")
	require.NoError(t, err)
	assert.Equal(t, http.StatusPartialContent, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "234", string(body))
	resp.Body.Close()
}

func TestStaticPath_RangeNotSatisfiable(t *testing.T) {
	sp := newTestStaticPath(t, "short")
	req := newTestRequest(http.MethodGet, "/static/hello.txt")
	req.Header.Set("Range", "bytes=1000-2000")

	resp, err := sp.Handle(context.Background(), req, "/hello.txt")
	require.NoError(t, err)
	assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, resp.StatusCode)
}

func TestStaticPath_NotFound(t *testing.T) {
	sp := newTestStaticPath(t, "hello")
	req := newTestRequest(http.MethodGet, "/static/missing.txt")

	resp, err := sp.Handle(context.Background(), req, "/missing.txt")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

package reqres

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse_WithBytesRoundTrips(t *testing.T) {
	resp := NewResponse(200).WithBytes([]byte("payload"))
	rec := httptest.NewRecorder()
	require.NoError(t, resp.WriteTo(rec))
	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "payload", rec.Body.String())
}

func TestResponse_WithTextSetsDefaultContentType(t *testing.T) {
	resp := NewResponse(200).WithText("hello")
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
}

func TestResponse_WithTextDoesNotOverrideExplicitContentType(t *testing.T) {
	resp := NewResponse(200)
	resp.Header.Set("Content-Type", "application/json")
	resp.WithText(`{"a":1}`)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestText_ConvenienceConstructor(t *testing.T) {
	resp := Text(404, "Not Found")
	rec := httptest.NewRecorder()
	require.NoError(t, resp.WriteTo(rec))
	assert.Equal(t, 404, rec.Code)
	assert.Equal(t, "Not Found", rec.Body.String())
}

func TestResponse_WriteToWithNilBody(t *testing.T) {
	resp := NewResponse(204)
	rec := httptest.NewRecorder()
	require.NoError(t, resp.WriteTo(rec))
	assert.Equal(t, 204, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestResponse_WriteToCopiesHeaders(t *testing.T) {
	resp := NewResponse(200)
	resp.Header.Add("X-Custom", "one")
	resp.Header.Add("X-Custom", "two")
	rec := httptest.NewRecorder()
	require.NoError(t, resp.WriteTo(rec))
	assert.Equal(t, []string{"one", "two"}, rec.Header()["X-Custom"])
}

// Package reqres normalizes the request/response shapes produced by
// the different listener drivers into one abstraction handed to path
// handlers. In Go, net/http (HTTP/1.1, HTTP/2) and quic-go/http3
// (HTTP/3) both already hand a *http.Request to an http.Handler, so
// the two "concrete body types" the specification calls out collapse
// to the same Go type at the wire layer; this package's job is to
// decouple path handlers from http.ResponseWriter's streaming, write-
// as-you-go contract so a handler can build and return one Response
// value regardless of which codec will eventually serialize it.
package reqres

import (
	"bytes"
	"io"
	"net/http"
)

// Request is the value handed to every path handler.
type Request struct {
	*http.Request

	// ServerName is the TLS SNI name observed during the handshake,
	// empty for cleartext connections.
	ServerName string

	// BoundPort is the port of the listener that accepted this
	// connection, used as part of the registry lookup key.
	BoundPort uint16
}

// Response is what a path handler returns. It is written to the
// wire by the per-connection service loop, independent of the codec.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// NewResponse returns a Response with an initialized, empty header set.
func NewResponse(status int) *Response {
	return &Response{StatusCode: status, Header: make(http.Header)}
}

// WithBytes sets the response body to b and returns r for chaining.
func (r *Response) WithBytes(b []byte) *Response {
	r.Body = io.NopCloser(bytes.NewReader(b))
	return r
}

// WithText sets the response body to s with a text/plain content type
// if one isn't already set, and returns r for chaining.
func (r *Response) WithText(s string) *Response {
	if r.Header.Get("Content-Type") == "" {
		r.Header.Set("Content-Type", "text/plain; charset=utf-8")
	}
	return r.WithBytes([]byte(s))
}

// WriteTo serializes the response to w. The body, if any, is closed
// after being copied.
func (r *Response) WriteTo(w http.ResponseWriter) error {
	hdr := w.Header()
	for k, vs := range r.Header {
		for _, v := range vs {
			hdr.Add(k, v)
		}
	}
	w.WriteHeader(r.StatusCode)
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	_, err := io.Copy(w, r.Body)
	return err
}

// Text is a convenience constructor for a plain-text error/status response.
func Text(status int, body string) *Response {
	return NewResponse(status).WithText(body)
}

package listener

import (
	"context"
	"net/http"
)

type portKey struct{}

// WithPortHandler wraps h so every request it serves carries port in
// its context, retrievable with PortFromContext. Used to tell the
// registry lookup which bound port accepted a connection, since
// neither net/http nor quic-go/http3 surface that on *http.Request.
func WithPortHandler(port uint16, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), portKey{}, port)
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PortFromContext returns the bound port a request's connection was
// accepted on, and whether one was set.
func PortFromContext(ctx context.Context) (uint16, bool) {
	port, ok := ctx.Value(portKey{}).(uint16)
	return port, ok
}

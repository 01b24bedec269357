// Package listener implements the accept-loop drivers: one per
// (transport, protocol) combination the data model names — TCP
// peek-and-classify for HTTP/1.1 and HTTP/2, UDP for HTTP/3 — built
// the way the teacher threads a context-cancelable accept loop through
// net.Listener.Accept (listeners.go's ListenAll/Listen family), but
// narrowed to this specification's single-binary, no-plugin shape.
package listener

import (
	"bufio"
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"

	"github.com/ararog/vetis/gate"
	"github.com/ararog/vetis/tlsdispatch"
	"github.com/ararog/vetis/vetiserr"
	"github.com/ararog/vetis/vlog"
)

// TCP drives one bound TCP port: accept, peek two bytes, classify
// cleartext vs TLS, complete the handshake if needed, then run the
// HTTP codec ALPN selects. Handler performs the registry lookup and
// virtual-host routing; this driver only classifies and codes the
// wire protocol.
type TCP struct {
	Port    uint16
	TLS     *tlsdispatch.Dispatcher // nil for a cleartext-only listener
	Handler http.Handler

	logger *zap.Logger
}

// Serve binds addr and runs the accept loop until gate is cancelled.
// Grounded on ListenAll's "bind once, loop Accept, close on
// cancellation" shape, simplified to a single address.
func (t *TCP) Serve(g *gate.Gate, addr string) error {
	t.logger = vlog.Named("listener.tcp")
	t.Handler = WithPortHandler(t.Port, t.Handler)

	lc := net.ListenConfig{}
	ln, err := lc.Listen(g.Context(), "tcp", addr)
	if err != nil {
		return vetiserr.Bind("binding TCP listener", err)
	}

	g.Server(func(ctx context.Context) {
		defer ln.Close()
		go func() {
			<-ctx.Done()
			ln.Close()
		}()
		for {
			conn, err := ln.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				t.logger.Warn("accept failed", zap.Error(err))
				continue
			}
			if tc, ok := conn.(*net.TCPConn); ok {
				tc.SetNoDelay(true)
			}
			g.Worker(func(ctx context.Context) {
				t.serveConn(ctx, conn)
			})
		}
	})
	return nil
}

// serveConn classifies one accepted connection and dispatches it to
// the matching codec, per §6/§4.3's exact two-byte peek rule.
func (t *TCP) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	br := bufio.NewReader(conn)
	peeked, err := br.Peek(2)
	if err != nil {
		return
	}

	pc := &peekedConn{Conn: conn, r: br}

	if peeked[0] == 0x16 && peeked[1] == 0x03 {
		t.serveTLS(ctx, pc)
		return
	}
	t.serveCleartext(ctx, pc)
}

func (t *TCP) serveTLS(ctx context.Context, conn net.Conn) {
	if t.TLS == nil {
		t.logger.Debug("TLS record received on a cleartext-only listener")
		return
	}
	tlsConn := tls.Server(conn, t.TLS.BaseConfig())
	deadline := time.Now().Add(10 * time.Second)
	tlsConn.SetDeadline(deadline)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		t.logger.Debug("TLS handshake failed", zap.Error(err))
		return
	}
	tlsConn.SetDeadline(time.Time{})

	switch tlsConn.ConnectionState().NegotiatedProtocol {
	case "h2":
		t.serveH2(tlsConn)
	default:
		t.serveH1(ctx, tlsConn)
	}
}

func (t *TCP) serveCleartext(ctx context.Context, conn net.Conn) {
	t.serveH1(ctx, conn)
}

// serveH1 drives exactly one net/http server over a single already-
// accepted connection, the idiom net/http itself uses nowhere
// directly, so it's assembled from http.Server.Serve over a listener
// that yields this one conn once. Serve returns as soon as that
// listener is exhausted while the conn is still served on Serve's own
// goroutine, so serveH1 then waits until the conn is closed or
// hijacked (observed through ConnState) or the gate is cancelled.
func (t *TCP) serveH1(ctx context.Context, conn net.Conn) {
	done := make(chan struct{}, 1)
	srv := &http.Server{
		Handler:     t.Handler,
		BaseContext: func(net.Listener) context.Context { return ctx },
		ConnState: func(_ net.Conn, s http.ConnState) {
			if s == http.StateClosed || s == http.StateHijacked {
				select {
				case done <- struct{}{}:
				default:
				}
			}
		},
	}
	srv.Serve(newSingleConnListener(conn))
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// serveH2 drives HTTP/2 over an already-TLS-handshaked connection via
// golang.org/x/net/http2's server-side codec, configured the way
// http2.ConfigureServer wires it for a *http.Server with TLSConfig
// set, adapted here to a single bare connection.
func (t *TCP) serveH2(conn net.Conn) {
	h2srv := &http2.Server{}
	h2srv.ServeConn(conn, &http2.ServeConnOpts{Handler: t.Handler})
}

// peekedConn re-exposes the bytes already consumed by Peek to
// whichever codec reads next, since both net/http and http2.Server
// read the connection as a raw net.Conn.
type peekedConn struct {
	net.Conn
	r *bufio.Reader
}

func (p *peekedConn) Read(b []byte) (int, error) { return p.r.Read(b) }

// singleConnListener adapts one already-accepted net.Conn into a
// net.Listener yielding exactly that connection once, so http.Server's
// Serve method — which expects to own a listener's Accept loop — can
// drive a single per-connection goroutine the way this gate's Worker
// model requires.
type singleConnListener struct {
	conn net.Conn
	done chan struct{}
}

func newSingleConnListener(conn net.Conn) *singleConnListener {
	return &singleConnListener{conn: conn, done: make(chan struct{})}
}

func (l *singleConnListener) Accept() (net.Conn, error) {
	select {
	case <-l.done:
		return nil, net.ErrClosed
	default:
	}
	close(l.done)
	return l.conn, nil
}

func (l *singleConnListener) Close() error   { return nil }
func (l *singleConnListener) Addr() net.Addr { return l.conn.LocalAddr() }

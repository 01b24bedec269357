package listener

import (
	"context"
	"net"
	"net/http"

	"github.com/quic-go/quic-go/http3"
	"go.uber.org/zap"

	"github.com/ararog/vetis/gate"
	"github.com/ararog/vetis/tlsdispatch"
	"github.com/ararog/vetis/vetiserr"
	"github.com/ararog/vetis/vlog"
)

// UDP drives one bound UDP port speaking HTTP/3 over QUIC via
// quic-go/http3, the dependency the teacher's listeners.go itself
// wires in for the same purpose. HTTP/3 is always TLS, per the data
// model's explicit non-goal of cleartext H3.
type UDP struct {
	Port    uint16
	TLS     *tlsdispatch.Dispatcher
	Handler http.Handler
}

// Serve binds addr and runs quic-go's HTTP/3 server until gate is
// cancelled.
func (u *UDP) Serve(g *gate.Gate, addr string) error {
	logger := vlog.Named("listener.udp")

	pc, err := net.ListenPacket("udp", addr)
	if err != nil {
		return vetiserr.Bind("binding UDP listener", err)
	}

	srv := &http3.Server{
		Addr:      addr,
		Handler:   WithPortHandler(u.Port, u.Handler),
		TLSConfig: u.TLS.BaseConfigH3(),
	}

	g.Server(func(ctx context.Context) {
		defer pc.Close()
		go func() {
			<-ctx.Done()
			srv.Close()
		}()
		if err := srv.Serve(pc); err != nil && ctx.Err() == nil {
			logger.Warn("http3 server exited", zap.Error(err))
		}
	})
	return nil
}

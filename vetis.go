// Package vetis is the server facade: construct one from a
// config.ServerConfig, register virtual hosts, Start it, and Stop it
// (or let WaitNotify block on an OS signal and stop for you). Lifecycle
// shape — WaitNotify's signal.Notify on SIGINT/SIGTERM/SIGQUIT,
// Shutdown's "cancel, then wait" — is grounded on
// nabbar-golib/httpserver/server.go's Server interface, adapted from
// its one-listener-per-server model to this facade's many-drivers-
// under-one-gate model.
package vetis

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ararog/vetis/config"
	"github.com/ararog/vetis/fdcache"
	"github.com/ararog/vetis/gate"
	"github.com/ararog/vetis/iface"
	"github.com/ararog/vetis/internal/blockingpool"
	"github.com/ararog/vetis/listener"
	"github.com/ararog/vetis/path"
	"github.com/ararog/vetis/registry"
	"github.com/ararog/vetis/reqres"
	"github.com/ararog/vetis/tlsdispatch"
	"github.com/ararog/vetis/vhost"
	"github.com/ararog/vetis/vlog"
)

const serverSoftware = "vetis"

// Vetis is the running server: a shared registry, a blocking-pool for
// offloaded synchronous work, and one driver per configured listener,
// all supervised by a single gate.
type Vetis struct {
	cfg    *config.ServerConfig
	reg    *registry.Registry
	pool   *blockingpool.Pool
	gate   *gate.Gate
	logger *zap.Logger
}

// New builds a Vetis server from cfg, constructing its registry,
// virtual hosts, and path handlers, but does not yet bind any socket.
func New(cfg *config.ServerConfig) (*Vetis, error) {
	v := &Vetis{
		cfg:    cfg,
		reg:    registry.New(),
		pool:   blockingpool.New(cfg.MaxBlockingThreads),
		logger: vlog.Named("vetis"),
	}
	for _, vhcfg := range cfg.VirtualHosts {
		vh, err := v.buildVirtualHost(vhcfg)
		if err != nil {
			return nil, err
		}
		v.reg.Add(vh)
	}
	v.logger.Info("server configured",
		zap.Int("virtual_hosts", len(cfg.VirtualHosts)),
		zap.String("blocking_pool_capacity", humanize.Comma(int64(cfg.MaxBlockingThreads))),
	)
	return v, nil
}

// buildVirtualHost assembles one virtual host's ordered path handlers
// from its configuration, in declaration order: static paths, then
// proxy paths, then interface paths, matching the data model's
// insertion-order tie-break rule.
func (v *Vetis) buildVirtualHost(cfg config.VirtualHostConfig) (*vhost.VirtualHost, error) {
	var paths []path.HostPath

	const defaultCacheCapacity = 100
	for _, sp := range cfg.StaticPaths {
		hp, err := path.NewStaticPath(sp, fdcache.New(defaultCacheCapacity))
		if err != nil {
			return nil, err
		}
		paths = append(paths, hp)
	}
	for _, pp := range cfg.ProxyPaths {
		hp, err := path.NewProxyPath(pp.URI, pp.TargetURL)
		if err != nil {
			return nil, err
		}
		paths = append(paths, hp)
	}
	for _, ip := range cfg.InterfacePaths {
		worker, err := buildWorker(ip, v.pool)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path.NewInterfacePath(ip.URI, worker))
	}

	return vhost.New(cfg, paths), nil
}

// buildWorker constructs the iface.Worker for one interface path,
// backed by iface.UnimplementedRunner until a real interpreter binding
// is wired in for ip.Kind.
func buildWorker(ip config.InterfacePathConfig, pool *blockingpool.Pool) (iface.Worker, error) {
	runner := iface.UnimplementedRunner{Kind: string(ip.Kind)}
	return iface.New(ip, runner, pool, serverSoftware)
}

// Start binds every configured listener and runs its accept loop
// under the server's gate. Start returns once every listener has
// bound successfully; it does not block for the server's lifetime —
// call WaitNotify or Stop for that.
func (v *Vetis) Start(ctx context.Context) error {
	v.gate = gate.New(ctx)
	handler := &routingHandler{reg: v.reg, logger: vlog.Named("router")}

	for _, lc := range v.cfg.Listeners {
		addr := net.JoinHostPort(lc.Interface, strconv.Itoa(int(lc.Port)))
		hosts, err := v.securityForPort(lc.Port)
		if err != nil {
			return err
		}

		var disp *tlsdispatch.Dispatcher
		if len(hosts) > 0 {
			disp, err = tlsdispatch.New(hosts)
			if err != nil {
				return err
			}
		}

		switch lc.Protocol {
		case config.ProtoH3:
			if disp == nil {
				return fmt.Errorf("listener on port %d: protocol h3 requires at least one virtual host with security configured", lc.Port)
			}
			drv := &listener.UDP{Port: lc.Port, TLS: disp, Handler: handler}
			if err := drv.Serve(v.gate, addr); err != nil {
				return err
			}
		default:
			drv := &listener.TCP{Port: lc.Port, TLS: disp, Handler: handler}
			if err := drv.Serve(v.gate, addr); err != nil {
				return err
			}
		}
		v.logger.Info("listener bound", zap.String("address", addr), zap.String("protocol", string(lc.Protocol)))
	}
	return nil
}

// securityForPort collects the certificate material of every virtual
// host bound to port, the set tlsdispatch.New loads eagerly.
func (v *Vetis) securityForPort(port uint16) ([]tlsdispatch.HostSecurity, error) {
	var hosts []tlsdispatch.HostSecurity
	for _, vhcfg := range v.cfg.VirtualHosts {
		if vhcfg.Port != port || vhcfg.Security == nil {
			continue
		}
		hosts = append(hosts, tlsdispatch.HostSecurity{
			Hostname:   vhcfg.Hostname,
			CertDER:    vhcfg.Security.CertificateChain,
			KeyDER:     vhcfg.Security.PrivateKey,
			CADER:      vhcfg.Security.CAChain,
			ClientAuth: vhcfg.Security.ClientAuth,
		})
	}
	return hosts, nil
}

// Stop cancels every listener's accept loop and worker task and
// blocks until all of them have returned.
func (v *Vetis) Stop() {
	if v.gate == nil {
		return
	}
	v.logger.Info("stopping")
	v.gate.Cancel()
}

// WaitNotify blocks until SIGINT, SIGTERM, or SIGQUIT is received, or
// ctx is cancelled, then calls Stop.
func (v *Vetis) WaitNotify(ctx context.Context) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case <-ctx.Done():
	}
	v.Stop()
}

// routingHandler adapts the registry lookup and virtual-host dispatch
// into a single http.Handler, the glue every listener driver's
// Handler field is set to.
type routingHandler struct {
	reg    *registry.Registry
	logger *zap.Logger
}

func (h *routingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set("X-Request-Id", requestID)

	name := r.Host
	if r.TLS != nil && r.TLS.ServerName != "" {
		name = r.TLS.ServerName
	}
	if name == "" {
		h.log().Debug("request carries no Host/SNI authority", zap.String("request_id", requestID))
		http.Error(w, "Bad Request: missing Host", http.StatusBadRequest)
		return
	}
	host, _ := splitHost(name)

	port, _ := listener.PortFromContext(r.Context())
	vh, ok := h.reg.Lookup(host, port)
	if !ok {
		h.log().Debug("no virtual host registered",
			zap.String("request_id", requestID), zap.String("host", host), zap.Uint16("port", port))
		http.Error(w, "Virtual host not found", http.StatusNotFound)
		return
	}

	req := &reqres.Request{Request: r, BoundPort: port}
	if r.TLS != nil {
		req.ServerName = r.TLS.ServerName
	}
	resp, err := vh.Route(r.Context(), req)
	if err != nil {
		h.log().Warn("routing failed",
			zap.String("request_id", requestID), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	resp.WriteTo(w)
}

// log returns the handler's logger, falling back to the process-wide
// default for a routingHandler built without one (e.g. in tests).
func (h *routingHandler) log() *zap.Logger {
	if h.logger != nil {
		return h.logger
	}
	return vlog.L()
}

func splitHost(hostport string) (string, string) {
	for i := len(hostport) - 1; i >= 0; i-- {
		if hostport[i] == ':' {
			return hostport[:i], hostport[i+1:]
		}
	}
	return hostport, ""
}

// Package tlsdispatch builds the per-listener *tls.Config that
// resolves a certificate from the SNI name presented during the
// handshake, grounded on caddytls/handshake.go's configGroup: an
// exact-match lookup keyed by hostname, consulted from
// GetConfigForClient. Modern Caddy's wildcard-label and on-demand/ACME
// fallbacks are out of scope — the data model calls for exact
// hostnames loaded from static cert/key files, so this keeps only the
// exact-match branch of getConfig/getCertificate.
package tlsdispatch

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"strings"
	"sync"

	"github.com/ararog/vetis/vetiserr"
)

// Dispatcher resolves a *tls.Config per bound port, keyed by SNI name,
// from the virtual hosts bound to that port.
type Dispatcher struct {
	mu    sync.RWMutex
	certs map[string]*tls.Certificate
	pools map[string]*x509.CertPool
	auth  map[string]bool
}

// New builds a Dispatcher loading certificate material for each of
// hosts eagerly, since the data model treats security config as
// immutable, loaded-at-config-time material rather than something
// fetched during the handshake.
func New(hosts []HostSecurity) (*Dispatcher, error) {
	d := &Dispatcher{
		certs: make(map[string]*tls.Certificate),
		pools: make(map[string]*x509.CertPool),
		auth:  make(map[string]bool),
	}
	for _, h := range hosts {
		if err := d.load(h); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// HostSecurity is the certificate material a single virtual host
// contributes to the dispatcher, decoupled from config.SecurityConfig
// so this package doesn't import config directly. Cert, key and CA are
// all raw DER bytes, per the data model's external-interface contract.
type HostSecurity struct {
	Hostname   string
	CertDER    []byte
	KeyDER     []byte
	CADER      []byte
	ClientAuth bool
}

func (d *Dispatcher) load(h HostSecurity) error {
	leaf, err := x509.ParseCertificate(h.CertDER)
	if err != nil {
		return vetiserr.TLS(fmt.Sprintf("parsing DER certificate for %q", h.Hostname), err)
	}
	key, err := parsePrivateKeyDER(h.KeyDER)
	if err != nil {
		return vetiserr.TLS(fmt.Sprintf("parsing DER private key for %q", h.Hostname), err)
	}
	cert := tls.Certificate{
		Certificate: [][]byte{h.CertDER},
		PrivateKey:  key,
		Leaf:        leaf,
	}

	name := strings.ToLower(h.Hostname)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.certs[name] = &cert
	if len(h.CADER) > 0 {
		ca, err := x509.ParseCertificate(h.CADER)
		if err != nil {
			return vetiserr.TLS(fmt.Sprintf("parsing DER ca_file for %q", h.Hostname), err)
		}
		pool := x509.NewCertPool()
		pool.AddCert(ca)
		d.pools[name] = pool
	}
	d.auth[name] = h.ClientAuth
	return nil
}

// parsePrivateKeyDER parses a DER-encoded private key, trying PKCS#1
// (the common RSA encoding), then PKCS#8 (the generic encoding also
// covering EC and Ed25519 keys), matching the external-interface
// contract's "private key supplied as DER bytes" without committing to
// one key algorithm.
func parsePrivateKeyDER(der []byte) (interface{}, error) {
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParseECPrivateKey(der); err == nil {
		return key, nil
	}
	return nil, fmt.Errorf("unrecognized private key encoding")
}

// getCertificate resolves an exact SNI match, the single branch of
// getCertDuringHandshake this spec keeps: no wildcard expansion, no
// on-demand issuance, no default-certificate fallback when SNI is
// absent, since an unrecognized name has no config to fall back to.
func (d *Dispatcher) getCertificate(name string) (*tls.Certificate, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	cert, ok := d.certs[strings.ToLower(name)]
	return cert, ok
}

// GetConfigForClient is the tls.Config.GetConfigForClient callback:
// it resolves a per-host *tls.Config so client-auth requirements and
// certificates can vary per virtual host sharing one listener.
func (d *Dispatcher) GetConfigForClient(hello *tls.ClientHelloInfo) (*tls.Config, error) {
	name := strings.ToLower(hello.ServerName)
	cert, ok := d.getCertificate(name)
	if !ok {
		return nil, vetiserr.TLS(fmt.Sprintf("no certificate registered for SNI name %q", name), nil)
	}

	cfg := &tls.Config{
		Certificates: []tls.Certificate{*cert},
		NextProtos:   []string{"h2", "http/1.1"},
		MinVersion:   tls.VersionTLS12,
	}

	d.mu.RLock()
	pool, hasPool := d.pools[name]
	requireClientAuth := d.auth[name]
	d.mu.RUnlock()

	if requireClientAuth {
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
		if hasPool {
			cfg.ClientCAs = pool
		}
	}
	return cfg, nil
}

// BaseConfig returns a *tls.Config suitable for a net/http or quic-go
// listener: empty of certificates, resolving everything per-connection
// through GetConfigForClient.
func (d *Dispatcher) BaseConfig() *tls.Config {
	return &tls.Config{
		GetConfigForClient: d.GetConfigForClient,
		MinVersion:         tls.VersionTLS12,
	}
}

// BaseConfigH3 is BaseConfig with the "h3" ALPN identifier added,
// since quic-go/http3 negotiates its protocol the same way TLS does
// for HTTP/2.
func (d *Dispatcher) BaseConfigH3() *tls.Config {
	cfg := d.BaseConfig()
	cfg.NextProtos = []string{"h3"}
	return cfg
}

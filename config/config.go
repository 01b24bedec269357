// Package config defines the server configuration object graph and
// its YAML decoding, the declared external-collaborator boundary from
// the specification: everything above config.Load is ambient plumbing,
// everything it produces (ServerConfig, VirtualHostConfig,
// SecurityConfig) is the immutable input the hard core consumes.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ararog/vetis/vetiserr"
)

// Protocol identifies the wire protocol a listener speaks.
type Protocol string

const (
	ProtoH1 Protocol = "h1"
	ProtoH2 Protocol = "h2"
	ProtoH3 Protocol = "h3"
)

// ListenerConfig describes one listening socket.
type ListenerConfig struct {
	Port      uint16   `yaml:"port"`
	Protocol  Protocol `yaml:"protocol"`
	Interface string   `yaml:"interface"`
}

// SecurityConfig carries a virtual host's TLS material.
type SecurityConfig struct {
	CertificateChain []byte `yaml:"-"`
	PrivateKey       []byte `yaml:"-"`
	CAChain          []byte `yaml:"-"`
	ClientAuth       bool   `yaml:"client_auth"`

	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
	CAFile   string `yaml:"ca_file,omitempty"`
}

// AuthConfig is HTTP Basic auth guarding a path or a whole virtual host.
type AuthConfig struct {
	Realm string            `yaml:"realm"`
	Users map[string]string `yaml:"users"` // username -> bcrypt hash
}

// HandlerPathConfig is registered programmatically, never from YAML.
type HandlerPathConfig struct {
	URI string
}

// StaticPathConfig configures a static-file path handler.
type StaticPathConfig struct {
	URI         string      `yaml:"uri"`
	Extensions  string      `yaml:"extensions"` // regexp matched against the tail
	Directory   string      `yaml:"directory"`
	IndexFiles  []string    `yaml:"index_files,omitempty"`
	Auth        *AuthConfig `yaml:"auth,omitempty"`
}

// ProxyPathConfig configures a reverse-proxy path handler.
type ProxyPathConfig struct {
	URI       string `yaml:"uri"`
	TargetURL string `yaml:"target_url"`
}

// InterfaceKind identifies the embedded-runtime family.
type InterfaceKind string

const (
	InterfaceWSGI InterfaceKind = "wsgi"
	InterfaceASGI InterfaceKind = "asgi"
	InterfaceRSGI InterfaceKind = "rsgi"
	InterfacePHP  InterfaceKind = "php"
	InterfaceRuby InterfaceKind = "ruby"
)

// InterfacePathConfig configures an embedded-application path handler.
type InterfacePathConfig struct {
	URI       string        `yaml:"uri"`
	Kind      InterfaceKind `yaml:"kind"`
	Directory string        `yaml:"directory"`
	Target    string        `yaml:"target"` // "module:app"
}

// VirtualHostConfig configures one (hostname, port) virtual host.
type VirtualHostConfig struct {
	Hostname       string              `yaml:"hostname"`
	Port           uint16              `yaml:"port"`
	RootDirectory  string              `yaml:"root_directory"`
	Security       *SecurityConfig     `yaml:"security,omitempty"`
	Auth           *AuthConfig         `yaml:"auth,omitempty"`
	DefaultHeaders map[string]string   `yaml:"default_headers,omitempty"`
	StatusPages    map[int]string      `yaml:"status_pages,omitempty"`
	LoggingEnabled bool                `yaml:"logging,omitempty"`
	StaticPaths    []StaticPathConfig  `yaml:"static_paths,omitempty"`
	ProxyPaths     []ProxyPathConfig   `yaml:"proxy_paths,omitempty"`
	InterfacePaths []InterfacePathConfig `yaml:"interface_paths,omitempty"`
}

// ServerConfig is the top-level, immutable-after-build configuration.
type ServerConfig struct {
	LogLevel            string            `yaml:"log_level"`
	Workers             int               `yaml:"workers"`
	MaxBlockingThreads  int               `yaml:"max_blocking_threads"`
	Listeners           []ListenerConfig  `yaml:"server"`
	VirtualHosts        []VirtualHostConfig `yaml:"virtual_hosts"`
}

// Validate enforces the invariants from the data model: non-empty
// listeners, non-zero ports, non-empty interface strings, and for
// every virtual host a non-empty hostname and an existing root
// directory.
func (sc *ServerConfig) Validate() error {
	if len(sc.Listeners) == 0 {
		return vetiserr.Config("no listeners configured", nil)
	}
	for i, l := range sc.Listeners {
		if l.Port == 0 {
			return vetiserr.Config(fmt.Sprintf("listener %d: port must not be zero", i), nil)
		}
		if l.Interface == "" {
			return vetiserr.Config(fmt.Sprintf("listener %d: interface must not be empty", i), nil)
		}
	}
	for i, vh := range sc.VirtualHosts {
		if vh.Hostname == "" {
			return vetiserr.Config(fmt.Sprintf("virtual host %d: hostname must not be empty", i), nil)
		}
		if vh.RootDirectory == "" {
			return vetiserr.Config(fmt.Sprintf("virtual host %q: root_directory is required", vh.Hostname), nil)
		}
		if st, err := os.Stat(vh.RootDirectory); err != nil || !st.IsDir() {
			return vetiserr.Config(fmt.Sprintf("virtual host %q: root_directory %q does not exist", vh.Hostname, vh.RootDirectory), err)
		}
		if vh.Security != nil {
			if vh.Security.CertFile == "" || vh.Security.KeyFile == "" {
				return vetiserr.Config(fmt.Sprintf("virtual host %q: security requires both cert_file and key_file", vh.Hostname), nil)
			}
		}
	}
	return nil
}

// loadSecurityMaterial reads the cert/key/CA files referenced by each
// virtual host's SecurityConfig into memory as raw DER bytes, per the
// data model's external-interface contract (certificates and keys are
// supplied DER-encoded, not PEM).
func (sc *ServerConfig) loadSecurityMaterial() error {
	for i := range sc.VirtualHosts {
		sec := sc.VirtualHosts[i].Security
		if sec == nil {
			continue
		}
		cert, err := os.ReadFile(sec.CertFile)
		if err != nil {
			return vetiserr.Config("reading cert_file", err)
		}
		key, err := os.ReadFile(sec.KeyFile)
		if err != nil {
			return vetiserr.Config("reading key_file", err)
		}
		sec.CertificateChain = cert
		sec.PrivateKey = key
		if sec.CAFile != "" {
			ca, err := os.ReadFile(sec.CAFile)
			if err != nil {
				return vetiserr.Config("reading ca_file", err)
			}
			sec.CAChain = ca
		}
	}
	return nil
}

// Load reads and validates a YAML server configuration from path.
func Load(path string) (*ServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, vetiserr.Config("reading config file", err)
	}
	var sc ServerConfig
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, vetiserr.Config("parsing config YAML", err)
	}
	if sc.MaxBlockingThreads == 0 {
		sc.MaxBlockingThreads = 64
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if err := sc.loadSecurityMaterial(); err != nil {
		return nil, err
	}
	return &sc, nil
}

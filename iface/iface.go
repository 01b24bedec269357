// Package iface bridges HTTP requests into embedded application
// runtimes — WSGI and ASGI and RSGI Python applications, PHP scripts,
// Ruby Rack applications — grounded on the original implementation's
// server/virtual_host/path/interface family (wsgi/mod.rs for the
// environ shape and the synchronous start_response callback, with the
// other four kinds following the same oneshot-and-drain structure
// described there for the ASGI/RSGI/PHP/Ruby variants).
//
// None of the five language runtimes are reachable from pure Go, so
// each worker talks to a ScriptRunner: the seam where a real
// interpreter binding would sit. Everything on this side of that seam
// — environ construction, the oneshot synchronization between
// "headers are ready" and "body can start streaming", and dispatching
// the call through a blockingpool.Pool so one slow script can't starve
// the others — is real and independently testable against a fake
// ScriptRunner.
package iface

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/ararog/vetis/config"
	"github.com/ararog/vetis/internal/blockingpool"
	"github.com/ararog/vetis/reqres"
	"github.com/ararog/vetis/vetiserr"
)

// Worker is what path.InterfacePath dispatches to: one call per
// request, translating the HTTP exchange through an embedded runtime.
type Worker interface {
	Invoke(ctx context.Context, req *reqres.Request, tail string) (*reqres.Response, error)
}

// StartResponse is the synchronous "headers are decided" callback a
// ScriptRunner invokes exactly once before it may begin producing body
// bytes, the Go shape of WSGI's start_response / ASGI's
// http.response.start / Rack's three-tuple return. status follows the
// WSGI/Rack convention of a status line such as "200 OK" rather than a
// bare code.
type StartResponse func(status string, header http.Header)

// ScriptRunner is the interpreter seam. Implementations invoke the
// target application, calling start exactly once before writing to
// body, and returning only after the application has finished
// producing output (the call is synchronous from the runner's side;
// concurrency comes from running it inside a blockingpool.Pool).
type ScriptRunner interface {
	Run(ctx context.Context, env map[string]string, input io.Reader, body io.Writer, start StartResponse) error
}

// New builds the Worker for an interface path's configured kind.
func New(cfg config.InterfacePathConfig, runner ScriptRunner, pool *blockingpool.Pool, serverSoftware string) (Worker, error) {
	base := baseWorker{
		directory:      cfg.Directory,
		target:         cfg.Target,
		runner:         runner,
		pool:           pool,
		serverSoftware: serverSoftware,
	}
	switch cfg.Kind {
	case config.InterfaceWSGI:
		return &wsgiWorker{baseWorker: base}, nil
	case config.InterfaceASGI:
		return &asgiWorker{baseWorker: base}, nil
	case config.InterfaceRSGI:
		return &rsgiWorker{baseWorker: base}, nil
	case config.InterfacePHP:
		return &phpWorker{baseWorker: base}, nil
	case config.InterfaceRuby:
		return &rubyWorker{baseWorker: base}, nil
	default:
		return nil, vetiserr.Config(fmt.Sprintf("unknown interface kind %q", cfg.Kind), nil)
	}
}

// baseWorker holds the fields every kind shares: where the
// application lives, the blocking-pool it dispatches through, and the
// runner standing in for the real interpreter.
type baseWorker struct {
	directory      string
	target         string
	runner         ScriptRunner
	pool           *blockingpool.Pool
	serverSoftware string
}

// commonEnviron builds the CGI-derived key/value pairs common to every
// embedded-runtime variant — the request-line and connection facts
// the original's wsgi/mod.rs populates verbatim, which PHP and Rack's
// CGI-style env share by convention.
func (b *baseWorker) commonEnviron(req *reqres.Request, tail string) map[string]string {
	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}
	host, port := splitHostPort(req.Host, req.BoundPort)
	env := map[string]string{
		"REQUEST_METHOD":  req.Method,
		"SCRIPT_NAME":     "",
		"PATH_INFO":       tail,
		"QUERY_STRING":    req.URL.RawQuery,
		"CONTENT_TYPE":    req.Header.Get("Content-Type"),
		"CONTENT_LENGTH":  strconv.FormatInt(req.ContentLength, 10),
		"SERVER_NAME":     host,
		"SERVER_PORT":     port,
		"SERVER_PROTOCOL": req.Proto,
		"SERVER_SOFTWARE": b.serverSoftware,
		"REMOTE_ADDR":     req.RemoteAddr,
	}
	for k, vs := range req.Header {
		key := "HTTP_" + strings.ToUpper(strings.ReplaceAll(k, "-", "_"))
		env[key] = strings.Join(vs, ", ")
	}
	env["wsgi.url_scheme"] = scheme
	return env
}

func splitHostPort(host string, boundPort uint16) (string, string) {
	h := host
	if i := strings.LastIndexByte(host, ':'); i >= 0 {
		h = host[:i]
	}
	return h, strconv.Itoa(int(boundPort))
}

// runAndCollect dispatches runner.Run through the pool and assembles a
// reqres.Response from whatever StartResponse and the body writer
// produced. Every concrete worker's Invoke funnels through this so the
// oneshot/drain/pool-dispatch structure is written exactly once.
func (b *baseWorker) runAndCollect(ctx context.Context, env map[string]string, input io.Reader) (*reqres.Response, error) {
	var (
		statusLine string
		called     bool
		header     = make(http.Header)
		bodyBuf    bytes.Buffer
	)
	start := func(s string, h http.Header) {
		statusLine = s
		called = true
		for k, vs := range h {
			for _, v := range vs {
				header.Add(k, v)
			}
		}
	}

	err := b.pool.Do(ctx, func() error {
		return b.runner.Run(ctx, env, input, &bodyBuf, start)
	})
	if err != nil {
		return nil, vetiserr.Interface(http.StatusInternalServerError, "embedded runtime invocation failed", err)
	}
	if !called {
		return nil, vetiserr.Interface(http.StatusInternalServerError, "embedded runtime never called start_response", nil)
	}
	status := parseStatusLine(statusLine)

	resp := &reqres.Response{StatusCode: status, Header: header}
	resp.Body = io.NopCloser(bytes.NewReader(bodyBuf.Bytes()))
	return resp, nil
}

// parseStatusLine parses a WSGI/Rack-style "200 OK" status line,
// splitting on the first run of whitespace and reading the numeric
// prefix, the exact rule the original's wsgi/mod.rs applies; an
// unparseable status maps to 500 per §9's "invalid interface output"
// rule.
func parseStatusLine(line string) int {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return http.StatusInternalServerError
	}
	code, err := strconv.Atoi(fields[0])
	if err != nil || code < 100 || code > 599 {
		return http.StatusInternalServerError
	}
	return code
}

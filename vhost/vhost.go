// Package vhost implements one virtual host: the (hostname, port)
// pairing the registry indexes, its ordered set of path handlers, and
// the longest-prefix-match dispatch a listener's service function
// calls into. Modeled on the teacher's vhostTrie matching contract
// (caddyhttp/httpserver/vhosttrie.go's Match), simplified to the
// data model's exact-hostname, no-wildcard, insertion-order-tie-break
// rules.
package vhost

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/ararog/vetis/auth"
	"github.com/ararog/vetis/config"
	"github.com/ararog/vetis/mimetable"
	"github.com/ararog/vetis/path"
	"github.com/ararog/vetis/reqres"
	"github.com/ararog/vetis/vlog"

	"go.uber.org/zap"
)

// VirtualHost routes requests for one (hostname, port) pair to the
// longest matching registered path, in insertion order on ties.
type VirtualHost struct {
	hostname       string
	port           uint16
	paths          []path.HostPath
	auth           *auth.BasicAuth
	defaultHeaders map[string]string
	statusPages    map[int]string
	logger         *zap.Logger
}

// New builds a VirtualHost from its configuration and its already
// constructed, ordered path handlers. Ordering is the caller's
// responsibility: paths are tried in the slice order given here,
// which is how insertion-order tie-breaking is realized.
func New(cfg config.VirtualHostConfig, paths []path.HostPath) *VirtualHost {
	vh := &VirtualHost{
		hostname:       cfg.Hostname,
		port:           cfg.Port,
		paths:          paths,
		defaultHeaders: cfg.DefaultHeaders,
		statusPages:    cfg.StatusPages,
		logger:         vlog.Named("vhost").With(zap.String("host", cfg.Hostname)),
	}
	if cfg.Auth != nil {
		vh.auth = auth.New(cfg.Auth.Realm, cfg.Auth.Users)
	}
	if !cfg.LoggingEnabled {
		vh.logger = zap.NewNop()
	}
	return vh
}

// Hostname returns the registered hostname, satisfying registry's key
// extraction.
func (vh *VirtualHost) Hostname() string { return vh.hostname }

// Port returns the bound port, satisfying registry's key extraction.
func (vh *VirtualHost) Port() uint16 { return vh.port }

// Route dispatches req to the longest matching registered path,
// applies default headers, and remaps the response through any
// configured status page. A request that matches no path is answered
// with a 404 Not Found response, not an error.
func (vh *VirtualHost) Route(ctx context.Context, req *reqres.Request) (*reqres.Response, error) {
	if vh.auth != nil {
		ok, err := vh.auth.Authenticate(req.Header)
		if err != nil || !ok {
			if err != nil {
				vh.logger.Debug("authentication failed", zap.Error(err))
			}
			resp := reqres.Text(http.StatusUnauthorized, "Unauthorized")
			resp.Header.Set("WWW-Authenticate", `Basic realm="`+vh.auth.Realm+`"`)
			return vh.finish(resp, nil)
		}
	}

	handler, tail, ok := vh.match(req.URL.Path)
	if !ok {
		vh.logger.Debug("no path matched", zap.String("path", req.URL.Path))
		return vh.finish(reqres.Text(http.StatusNotFound, "Not Found"), nil)
	}

	resp, err := handler.Handle(ctx, req, tail)
	if err != nil {
		if ve, ok := err.(interface{ HTTPStatus() int }); ok {
			return vh.finish(reqres.Text(ve.HTTPStatus(), err.Error()), nil)
		}
		return nil, err
	}
	return vh.finish(resp, nil)
}

// match finds the longest registered URI that prefixes p, returning
// the handler, the unmatched remainder of p, and whether any matched
// at all. Equal-length matches keep the first (lowest index)
// candidate, realizing the insertion-order tie-break.
func (vh *VirtualHost) match(p string) (path.HostPath, string, bool) {
	var (
		best    path.HostPath
		bestLen = -1
	)
	for _, candidate := range vh.paths {
		uri := candidate.URI()
		if !strings.HasPrefix(p, uri) {
			continue
		}
		if len(uri) > bestLen {
			best, bestLen = candidate, len(uri)
		}
	}
	if bestLen < 0 {
		return nil, "", false
	}
	return best, p[bestLen:], true
}

// finish applies default headers and the status-page remap to resp,
// the common tail every Route exit passes through.
func (vh *VirtualHost) finish(resp *reqres.Response, err error) (*reqres.Response, error) {
	if err != nil || resp == nil {
		return resp, err
	}
	for k, v := range vh.defaultHeaders {
		if resp.Header.Get(k) == "" {
			resp.Header.Set(k, v)
		}
	}
	if page, ok := vh.statusPages[resp.StatusCode]; ok {
		if body, readErr := os.ReadFile(page); readErr == nil {
			resp.Header.Set("Content-Type", mimetable.ByFilename(page))
			resp.WithBytes(body)
		}
	}
	return resp, nil
}

package path

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ararog/vetis/reqres"
	"github.com/ararog/vetis/vetiserr"
)

// sharedTransport is the process-wide, lazily-initialized pooled HTTP
// client every ProxyPath executes through, per §4.9/§9 ("Global
// singletons... lazy-initialized, read-only after first use").
var (
	sharedTransportOnce sync.Once
	sharedTransport     *http.Transport
)

func transport() *http.Transport {
	sharedTransportOnce.Do(func() {
		sharedTransport = &http.Transport{
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}
	})
	return sharedTransport
}

// ProxyPath forwards requests to an upstream target, adapted from
// caddyhttp/proxy/reverseproxy.go's singleJoiningSlash request
// rewriting, using net/http's own connection pooling as the "pooled
// client" the specification calls for.
type ProxyPath struct {
	uri    string
	target *url.URL
}

// NewProxyPath builds a ProxyPath forwarding to targetURL.
func NewProxyPath(uri, targetURL string) (*ProxyPath, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil, vetiserr.Proxy(0, "invalid target_url", err)
	}
	return &ProxyPath{uri: uri, target: u}, nil
}

func (p *ProxyPath) URI() string { return p.uri }

func (p *ProxyPath) Handle(ctx context.Context, req *reqres.Request, tail string) (*reqres.Response, error) {
	upstreamURL := *p.target
	upstreamURL.Path = singleJoiningSlash(p.target.Path, tail)
	if req.URL.RawQuery != "" {
		if upstreamURL.RawQuery != "" {
			upstreamURL.RawQuery += "&" + req.URL.RawQuery
		} else {
			upstreamURL.RawQuery = req.URL.RawQuery
		}
	}

	outReq, err := http.NewRequestWithContext(ctx, req.Method, upstreamURL.String(), req.Body)
	if err != nil {
		return nil, vetiserr.Proxy(http.StatusBadGateway, "building upstream request", err)
	}
	outReq.Header = req.Header.Clone()
	outReq.Host = req.Host

	upstreamResp, err := transport().RoundTrip(outReq)
	if err != nil {
		return reqres.Text(http.StatusBadGateway, "Bad Gateway"), nil
	}

	resp := &reqres.Response{
		StatusCode: upstreamResp.StatusCode,
		Header:     upstreamResp.Header,
		Body:       upstreamResp.Body,
	}
	return resp, nil
}

// singleJoiningSlash concatenates a and b with exactly one slash
// between them, ported verbatim from the teacher's reverse proxy.
func singleJoiningSlash(a, b string) string {
	aslash := strings.HasSuffix(a, "/")
	bslash := strings.HasPrefix(b, "/")
	switch {
	case aslash && bslash:
		return a + b[1:]
	case !aslash && !bslash && b != "":
		return a + "/" + b
	}
	return a + b
}

var _ HostPath = (*ProxyPath)(nil)

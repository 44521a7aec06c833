package httpbridge

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	defaultUserAgent = "onair/0.1"
	defaultTimeout   = 10 * time.Second
)

// ClientOptions configure the HTTP client shared by every request.
type ClientOptions struct {
	Timeout   time.Duration
	UserAgent string
}

// sharedClient is built on first use; no connections open until a request runs.
var sharedClient = sync.OnceValue(func() *http.Client {
	return NewClient(ClientOptions{})
})

// SharedClient returns the process-wide client, constructing it on the first
// call. Every call returns the same *http.Client and therefore the same
// connection pool.
func SharedClient() *http.Client {
	return sharedClient()
}

// NewClient builds a client for explicit injection at process start. The
// returned client must not be reconfigured once requests are running.
func NewClient(opts ClientOptions) *http.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &http.Client{
		Timeout:   timeout,
		Transport: &userAgentTransport{base: transport, userAgent: userAgent},
	}
}

// userAgentTransport stamps a User-Agent on requests that didn't set one.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(clone)
}

package httpclient

import (
	"net/http"
	"time"
)

// sharedTransport is reused across all pooled clients so model backends
// keep warm connections between questions.
var sharedTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        20,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     120 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
}

// NewPooledClient creates an http.Client backed by the shared transport.
// timeout caps the whole round trip, independent of any context deadline.
func NewPooledClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: sharedTransport,
	}
}

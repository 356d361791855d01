package utils

import (
	"net"
	"net/http"
	"time"

	"community-bot/ratelimit"
)

// NewHTTPClient returns the client every Discord REST call goes through.
// Requests are throttled by t before reaching base; a nil base uses a pooled transport.
func NewHTTPClient(t *ratelimit.Throttle, base http.RoundTripper) *http.Client {
	if base == nil {
		base = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			MaxIdleConnsPerHost:   10,
		}
	}
	return &http.Client{
		Transport: ratelimit.NewTransport(t, base),
		// Covers queueing behind a locked bucket plus every retry.
		Timeout: 2 * time.Minute,
	}
}

package ratelimit

import (
	"context"
	"net/http"
)

// Transport is an http.RoundTripper that sends every request through a Throttle.
type Transport struct {
	Throttle *Throttle
	// Base performs the actual request. http.DefaultTransport when nil.
	Base http.RoundTripper
}

// NewTransport wraps base with t.
func NewTransport(t *Throttle, base http.RoundTripper) *Transport {
	return &Transport{Throttle: t, Base: base}
}

func (tr *Transport) base() http.RoundTripper {
	if tr.Base != nil {
		return tr.Base
	}
	return http.DefaultTransport
}

// RoundTrip implements http.RoundTripper.
func (tr *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	route, major := RouteOf(req.Method, req.URL.Path)

	sent := false
	return tr.Throttle.Execute(req.Context(), route, major, func(ctx context.Context) (*http.Response, error) {
		if !sent {
			sent = true
			return tr.base().RoundTrip(req)
		}

		retry := req.Clone(ctx)
		if req.Body != nil && req.Body != http.NoBody {
			if req.GetBody == nil {
				return nil, ErrBodyNotReplayable
			}
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			retry.Body = body
		}
		return tr.base().RoundTrip(retry)
	})
}

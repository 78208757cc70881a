package httputil

import (
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// LimitedTransport is an http.RoundTripper that waits for a rate limiter
// token before every request so bursts of seller lookups stay within the
// backend's quota.
type LimitedTransport struct {
	Base        http.RoundTripper
	RateLimiter *rate.Limiter
}

func (t *LimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.RateLimiter != nil {
		if err := t.RateLimiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	transport := t.Base
	if transport == nil {
		transport = http.DefaultTransport
	}
	return transport.RoundTrip(req)
}

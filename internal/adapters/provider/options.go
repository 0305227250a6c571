package provider

import (
	"net/http"
	"time"
)

// Option applies a configuration option to a provider client.
type Option func(*options)

type options struct {
	timeout time.Duration
	client  *http.Client
}

// WithTimeout sets the per-call HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithHTTPClient substitutes the underlying HTTP client. Mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.client = c
		}
	}
}

func buildClient(opts []Option) *http.Client {
	o := options{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.client != nil {
		return o.client
	}
	return &http.Client{Timeout: o.timeout}
}

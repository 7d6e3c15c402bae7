package mailchimp

import (
	"net/http"
	"time"
)

const (
	// DefaultTimeout is the per-request timeout
	DefaultTimeout = 4 * time.Second
	// DefaultConcurrency bounds MembershipAcross fan-out
	DefaultConcurrency = 5
)

// Doer executes a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	timeout        time.Duration
	httpClient     Doer
	baseURL        string
	methodOverride bool
	concurrency    int
}

func defaultOptions() clientOptions {
	return clientOptions{
		timeout:        DefaultTimeout,
		methodOverride: true,
		concurrency:    DefaultConcurrency,
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the transport used for every request.
func WithHTTPClient(doer Doer) Option {
	return func(o *clientOptions) {
		o.httpClient = doer
	}
}

// WithBaseURL overrides the datacenter URL derived from the API key.
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		o.baseURL = baseURL
	}
}

// WithMethodOverride controls whether PUT, PATCH and DELETE are tunneled
// through POST with an X-HTTP-Method-Override header. It is on by default.
func WithMethodOverride(enabled bool) Option {
	return func(o *clientOptions) {
		o.methodOverride = enabled
	}
}

// WithConcurrency sets how many forked clients MembershipAcross runs at once.
func WithConcurrency(n int) Option {
	return func(o *clientOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

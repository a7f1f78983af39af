// Copyright 2025 The Go Dify Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"net/http"
	"time"

	"github.com/go-dify/dify"
	"github.com/go-dify/dify/auth"
)

// Options represents the configuration options for the Dify client.
type Options struct {
	// HTTPClient is the HTTP client to use for requests.
	// If nil, a client with the configured Timeout is constructed.
	HTTPClient *http.Client

	// Headers are additional HTTP headers to include in every request.
	Headers http.Header

	// Timeout bounds each call end to end: connecting, sending the request
	// and receiving the full response. For streaming calls it covers the
	// entire life of the stream. If zero, no timeout is set.
	Timeout time.Duration

	// UserAgent is the User-Agent header value.
	UserAgent string

	// Credentials override the API key given to [New].
	Credentials *auth.Credentials

	// Interceptors run around every outgoing request, outermost first.
	Interceptors []Interceptor

	// BeforeSend, when set, is given each prepared request just before it is
	// sent and may return a modified request.
	BeforeSend func(req *http.Request) *http.Request

	// AllowUnknownEvents makes the event stream yield *dify.UnknownEvent for
	// frames whose discriminator is outside the known taxonomy instead of
	// failing the stream.
	AllowUnknownEvents bool
}

// DefaultOptions returns the default client options.
func DefaultOptions() Options {
	return Options{
		Timeout:   30 * time.Second,
		UserAgent: "go-dify/" + dify.Version,
	}
}

// Option is a function that configures a Client.
type Option func(*Options)

// WithHTTPClient sets the HTTP client to use for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) {
		o.HTTPClient = client
	}
}

// WithTimeout sets the whole-call timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

// WithHeaders sets additional HTTP headers to include in every request.
func WithHeaders(headers http.Header) Option {
	return func(o *Options) {
		o.Headers = headers
	}
}

// WithUserAgent sets the User-Agent header value.
func WithUserAgent(userAgent string) Option {
	return func(o *Options) {
		o.UserAgent = userAgent
	}
}

// WithCredentials sets the credentials used to authorize requests, replacing
// the API key given to [New].
func WithCredentials(creds *auth.Credentials) Option {
	return func(o *Options) {
		o.Credentials = creds
	}
}

// WithInterceptors appends interceptors to run around every request.
func WithInterceptors(interceptors ...Interceptor) Option {
	return func(o *Options) {
		o.Interceptors = append(o.Interceptors, interceptors...)
	}
}

// WithBeforeSend sets a hook that receives every prepared request just
// before it is sent and may return a modified request.
func WithBeforeSend(fn func(req *http.Request) *http.Request) Option {
	return func(o *Options) {
		o.BeforeSend = fn
	}
}

// WithUnknownEventPassthrough makes event streams surface unrecognized
// events as *dify.UnknownEvent instead of failing.
func WithUnknownEventPassthrough() Option {
	return func(o *Options) {
		o.AllowUnknownEvents = true
	}
}

// requestConfig holds per-call overrides.
type requestConfig struct {
	headers    http.Header
	beforeSend func(req *http.Request) *http.Request
}

// RequestOption configures a single call.
type RequestOption func(*requestConfig)

// WithRequestHeader adds a header to this call only.
func WithRequestHeader(key, value string) RequestOption {
	return func(c *requestConfig) {
		if c.headers == nil {
			c.headers = make(http.Header)
		}
		c.headers.Set(key, value)
	}
}

// WithRequestBearerToken overrides the Authorization header for this call.
func WithRequestBearerToken(token string) RequestOption {
	return WithRequestHeader("Authorization", "Bearer "+token)
}

// WithRequestBeforeSend sets a per-call hook that receives the prepared
// request just before it is sent. It runs after the client-level hook.
func WithRequestBeforeSend(fn func(req *http.Request) *http.Request) RequestOption {
	return func(c *requestConfig) {
		c.beforeSend = fn
	}
}

func applyRequestOptions(opts ...RequestOption) requestConfig {
	var config requestConfig
	for _, opt := range opts {
		opt(&config)
	}
	return config
}

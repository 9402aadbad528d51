// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package session

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Option defines a common functional options type which can be used in a
// variadic parameter pattern.
type Option func(interface{})

// ApplyOpts takes a pointer to the options struct as a set of default options
// and applies the slice of opts as overrides.
func ApplyOpts(opts interface{}, opt ...Option) {
	for _, o := range opt {
		if o == nil { // ignore any nil Options
			continue
		}
		o(opts)
	}
}

// DefaultCookieName is the name of the session cookie unless WithCookieName
// is used.
const DefaultCookieName = "auth0_session"

// DefaultTTL is the longest a session is kept by the Store, however active.
const DefaultTTL = 24 * time.Hour

type managerOptions struct {
	withCookieName  string
	withCookiePath  string
	withSecure      bool
	withSameSite    http.SameSite
	withTTL         time.Duration
	withIdleTimeout time.Duration
	withLogger      hclog.Logger
}

func managerDefaults() managerOptions {
	return managerOptions{
		withCookieName: DefaultCookieName,
		withCookiePath: "/",
		withSecure:     true,
		withSameSite:   http.SameSiteLaxMode,
		withTTL:        DefaultTTL,
		withLogger:     hclog.NewNullLogger(),
	}
}

func getManagerOpts(opt ...Option) managerOptions {
	opts := managerDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithCookieName sets the session cookie name.
func WithCookieName(name string) Option {
	return func(o interface{}) {
		if o, ok := o.(*managerOptions); ok && name != "" {
			o.withCookieName = name
		}
	}
}

// WithCookiePath sets the session cookie path. The default is "/".
func WithCookiePath(path string) Option {
	return func(o interface{}) {
		if o, ok := o.(*managerOptions); ok && path != "" {
			o.withCookiePath = path
		}
	}
}

// WithSecureCookie controls the Secure attribute of the session cookie. It
// defaults to true; only disable it for plain http development setups.
func WithSecureCookie(secure bool) Option {
	return func(o interface{}) {
		if o, ok := o.(*managerOptions); ok {
			o.withSecure = secure
		}
	}
}

// WithSameSite sets the SameSite attribute of the session cookie. Strict
// mode drops the cookie on the provider's redirect back to the callback, so
// the default is Lax.
func WithSameSite(mode http.SameSite) Option {
	return func(o interface{}) {
		if o, ok := o.(*managerOptions); ok {
			o.withSameSite = mode
		}
	}
}

// WithTTL sets the absolute lifetime of a session. The default is DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*managerOptions); ok && ttl > 0 {
			o.withTTL = ttl
		}
	}
}

// WithIdleTimeout expires sessions that go unused for d, within their TTL.
// By default sessions only expire at the end of their TTL.
func WithIdleTimeout(d time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*managerOptions); ok && d > 0 {
			o.withIdleTimeout = d
		}
	}
}

// WithLogger provides an optional logger for the Manager.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*managerOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth0

import (
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/text/language"

	"github.com/hashicorp/cap-auth0/jwt"
	"github.com/hashicorp/cap-auth0/metrics"
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

// configOptions is the set of available options for NewConfig.
type configOptions struct {
	withAudience             string
	withScopes               []string
	withSigningAlgs          []jwt.Alg
	withSilentAuth           bool
	withRequireVerifiedEmail bool
	withTokenSessionKey      string
	withPayloadSessionKey    string
	withProviderCA           string
	withUILocales            []language.Tag
	withStateSigningKey      StateSigningKey
	withLogger               hclog.Logger
}

// configDefaults is a handy way to get the defaults at runtime and during
// unit tests.
func configDefaults() configOptions {
	return configOptions{
		withScopes:               append([]string(nil), DefaultScopes...),
		withSigningAlgs:          []jwt.Alg{jwt.RS256},
		withRequireVerifiedEmail: true,
		withTokenSessionKey:      DefaultTokenSessionKey,
		withPayloadSessionKey:    DefaultPayloadSessionKey,
		withLogger:               hclog.NewNullLogger(),
	}
}

func getConfigOpts(opt ...Option) configOptions {
	opts := configDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithAudience provides the audience sent with authorization requests. The
// default is the provider's userinfo endpoint.
func WithAudience(aud string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withAudience = aud
		}
	}
}

// WithScopes provides the scopes to request. They must include "openid".
func WithScopes(scopes ...string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok && len(scopes) > 0 {
			o.withScopes = scopes
		}
	}
}

// WithSigningAlgs provides the allowed id_token signing algorithms. The
// default is RS256.
func WithSigningAlgs(algs ...jwt.Alg) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok && len(algs) > 0 {
			o.withSigningAlgs = algs
		}
	}
}

// WithSilentAuthEnabled makes authorization requests silent by default.
func WithSilentAuthEnabled(enabled bool) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withSilentAuth = enabled
		}
	}
}

// WithRequireVerifiedEmail controls the email_verified check. The default
// is true.
func WithRequireVerifiedEmail(required bool) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withRequireVerifiedEmail = required
		}
	}
}

// WithSessionKeys overrides the session key names for the access token
// record and the id_token claims. Empty values keep the defaults.
func WithSessionKeys(tokenKey, payloadKey string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			if tokenKey != "" {
				o.withTokenSessionKey = tokenKey
			}
			if payloadKey != "" {
				o.withPayloadSessionKey = payloadKey
			}
		}
	}
}

// WithProviderCA provides an optional PEM encoded CA cert used when calling
// the provider.
func WithProviderCA(cert string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withProviderCA = cert
		}
	}
}

// WithUILocales provides the preferred languages for the provider's login
// pages, sent as the ui_locales parameter.
func WithUILocales(tags ...language.Tag) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withUILocales = tags
		}
	}
}

// WithStateSigningKey enables HMAC signing of the authorization state. The
// key must be at least 32 bytes.
func WithStateSigningKey(key []byte) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok && len(key) > 0 {
			o.withStateSigningKey = StateSigningKey(key)
		}
	}
}

// WithLogger provides an optional logger.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}

// authURLOptions is the set of available options for Provider.AuthURL.
type authURLOptions struct {
	withSilentAuth *bool
}

func getAuthURLOpts(opt ...Option) authURLOptions {
	var opts authURLOptions
	ApplyOpts(&opts, opt...)
	return opts
}

// WithSilentAuth overrides Config.SilentAuth for one authorization request.
func WithSilentAuth(silent bool) Option {
	return func(o interface{}) {
		if o, ok := o.(*authURLOptions); ok {
			o.withSilentAuth = &silent
		}
	}
}

// providerOptions is the set of available options for NewProvider.
type providerOptions struct {
	withMetrics *metrics.Metrics
	withNow     func() time.Time
	withKeySet  jwt.KeySet
}

func providerDefaults() providerOptions {
	return providerOptions{withNow: time.Now}
}

func getProviderOpts(opt ...Option) providerOptions {
	opts := providerDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithMetrics provides optional Prometheus metrics for the login flow.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o interface{}) {
		if o, ok := o.(*providerOptions); ok {
			o.withMetrics = m
		}
	}
}

// WithNow provides a time source for token and session expiry checks.
func WithNow(now func() time.Time) Option {
	return func(o interface{}) {
		if o, ok := o.(*providerOptions); ok && now != nil {
			o.withNow = now
		}
	}
}

// WithKeySet replaces the provider's remote JWKS with ks, for example a
// jwt.StaticKeySet built from PEM encoded keys.
func WithKeySet(ks jwt.KeySet) Option {
	return func(o interface{}) {
		if o, ok := o.(*providerOptions); ok && ks != nil {
			o.withKeySet = ks
		}
	}
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth0

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/text/language"

	"github.com/hashicorp/cap-auth0/jwt"
	sdkHttp "github.com/hashicorp/cap-auth0/sdk/http"
)

// ClientSecret is an oauth client secret.
type ClientSecret string

// RedactedClientSecret is the redacted string or json for an oauth client secret
const RedactedClientSecret = "[REDACTED: client secret]"

// String will redact the client secret
func (t ClientSecret) String() string {
	return RedactedClientSecret
}

// MarshalJSON will redact the client secret
func (t ClientSecret) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedClientSecret)
}

// StateSigningKey is the HMAC key used to sign the authorization state.
type StateSigningKey []byte

// RedactedStateSigningKey is the redacted string or json for a state signing key
const RedactedStateSigningKey = "[REDACTED: state signing key]"

// String will redact the key
func (k StateSigningKey) String() string {
	return RedactedStateSigningKey
}

// MarshalJSON will redact the key
func (k StateSigningKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedStateSigningKey)
}

// Defaults applied by NewConfig.
const (
	DefaultTokenSessionKey   = "auth0_token"
	DefaultPayloadSessionKey = "jwt_payload"
)

// DefaultScopes are requested when WithScopes is not used.
var DefaultScopes = []string{oidc.ScopeOpenID, "profile", "email"}

// Config represents the configuration of one Auth0 application using the
// authorization code flow. A Config must not be modified once it has been
// passed to NewProvider.
type Config struct {
	// Domain is the Auth0 tenant domain, such as "example.us.auth0.com". It
	// may include a port but never a scheme or path.
	Domain string

	// ClientID is the application's client id.
	ClientID string

	// ClientSecret is the application's client secret.
	ClientSecret ClientSecret

	// CallbackURL is the absolute URL the provider redirects to after login.
	// Its path is where the callback handler must be mounted.
	CallbackURL string

	// LogoutURL is where the provider sends the user after logout.
	LogoutURL string

	// Audience is sent with the authorization request. It defaults to the
	// provider's userinfo endpoint.
	Audience string

	// Scopes must include "openid".
	Scopes []string

	// SigningAlgs are the allowed id_token signing algorithms.
	SigningAlgs []jwt.Alg

	// SilentAuth makes authorization requests silent (prompt=none) unless
	// overridden per request.
	SilentAuth bool

	// RequireVerifiedEmail rejects id_tokens whose email_verified claim is
	// absent or false.
	RequireVerifiedEmail bool

	// TokenSessionKey and PayloadSessionKey name the session keys holding
	// the access token record and the verified id_token claims.
	TokenSessionKey   string
	PayloadSessionKey string

	// ProviderCA is an optional PEM encoded CA used when calling the provider.
	ProviderCA string

	// UILocales are sent as the ui_locales hint when set.
	UILocales []language.Tag

	// StateSigningKey enables HMAC signed authorization state when set.
	StateSigningKey StateSigningKey

	// Logger is used by the provider and the handlers; it never receives
	// secrets.
	Logger hclog.Logger `json:"-"`
}

// NewConfig composes a new config for an Auth0 application.
//
// Supported options: WithAudience, WithScopes, WithSigningAlgs,
// WithSilentAuthEnabled, WithRequireVerifiedEmail, WithSessionKeys,
// WithProviderCA, WithUILocales, WithStateSigningKey, WithLogger.
func NewConfig(domain, clientID string, clientSecret ClientSecret, callbackURL, logoutURL string, opt ...Option) (*Config, error) {
	const op = "auth0.NewConfig"
	opts := getConfigOpts(opt...)
	c := &Config{
		Domain:               domain,
		ClientID:             clientID,
		ClientSecret:         clientSecret,
		CallbackURL:          callbackURL,
		LogoutURL:            logoutURL,
		Audience:             opts.withAudience,
		Scopes:               opts.withScopes,
		SigningAlgs:          opts.withSigningAlgs,
		SilentAuth:           opts.withSilentAuth,
		RequireVerifiedEmail: opts.withRequireVerifiedEmail,
		TokenSessionKey:      opts.withTokenSessionKey,
		PayloadSessionKey:    opts.withPayloadSessionKey,
		ProviderCA:           opts.withProviderCA,
		UILocales:            opts.withUILocales,
		StateSigningKey:      opts.withStateSigningKey,
		Logger:               opts.withLogger,
	}
	if c.Audience == "" && domain != "" {
		c.Audience = c.UserInfoURL()
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid config: %w", op, err)
	}
	return c, nil
}

// Validate the configuration. Every problem found is reported in the
// returned error, not just the first.
func (c *Config) Validate() error {
	const op = "Config.Validate"
	if c == nil {
		return fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	}
	var result *multierror.Error
	invalid := func(format string, args ...interface{}) {
		result = multierror.Append(result, fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidParameter))
	}

	switch u, err := url.Parse("https://" + c.Domain); {
	case c.Domain == "":
		invalid("domain is empty")
	case err != nil || u.Host != c.Domain || u.User != nil:
		invalid("domain %q must be a bare host name", c.Domain)
	}
	if c.ClientID == "" {
		invalid("client id is empty")
	}
	if c.ClientSecret == "" {
		invalid("client secret is empty")
	}
	if err := validateAbsURL(c.CallbackURL); err != nil {
		invalid("callback URL: %s", err)
	}
	if err := validateAbsURL(c.LogoutURL); err != nil {
		invalid("logout URL: %s", err)
	}
	if c.Audience == "" {
		invalid("audience is empty")
	}
	if !contains(c.Scopes, oidc.ScopeOpenID) {
		invalid("scopes must include %q", oidc.ScopeOpenID)
	}
	if len(c.SigningAlgs) == 0 {
		invalid("signing algorithms are empty")
	} else if err := jwt.SupportedSigningAlgorithm(c.SigningAlgs...); err != nil {
		result = multierror.Append(result, err)
	}
	if c.TokenSessionKey == "" || c.PayloadSessionKey == "" {
		invalid("session keys must not be empty")
	}
	if c.TokenSessionKey != "" && c.TokenSessionKey == c.PayloadSessionKey {
		invalid("session keys must be distinct")
	}
	if c.StateSigningKey != nil && len(c.StateSigningKey) < minStateSigningKeyLen {
		invalid("state signing key must be at least %d bytes", minStateSigningKeyLen)
	}
	if c.ProviderCA != "" {
		if _, err := c.HttpClient(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func validateAbsURL(raw string) error {
	if raw == "" {
		return errors.New("is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%q is invalid", raw)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("%q scheme is not http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// BaseURL returns the provider's base URL, https://{domain}.
func (c *Config) BaseURL() string { return "https://" + c.Domain }

// Issuer returns the expected "iss" claim of id_tokens, https://{domain}/.
func (c *Config) Issuer() string { return c.BaseURL() + "/" }

// AuthorizeURL returns the provider's authorization endpoint.
func (c *Config) AuthorizeURL() string { return c.BaseURL() + "/authorize" }

// TokenURL returns the provider's token endpoint.
func (c *Config) TokenURL() string { return c.BaseURL() + "/oauth/token" }

// LogoutEndpoint returns the provider's logout endpoint.
func (c *Config) LogoutEndpoint() string { return c.BaseURL() + "/v2/logout" }

// JWKSURL returns the provider's JSON Web Key Set endpoint.
func (c *Config) JWKSURL() string { return c.BaseURL() + "/.well-known/jwks.json" }

// UserInfoURL returns the provider's userinfo endpoint.
func (c *Config) UserInfoURL() string { return c.BaseURL() + "/userinfo" }

// CallbackPath returns the path portion of CallbackURL, where the callback
// handler must be mounted.
func (c *Config) CallbackPath() string {
	u, err := url.Parse(c.CallbackURL)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

// HttpClient is a helper function that creates a new http client for the
// provider configured
func (c *Config) HttpClient() (*http.Client, error) {
	const op = "Config.HttpClient"
	client, err := sdkHttp.NewClient(c.ProviderCA)
	if err != nil {
		if errors.Is(err, sdkHttp.ErrInvalidCertificatePem) {
			return nil, fmt.Errorf("%s: could not parse CA PEM value: %w", op, ErrInvalidCACert)
		}
		return nil, fmt.Errorf("%s: could not get an http client: %w", op, err)
	}
	return client, nil
}

// HttpClientContext is a helper function that returns a new Context that
// carries the provided HTTP client. This method sets the same context key used
// by the github.com/coreos/go-oidc and golang.org/x/oauth2 packages, so the
// returned context works for those packages as well.
func HttpClientContext(ctx context.Context, client *http.Client) context.Context {
	// simple to implement as a wrapper for the coreos package
	return oidc.ClientContext(ctx, client)
}

func (c *Config) logger() hclog.Logger {
	if c.Logger == nil {
		return hclog.NewNullLogger()
	}
	return c.Logger
}

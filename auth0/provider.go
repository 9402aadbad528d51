// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth0

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"

	"github.com/hashicorp/cap-auth0/jwt"
	"github.com/hashicorp/cap-auth0/metrics"
)

// interactionRequired are the provider error codes that mean a silent
// attempt needs the user and should be retried interactively.
var interactionRequired = map[string]bool{
	"login_required":       true,
	"interaction_required": true,
	"consent_required":     true,
}

// InteractionRequired reports whether the provider error code means a
// silent authorization request must be retried with a prompt.
func InteractionRequired(code string) bool {
	return interactionRequired[code]
}

// Provider runs the authorization code flow for one Auth0 application:
// it builds authorization and logout URLs, exchanges codes for tokens,
// verifies id_tokens and reads and writes the login in the user's session.
type Provider struct {
	config       *Config
	oauth2Config oauth2.Config
	client       *http.Client
	verifier     *Verifier
	states       stateCodec
	logger       hclog.Logger
	metrics      *metrics.Metrics
	now          func() time.Time

	mu sync.Mutex

	// backgroundCtx is the context used by the provider for background
	// activities like fetching the JWKS.
	backgroundCtx context.Context

	// backgroundCtxCancel is used to cancel any background activities running
	// in spawned go routines.
	backgroundCtxCancel context.CancelFunc
}

// NewProvider creates a Provider for c. It makes no request to the provider;
// the JWKS is fetched on first use and cached.
//
// See Provider.Done() which must be called to release provider resources.
//
// Supported options: WithMetrics, WithNow, WithKeySet.
func NewProvider(c *Config, opt ...Option) (*Provider, error) {
	const op = "auth0.NewProvider"
	if c == nil {
		return nil, fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: config is invalid: %w", op, err)
	}
	opts := getProviderOpts(opt...)

	ctx, cancel := context.WithCancel(context.Background())
	// initializing the Provider with it's background ctx/cancel will
	// allow us to use p.Done() to release any resources when returning errors
	// from this function.
	p := &Provider{
		config:              c,
		logger:              c.logger().Named("auth0"),
		metrics:             opts.withMetrics,
		now:                 opts.withNow,
		backgroundCtx:       ctx,
		backgroundCtxCancel: cancel,
	}

	client, err := c.HttpClient()
	if err != nil {
		p.Done()
		return nil, fmt.Errorf("%s: unable to create http client: %w", op, err)
	}
	p.client = client

	keySet := opts.withKeySet
	if keySet == nil {
		keySet, err = jwt.NewJSONWebKeySet(p.backgroundCtx, c.JWKSURL(), c.ProviderCA)
		if err != nil {
			p.Done()
			return nil, fmt.Errorf("%s: unable to create key set: %w", op, err)
		}
	}
	validator, err := jwt.NewValidator(keySet, jwt.WithNow(p.now))
	if err != nil {
		p.Done()
		return nil, fmt.Errorf("%s: unable to create validator: %w", op, err)
	}
	if p.verifier, err = NewVerifier(c, validator); err != nil {
		p.Done()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p.states = jsonStateCodec{}
	if len(c.StateSigningKey) > 0 {
		p.states = signedStateCodec{key: c.StateSigningKey, now: p.now}
	}

	p.oauth2Config = oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: string(c.ClientSecret),
		RedirectURL:  c.CallbackURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.AuthorizeURL(),
			TokenURL:  c.TokenURL(),
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: c.Scopes,
	}
	return p, nil
}

// Done with the provider's background resources and must be called for every
// Provider created
func (p *Provider) Done() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.backgroundCtxCancel != nil {
		p.backgroundCtxCancel()
		p.backgroundCtxCancel = nil
	}
}

// Config returns the provider's configuration.
func (p *Provider) Config() *Config { return p.config }

// Logger returns the provider's logger.
func (p *Provider) Logger() hclog.Logger { return p.logger }

// Metrics returns the provider's metrics, which may be nil.
func (p *Provider) Metrics() *metrics.Metrics { return p.metrics }

// Now returns the current time of the provider's clock.
func (p *Provider) Now() time.Time { return p.now() }

// AuthURL returns the provider's authorization URL for a login that resumes
// at destination, a path on this application. The attempt is silent
// (prompt=none) when Config.SilentAuth is set, unless WithSilentAuth
// overrides it.
//
// Supported options: WithSilentAuth.
func (p *Provider) AuthURL(destination string, opt ...Option) (string, error) {
	const op = "Provider.AuthURL"
	if err := validDestination(destination); err != nil {
		return "", fmt.Errorf("%s: %s: %w", op, err, ErrInvalidParameter)
	}
	opts := getAuthURLOpts(opt...)
	silent := p.config.SilentAuth
	if opts.withSilentAuth != nil {
		silent = *opts.withSilentAuth
	}

	state, err := p.states.encode(AuthState{Destination: destination, SilentAuth: silent})
	if err != nil {
		return "", fmt.Errorf("%s: unable to encode state: %w", op, err)
	}
	authCodeOpts := []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("audience", p.config.Audience),
	}
	if silent {
		authCodeOpts = append(authCodeOpts, oauth2.SetAuthURLParam("prompt", "none"))
	}
	if len(p.config.UILocales) > 0 {
		locales := make([]string, 0, len(p.config.UILocales))
		for _, t := range p.config.UILocales {
			locales = append(locales, t.String())
		}
		authCodeOpts = append(authCodeOpts, oauth2.SetAuthURLParam("ui_locales", strings.Join(locales, " ")))
	}
	return p.oauth2Config.AuthCodeURL(state, authCodeOpts...), nil
}

// LogoutURL returns the provider's logout URL, which ends the provider's
// single sign-on session and sends the user to Config.LogoutURL.
func (p *Provider) LogoutURL() string {
	v := url.Values{
		"returnTo":  {p.config.LogoutURL},
		"client_id": {p.config.ClientID},
	}
	return p.config.LogoutEndpoint() + "?" + v.Encode()
}

// DecodeState decodes the "state" callback parameter. A missing, malformed
// or tampered state, or one whose destination is not a local path, is an
// *Err of kind ErrInvalidCallback.
func (p *Provider) DecodeState(raw string) (AuthState, error) {
	const op = "Provider.DecodeState"
	if raw == "" {
		return AuthState{}, NewError(ErrInvalidCallback, WithOp(op), WithMsg("state is missing"))
	}
	s, err := p.states.decode(raw)
	if err != nil {
		return AuthState{}, NewError(ErrInvalidCallback, WithOp(op), WithMsg("state is malformed"), WithWrap(err))
	}
	if err := validDestination(s.Destination); err != nil {
		return AuthState{}, NewError(ErrInvalidCallback, WithOp(op), WithMsg("state destination is invalid"), WithWrap(err))
	}
	return s, nil
}

// Exchange exchanges an authorization code at the token endpoint and
// verifies the returned id_token.
//
// Errors are *Err values: ErrAuthorizationDenied when the provider rejects
// the code, ErrProviderUnavailable when it cannot be reached or answers with
// a server error, ErrInvalidToken for a malformed token response, and
// ErrInvalidToken or ErrEmailNotVerified from id_token verification.
func (p *Provider) Exchange(ctx context.Context, code string) (*Token, error) {
	const op = "Provider.Exchange"
	if code == "" {
		return nil, NewError(ErrInvalidCallback, WithOp(op), WithMsg("authorization code is missing"))
	}
	defer p.metrics.ObserveExchange(time.Now())

	oauth2Token, err := p.oauth2Config.Exchange(HttpClientContext(ctx, p.client), code)
	if err != nil {
		var re *oauth2.RetrieveError
		var ue *url.Error
		switch {
		case errors.As(err, &re) && (re.Response == nil || re.Response.StatusCode < http.StatusInternalServerError):
			errCode := re.ErrorCode
			if errCode == "" {
				errCode = kinds[ErrAuthorizationDenied].code
			}
			msg := re.ErrorDescription
			if msg == "" {
				msg = "authorization code was rejected"
			}
			return nil, NewError(ErrAuthorizationDenied, WithOp(op), WithCode(errCode), WithMsg(msg), WithWrap(err))
		case errors.As(err, &re), errors.As(err, &ue):
			return nil, NewError(ErrProviderUnavailable, WithOp(op), WithMsg("unable to reach the identity provider"), WithWrap(err))
		default:
			// a 200 reply that is not a usable token response
			return nil, NewError(ErrInvalidToken, WithOp(op), WithMsg("token response is malformed"), WithWrap(err))
		}
	}

	rawIdToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok || rawIdToken == "" {
		return nil, NewError(ErrInvalidToken, WithOp(op), WithMsg("id_token is missing from the token response"), WithWrap(ErrMissingIdToken))
	}
	claims, err := p.verifier.Verify(ctx, IdToken(rawIdToken))
	if err != nil {
		return nil, err
	}
	return &Token{
		record:  newTokenRecord(oauth2Token),
		idToken: IdToken(rawIdToken),
		claims:  claims,
	}, nil
}

// VerifyIdToken verifies t against the provider's keys and the configured
// issuer, audience and algorithms.
func (p *Provider) VerifyIdToken(ctx context.Context, t IdToken) (Claims, error) {
	return p.verifier.Verify(ctx, t)
}

// UserInfo calls the provider's userinfo endpoint with the record's access
// token and decodes the response into claims.
func (p *Provider) UserInfo(ctx context.Context, r *TokenRecord, claims interface{}) error {
	const op = "Provider.UserInfo"
	switch {
	case r == nil:
		return fmt.Errorf("%s: token record is nil: %w", op, ErrNilParameter)
	case r.accessToken == "":
		return fmt.Errorf("%s: access token is empty: %w", op, ErrInvalidParameter)
	case claims == nil:
		return fmt.Errorf("%s: claims interface is nil: %w", op, ErrNilParameter)
	}

	// a static source: expired tokens are sent as is and never refreshed
	client := oauth2.NewClient(HttpClientContext(ctx, p.client), oauth2.StaticTokenSource(r.oauth2Token()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.UserInfoURL(), nil)
	if err != nil {
		return fmt.Errorf("%s: unable to create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: provider UserInfo request failed: %w", op, errors.Join(ErrUserInfoFailed, err))
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s: unable to read response: %w", op, errors.Join(ErrUserInfoFailed, err))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: provider returned %s: %w", op, resp.Status, ErrUserInfoFailed)
	}
	if err := json.Unmarshal(body, claims); err != nil {
		return fmt.Errorf("%s: failed to decode UserInfo claims: %w", op, errors.Join(ErrUserInfoFailed, err))
	}
	return nil
}

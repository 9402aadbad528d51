// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp/cap-auth0/auth0"
	"github.com/hashicorp/cap-auth0/metrics"
	"github.com/hashicorp/cap-auth0/session"
)

// AuthCode creates the Auth0 authorization code callback handler for p.
//
// A silent attempt (prompt=none) that the provider answers with
// login_required, interaction_required or consent_required is retried once
// interactively. Any other provider error is auth0.ErrAuthorizationDenied.
// On success the access token record and the verified claims are stored in
// the session and the SuccessResponseFunc is called.
//
// Supported options: WithSuccessResponseFunc, WithErrorResponseFunc.
func AuthCode(p *auth0.Provider, opt ...auth0.Option) http.HandlerFunc {
	opts := getAuthCodeOpts(opt...)
	logger := hclog.NewNullLogger()
	if p != nil {
		logger = p.Logger().Named("callback")
	}
	return func(w http.ResponseWriter, req *http.Request) {
		const op = "callback.AuthCode"

		fail := func(state auth0.AuthState, err error) {
			logFailure(logger, err)
			if p != nil {
				p.Metrics().ObserveLogin(outcome(err))
			}
			opts.withErrorResponseFunc(state, err, w, req)
		}

		if p == nil {
			fail(auth0.AuthState{}, fmt.Errorf("%s: provider is nil: %w", op, auth0.ErrNilParameter))
			return
		}

		// get parameters from either the body or query parameters.
		// FormValue prioritizes body values, if found.
		state, err := p.DecodeState(req.FormValue("state"))
		if err != nil {
			fail(auth0.AuthState{}, err)
			return
		}

		if reqErr := req.FormValue("error"); reqErr != "" {
			if state.SilentAuth && auth0.InteractionRequired(reqErr) {
				authURL, err := p.AuthURL(state.Destination, auth0.WithSilentAuth(false))
				if err != nil {
					fail(state, fmt.Errorf("%s: unable to build interactive authorization URL: %w", op, err))
					return
				}
				logger.Debug("silent authentication needs interaction, retrying", "error", reqErr, "destination", state.Destination)
				p.Metrics().IncrementSilentEscalation()
				http.Redirect(w, req, authURL, http.StatusFound)
				return
			}
			msg := req.FormValue("error_description")
			if msg == "" {
				msg = "authorization was denied by the identity provider"
			}
			fail(state, auth0.NewError(auth0.ErrAuthorizationDenied, auth0.WithOp(op), auth0.WithCode(reqErr), auth0.WithMsg(msg)))
			return
		}

		code := req.FormValue("code")
		if code == "" {
			fail(state, auth0.NewError(auth0.ErrInvalidCallback, auth0.WithOp(op), auth0.WithMsg("authorization code is missing")))
			return
		}

		s, err := session.FromRequest(req)
		if err != nil {
			fail(state, fmt.Errorf("%s: %w", op, err))
			return
		}

		tok, err := p.Exchange(req.Context(), code)
		if err != nil {
			fail(state, err)
			return
		}
		if err := p.StoreLogin(s, tok); err != nil {
			fail(state, fmt.Errorf("%s: unable to store login: %w", op, err))
			return
		}

		logger.Debug("login succeeded", "subject", tok.Claims().Subject(), "destination", state.Destination)
		p.Metrics().ObserveLogin(metrics.OutcomeSuccess)
		opts.withSuccessResponseFunc(state, tok, w, req)
	}
}

// outcome maps a callback failure to its metrics label.
func outcome(err error) string {
	switch {
	case errors.Is(err, auth0.ErrInvalidCallback):
		return metrics.OutcomeInvalidCallback
	case errors.Is(err, auth0.ErrAuthorizationDenied):
		return metrics.OutcomeDenied
	case errors.Is(err, auth0.ErrEmailNotVerified):
		return metrics.OutcomeEmailNotVerified
	case errors.Is(err, auth0.ErrInvalidToken):
		return metrics.OutcomeInvalidToken
	case errors.Is(err, auth0.ErrProviderUnavailable):
		return metrics.OutcomeProviderUnavailable
	default:
		return metrics.OutcomeError
	}
}

// logFailure logs rejected logins at Warn and everything else at Error.
func logFailure(logger hclog.Logger, err error) {
	var e *auth0.Err
	if errors.As(err, &e) && e.Status < http.StatusInternalServerError {
		logger.Warn("login rejected", "code", e.Code, "error", err)
		return
	}
	logger.Error("login failed", "error", err)
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package guard

import (
	"fmt"
	"net/http"

	"github.com/hashicorp/cap-auth0/auth0"
	"github.com/hashicorp/cap-auth0/session"
)

// RequireAuth returns middleware that only calls the wrapped handler for
// users with an unexpired login in their session. Everyone else is
// redirected (302) to the provider's authorization URL and comes back to the
// requested URL after the callback. The attempt is silent when
// auth0.Config.SilentAuth is set.
//
// The claims and the access token record of an authenticated user are
// available to the wrapped handler through ClaimsFromContext and
// AccessToken. There is no refresh: an expired login means a new
// authorization request.
func RequireAuth(p *auth0.Provider) func(http.Handler) http.Handler {
	logger := p.Logger().Named("guard")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "guard.RequireAuth"
			s, err := session.FromRequest(r)
			if err != nil {
				logger.Error("session middleware is missing", "error", err)
				auth0.WriteError(w, fmt.Errorf("%s: %w", op, err))
				return
			}

			claims, ok, err := p.Identity(s)
			if err != nil {
				logger.Warn("stored identity is unreadable", "error", err)
				ok = false
			}
			if ok && !claims.Expired(p.Now()) {
				record, _, err := p.TokenRecord(s)
				if err != nil {
					logger.Warn("stored access token is unreadable", "error", err)
				}
				logger.Trace("request authenticated", "subject", claims.Subject(), "path", r.URL.Path)
				next.ServeHTTP(w, r.WithContext(newContext(r.Context(), claims, record)))
				return
			}

			if ok {
				logger.Debug("login expired", "subject", claims.Subject())
			}
			p.ClearLogin(s)

			destination := r.URL.RequestURI()
			authURL, err := p.AuthURL(destination)
			if err != nil {
				logger.Debug("request URI cannot be a destination, using /", "uri", destination)
				if authURL, err = p.AuthURL("/"); err != nil {
					logger.Error("unable to build authorization URL", "error", err)
					auth0.WriteError(w, fmt.Errorf("%s: %w", op, err))
					return
				}
			}
			logger.Debug("redirecting to the identity provider", "destination", destination)
			p.Metrics().IncrementGuardRedirect()
			http.Redirect(w, r, authURL, http.StatusFound)
		})
	}
}

// Logout returns a handler that destroys the user's session and redirects
// (302) to the provider's logout URL, which ends the provider's session too.
// It works whether or not the user is logged in.
func Logout(p *auth0.Provider) http.HandlerFunc {
	logger := p.Logger().Named("guard")
	return func(w http.ResponseWriter, r *http.Request) {
		if s, err := session.FromRequest(r); err == nil {
			if err := s.Destroy(); err != nil {
				logger.Error("unable to destroy session", "error", err)
			}
		} else {
			logger.Warn("logout without a session", "error", err)
		}
		logger.Debug("logging out")
		p.Metrics().IncrementLogout()
		http.Redirect(w, r, p.LogoutURL(), http.StatusFound)
	}
}

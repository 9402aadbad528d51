// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
guard is a package that provides http middleware requiring an Auth0 login
for the wrapped handler, a logout handler, and accessors for the identity
of the authenticated request.

Both run behind session.Manager.Middleware. A typical router looks like:

	p, _ := auth0.NewProvider(config)
	mux.Handle(config.CallbackPath(), callback.AuthCode(p))
	mux.Handle("/logout", guard.Logout(p))
	mux.Handle("/profile", guard.RequireAuth(p)(profileHandler))
	handler := sessions.Middleware(mux)
*/
package guard

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
callback is a package that provides the Auth0 authorization code callback
(in the form of an http.HandlerFunc). The handler decodes the returned state,
retries failed silent attempts interactively, exchanges the code, stores the
login in the user's session and sends the user back to where they started.

The handler must run behind session.Manager.Middleware and be mounted at
auth0.Config.CallbackPath().
*/
package callback

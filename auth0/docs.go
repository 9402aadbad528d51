// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
auth0 is a package for adding Auth0 login to web applications using the
OAuth 2.0 authorization code flow.

Primary types provided by the package:

* Config: provides the Auth0 application's configuration: tenant domain,
client credentials, callback and logout URLs, scopes, audience and the
signing algorithms accepted for id_tokens. Config also derives the tenant's
endpoints (authorize, token, logout, JWKS and userinfo).

* Provider: runs the flow for one Config. It builds authorization URLs
carrying an AuthState (the destination to return to and whether the attempt
was silent), builds logout URLs, exchanges codes for a Token and verifies the
returned id_token. It also reads and writes the login in the user's session.
Provider.Done() must be called to release its background resources.

* Verifier: verifies id_tokens against the tenant's JWKS. The key set is
fetched on first use, cached and refetched when a token is signed with an
unknown key.

* Token: the result of a successful Exchange. Its TokenRecord (access, id and
refresh tokens) and Claims are what StoreLogin puts in the session.

* Err: the errors returned by the flow. Each Err has a kind (such as
ErrAuthorizationDenied or ErrInvalidToken), a code and an HTTP status;
WriteError renders any error as a JSON error response.

* TestProvider: a local http server that behaves like an Auth0 tenant for
tests. See StartTestProvider.

The callback handler lives in auth0/callback and the middleware that requires
a login in auth0/guard.
*/
package auth0

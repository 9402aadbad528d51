// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// cap-auth0 provides a collection of related packages which add Auth0 login
// to Go web applications using the OAuth 2.0 authorization code flow:
//
//   - auth0: configuration, id_token verification and the Provider that
//     builds authorization and logout URLs and exchanges codes
//   - auth0/callback: the callback handler, with silent authentication retried
//     interactively
//   - auth0/guard: middleware requiring a login, and the logout handler
//   - session: server side sessions kept in memory or in Redis
//   - jwt: JWT signature and claims validation against a cached JWKS
//   - config: loading an auth0.Config from AUTH0_* environment variables
//   - metrics: Prometheus metrics for the login flow
//
// See auth0/examples/webapp for a complete application.
package cap

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
Package jwt verifies signed JSON Web Tokens issued by an identity provider.

A KeySet verifies a token's signature and returns its claims. The
JSONWebKeySet fetches keys from a provider's JWKS endpoint and keeps them in
memory, fetching again only when a token is signed by a key it has not seen.
The StaticKeySet verifies against locally configured public keys.

A Validator combines a KeySet with the registered claim checks (issuer,
audience, expiration) and an allow-list of signing algorithms.
*/
package jwt

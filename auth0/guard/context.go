// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package guard

import (
	"context"
	"net/http"

	"github.com/hashicorp/cap-auth0/auth0"
)

type claimsKey struct{}

type tokenRecordKey struct{}

func newContext(ctx context.Context, c auth0.Claims, r *auth0.TokenRecord) context.Context {
	ctx = context.WithValue(ctx, claimsKey{}, c)
	if r != nil {
		ctx = context.WithValue(ctx, tokenRecordKey{}, r)
	}
	return ctx
}

// ClaimsFromContext returns the verified id_token claims of the user, as set
// by RequireAuth.
func ClaimsFromContext(ctx context.Context) (auth0.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(auth0.Claims)
	return c, ok && c != nil
}

// TokenRecordFromContext returns the access token record of the user, as set
// by RequireAuth.
func TokenRecordFromContext(ctx context.Context) (*auth0.TokenRecord, bool) {
	r, ok := ctx.Value(tokenRecordKey{}).(*auth0.TokenRecord)
	return r, ok && r != nil
}

// AccessToken returns the access token of the user making r, for calls to
// APIs of the configured audience.
func AccessToken(r *http.Request) (auth0.AccessToken, bool) {
	rec, ok := TokenRecordFromContext(r.Context())
	if !ok || rec.AccessToken() == "" {
		return "", false
	}
	return rec.AccessToken(), true
}

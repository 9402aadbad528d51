// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package session

import (
	"context"
	"fmt"
	"net/http"
)

type ctxKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session carried by ctx, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}

// FromRequest returns the session installed by Manager.Middleware. It
// returns ErrNoSession when the middleware is not in the handler chain.
func FromRequest(r *http.Request) (*Session, error) {
	const op = "session.FromRequest"
	s, ok := FromContext(r.Context())
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrNoSession)
	}
	return s, nil
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth0

import (
	"context"
	"fmt"

	"github.com/hashicorp/cap-auth0/jwt"
)

// Verifier verifies id_tokens issued to one Auth0 application: the issuer
// must be https://{domain}/, the audience must contain the client id, and
// the signing algorithm must be one of the configured ones.
type Verifier struct {
	validator            *jwt.Validator
	expected             jwt.Expected
	requireVerifiedEmail bool
}

// NewVerifier returns a Verifier for c that checks signatures and time based
// claims with validator.
func NewVerifier(c *Config, validator *jwt.Validator) (*Verifier, error) {
	const op = "auth0.NewVerifier"
	switch {
	case c == nil:
		return nil, fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	case validator == nil:
		return nil, fmt.Errorf("%s: validator is nil: %w", op, ErrNilParameter)
	}
	return &Verifier{
		validator: validator,
		expected: jwt.Expected{
			Issuer:            c.Issuer(),
			Audiences:         []string{c.ClientID},
			SigningAlgorithms: c.SigningAlgs,
		},
		requireVerifiedEmail: c.RequireVerifiedEmail,
	}, nil
}

// Verify verifies t and returns its claims. Any signature or claim failure
// is an *Err of kind ErrInvalidToken; a missing or false email_verified claim
// is ErrEmailNotVerified when verified email is required.
func (v *Verifier) Verify(ctx context.Context, t IdToken) (Claims, error) {
	const op = "Verifier.Verify"
	if t == "" {
		return nil, NewError(ErrInvalidToken, WithOp(op), WithMsg("id_token is empty"), WithWrap(ErrMissingIdToken))
	}
	claims, err := v.validator.Validate(ctx, string(t), v.expected)
	if err != nil {
		return nil, NewError(ErrInvalidToken, WithOp(op), WithMsg("id_token verification failed"), WithWrap(err))
	}
	if v.requireVerifiedEmail {
		if verified, ok := Claims(claims).EmailVerified(); !ok || !verified {
			return nil, NewError(ErrEmailNotVerified, WithOp(op), WithMsg("email address is not verified"))
		}
	}
	return Claims(claims), nil
}

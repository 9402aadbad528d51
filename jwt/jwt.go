// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt

import (
	"context"
	"fmt"
	"time"

	josejwt "github.com/go-jose/go-jose/v4/jwt"
)

// Validator validates JSON Web Tokens (JWT) by providing signature
// verification and claims set validation.
type Validator struct {
	keySet KeySet
	now    func() time.Time
	leeway time.Duration
}

// NewValidator returns a Validator that uses the given KeySet to verify JWT
// signatures. Supported options: WithNow, WithLeeway.
func NewValidator(keySet KeySet, opt ...Option) (*Validator, error) {
	const op = "jwt.NewValidator"
	if keySet == nil {
		return nil, fmt.Errorf("%s: keySet must not be nil: %w", op, ErrInvalidParameter)
	}
	opts := getValidatorOpts(opt...)
	return &Validator{
		keySet: keySet,
		now:    opts.withNow,
		leeway: opts.withLeeway,
	}, nil
}

// Expected defines the expected claims values to assert when validating a JWT.
// For claims that involve validation of the JWT with respect to time, the
// Validator's clock is used.
type Expected struct {
	// Issuer must match the "iss" claim exactly when not empty.
	Issuer string

	// Subject must match the "sub" claim exactly when not empty.
	Subject string

	// ID must match the "jti" claim exactly when not empty.
	ID string

	// Audiences must contain at least one value of the "aud" claim when not empty.
	Audiences []string

	// SigningAlgorithms is the allow-list of "alg" header values. It must
	// not be empty.
	SigningAlgorithms []Alg
}

// Validate validates JWTs of the JWS compact serialization form.
//
// The validation steps performed are:
//   - Parsing the token, rejecting any "alg" outside expected.SigningAlgorithms
//   - Verifying the signature with the KeySet
//   - Checking iss, sub, jti and aud against the expected values
//   - Checking that exp is present and that now is before it
//   - Checking that now is not before nbf, when present
//
// It returns the complete claims set on success.
func (v *Validator) Validate(ctx context.Context, token string, expected Expected) (map[string]interface{}, error) {
	const op = "Validator.Validate"
	if token == "" {
		return nil, fmt.Errorf("%s: token is empty: %w", op, ErrInvalidParameter)
	}
	if len(expected.SigningAlgorithms) == 0 {
		return nil, fmt.Errorf("%s: expected signing algorithms are empty: %w", op, ErrInvalidParameter)
	}
	if err := SupportedSigningAlgorithm(expected.SigningAlgorithms...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	parsed, err := josejwt.ParseSigned(token, joseAlgs(expected.SigningAlgorithms...))
	if err != nil {
		// go-jose fails the same way for garbage input and a disallowed alg,
		// so check the header separately to report which one it was.
		if _, hdrErr := josejwt.ParseSigned(token, joseAlgs()); hdrErr == nil {
			return nil, fmt.Errorf("%s: %w", op, ErrUnsupportedAlg)
		}
		return nil, fmt.Errorf("%s: %w: %v", op, ErrMalformedToken, err)
	}

	allClaims, err := v.keySet.VerifySignature(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var std josejwt.Claims
	if err := parsed.UnsafeClaimsWithoutVerification(&std); err != nil {
		return nil, fmt.Errorf("%s: unable to decode registered claims: %w", op, ErrMalformedToken)
	}

	switch {
	case expected.Issuer != "" && std.Issuer != expected.Issuer:
		return nil, fmt.Errorf("%s: %q: %w", op, std.Issuer, ErrInvalidIssuer)
	case expected.Subject != "" && std.Subject != expected.Subject:
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidSubject)
	case expected.ID != "" && std.ID != expected.ID:
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidID)
	}

	if len(expected.Audiences) > 0 {
		var found bool
		for _, a := range expected.Audiences {
			if std.Audience.Contains(a) {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidAudience)
		}
	}

	now := v.now()
	if std.Expiry == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingExpiry)
	}
	if !now.Add(-v.leeway).Before(std.Expiry.Time()) {
		return nil, fmt.Errorf("%s: %w", op, ErrExpiredToken)
	}
	if std.NotBefore != nil && now.Add(v.leeway).Before(std.NotBefore.Time()) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotYetValid)
	}

	return allClaims, nil
}

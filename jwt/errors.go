// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt

import "errors"

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrMalformedToken   = errors.New("malformed token")
	ErrUnsupportedAlg   = errors.New("unsupported signing algorithm")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidIssuer    = errors.New("invalid issuer")
	ErrInvalidAudience  = errors.New("invalid audience")
	ErrInvalidSubject   = errors.New("invalid subject")
	ErrInvalidID        = errors.New("invalid jwt id")
	ErrExpiredToken     = errors.New("token is expired")
	ErrMissingExpiry    = errors.New("token has no expiration")
	ErrNotYetValid      = errors.New("token is not yet valid")
)

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth0

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// AuthState is carried through the provider round trip in the OAuth "state"
// parameter. It names where to resume after login and whether the attempt
// was silent.
type AuthState struct {
	Destination string `json:"destination"`
	SilentAuth  bool   `json:"silentAuth"`
}

// stateCodec turns an AuthState into the "state" parameter and back.
type stateCodec interface {
	encode(s AuthState) (string, error)
	decode(raw string) (AuthState, error)
}

// jsonStateCodec sends the state as plain JSON. The provider returns it
// untouched, but nothing stops the user agent from altering it.
type jsonStateCodec struct{}

func (jsonStateCodec) encode(s AuthState) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (jsonStateCodec) decode(raw string) (AuthState, error) {
	var wire struct {
		Destination *string `json:"destination"`
		SilentAuth  bool    `json:"silentAuth"`
	}
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return AuthState{}, fmt.Errorf("state is not a JSON object: %w", err)
	}
	if wire.Destination == nil {
		return AuthState{}, errors.New("state has no destination")
	}
	return AuthState{Destination: *wire.Destination, SilentAuth: wire.SilentAuth}, nil
}

const (
	minStateSigningKeyLen = 32

	// signedStateLifetime bounds how long a signed state is accepted, which
	// is the time the user has to complete the provider's login page.
	signedStateLifetime = 15 * time.Minute
)

type stateClaims struct {
	Destination string `json:"destination"`
	SilentAuth  bool   `json:"silentAuth"`
	gojwt.RegisteredClaims
}

// signedStateCodec sends the state as an HS256 JWT so that a tampered or
// stale state is rejected.
type signedStateCodec struct {
	key []byte
	now func() time.Time
}

func (c signedStateCodec) encode(s AuthState) (string, error) {
	now := c.now()
	claims := stateClaims{
		Destination: s.Destination,
		SilentAuth:  s.SilentAuth,
		RegisteredClaims: gojwt.RegisteredClaims{
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(signedStateLifetime)),
		},
	}
	return gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(c.key)
}

func (c signedStateCodec) decode(raw string) (AuthState, error) {
	var claims stateClaims
	_, err := gojwt.ParseWithClaims(raw, &claims,
		func(*gojwt.Token) (interface{}, error) { return c.key, nil },
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return AuthState{}, fmt.Errorf("state signature is invalid: %w", err)
	}
	return AuthState{Destination: claims.Destination, SilentAuth: claims.SilentAuth}, nil
}

// validDestination reports whether d is a path on this application. Absolute
// and scheme relative URLs are rejected so the state cannot be used to send
// users to another site.
func validDestination(d string) error {
	switch {
	case d == "":
		return errors.New("destination is empty")
	case !strings.HasPrefix(d, "/"):
		return fmt.Errorf("destination %q is not an absolute path", d)
	case strings.HasPrefix(d, "//"), strings.HasPrefix(d, `/\`):
		return fmt.Errorf("destination %q is not a local path", d)
	}
	u, err := url.Parse(d)
	if err != nil {
		return fmt.Errorf("destination %q is invalid: %w", d, err)
	}
	if u.Scheme != "" || u.Host != "" {
		return fmt.Errorf("destination %q is not a local path", d)
	}
	return nil
}

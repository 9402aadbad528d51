// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth0

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"testing"

	"github.com/go-jose/go-jose/v4"
	josejwt "github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp/cap-auth0/jwt"
)

// TestGenerateKeys will generate a test RSA 2048 pub/priv key pair
func TestGenerateKeys(t *testing.T) (crypto.PublicKey, crypto.PrivateKey) {
	t.Helper()
	require := require.New(t)
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(err)
	return priv.Public(), priv
}

// TestSignJWT will bundle the provided claims into a test signed JWT. The
// keyID is set as the "kid" header when not empty.
func TestSignJWT(t *testing.T, key crypto.PrivateKey, alg jwt.Alg, claims interface{}, keyID string) string {
	t.Helper()
	require := require.New(t)
	raw, err := signJWT(key, alg, claims, keyID)
	require.NoError(err)
	return raw
}

func signJWT(key crypto.PrivateKey, alg jwt.Alg, claims interface{}, keyID string) (string, error) {
	opts := (&jose.SignerOptions{}).WithType("JWT")
	if keyID != "" {
		opts = opts.WithHeader("kid", keyID)
	}
	sig, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.SignatureAlgorithm(alg), Key: key}, opts)
	if err != nil {
		return "", fmt.Errorf("unable to create signer: %w", err)
	}
	return josejwt.Signed(sig).Claims(claims).Serialize()
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/hashicorp/cap-auth0/auth0"
	"github.com/hashicorp/cap-auth0/jwt"
)

// setRequiredEnv sets the variables every configuration needs. Tests using
// it cannot run in parallel.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AUTH0_DOMAIN", "example.us.auth0.com")
	t.Setenv("AUTH0_CLIENT_ID", "client-id")
	t.Setenv("AUTH0_CLIENT_SECRET", "client-secret")
	t.Setenv("AUTH0_CALLBACK_URL", "https://app.example.com/callback")
	t.Setenv("AUTH0_LOGOUT_URL", "https://app.example.com/")
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func tagStrings(tags []language.Tag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.String())
	}
	return out
}

func TestLoad_Defaults(t *testing.T) {
	assert, require := assert.New(t), require.New(t)
	setRequiredEnv(t)

	c, err := Load()
	require.NoError(err)
	assert.Equal("example.us.auth0.com", c.Domain)
	assert.Equal("client-id", c.ClientID)
	assert.Equal(auth0.ClientSecret("client-secret"), c.ClientSecret)
	assert.Equal("https://app.example.com/callback", c.CallbackURL)
	assert.Equal("https://app.example.com/", c.LogoutURL)
	assert.Equal("https://example.us.auth0.com/userinfo", c.Audience)
	assert.Equal([]string{"openid", "profile", "email"}, c.Scopes)
	assert.Equal([]jwt.Alg{jwt.RS256}, c.SigningAlgs)
	assert.False(c.SilentAuth)
	assert.True(c.RequireVerifiedEmail)
	assert.Equal(auth0.DefaultTokenSessionKey, c.TokenSessionKey)
	assert.Equal(auth0.DefaultPayloadSessionKey, c.PayloadSessionKey)
	assert.Empty(c.UILocales)
	assert.Empty(c.StateSigningKey)
}

func TestLoad_Env(t *testing.T) {
	assert, require := assert.New(t), require.New(t)
	setRequiredEnv(t)
	t.Setenv("AUTH0_AUDIENCE", "https://api.example.com")
	t.Setenv("AUTH0_SCOPE", "openid email read:orders")
	t.Setenv("AUTH0_ALGORITHMS", "RS256,ES256")
	t.Setenv("AUTH0_ENABLE_SILENT_AUTHENTICATION", "true")
	t.Setenv("AUTH0_REQUIRE_VERIFIED_EMAIL", "false")
	t.Setenv("AUTH0_SESSION_TOKEN_KEY", "tok")
	t.Setenv("AUTH0_SESSION_JWT_PAYLOAD_KEY", "payload")
	t.Setenv("AUTH0_UI_LOCALES", "fr-CA, en")
	t.Setenv("AUTH0_STATE_SIGNING_KEY", "0123456789abcdef0123456789abcdef")

	logger := hclog.NewNullLogger()
	c, err := Load(WithLogger(logger))
	require.NoError(err)
	assert.Equal("https://api.example.com", c.Audience)
	assert.Equal([]string{"openid", "email", "read:orders"}, c.Scopes)
	assert.Equal([]jwt.Alg{jwt.RS256, jwt.ES256}, c.SigningAlgs)
	assert.True(c.SilentAuth)
	assert.False(c.RequireVerifiedEmail)
	assert.Equal("tok", c.TokenSessionKey)
	assert.Equal("payload", c.PayloadSessionKey)
	assert.Equal([]string{"fr-CA", "en"}, tagStrings(c.UILocales))
	assert.Equal(auth0.StateSigningKey("0123456789abcdef0123456789abcdef"), c.StateSigningKey)
	assert.Equal(logger, c.Logger)
}

func TestLoad_EnvPrefix(t *testing.T) {
	assert, require := assert.New(t), require.New(t)
	t.Setenv("SHOP_DOMAIN", "shop.eu.auth0.com")
	t.Setenv("SHOP_CLIENT_ID", "shop-client")
	t.Setenv("SHOP_CLIENT_SECRET", "shop-secret")
	t.Setenv("SHOP_CALLBACK_URL", "https://shop.example.com/callback")
	t.Setenv("SHOP_LOGOUT_URL", "https://shop.example.com/")

	c, err := Load(WithEnvPrefix("SHOP"))
	require.NoError(err)
	assert.Equal("shop.eu.auth0.com", c.Domain)
	assert.Equal("shop-client", c.ClientID)
}

func TestLoad_ConfigFile(t *testing.T) {
	assert, require := assert.New(t), require.New(t)
	path := writeFile(t, "auth0.yaml", `
domain: example.us.auth0.com
client_id: file-client
client_secret: file-secret
callback_url: https://app.example.com/callback
logout_url: https://app.example.com/
scope:
  - openid
  - profile
enable_silent_authentication: true
ui_locales: [de]
`)
	// the environment wins over the file
	t.Setenv("AUTH0_CLIENT_ID", "env-client")

	c, err := Load(WithConfigFile(path))
	require.NoError(err)
	assert.Equal("example.us.auth0.com", c.Domain)
	assert.Equal("env-client", c.ClientID)
	assert.Equal(auth0.ClientSecret("file-secret"), c.ClientSecret)
	assert.Equal([]string{"openid", "profile"}, c.Scopes)
	assert.True(c.SilentAuth)
	assert.Equal([]string{"de"}, tagStrings(c.UILocales))
}

func TestLoad_EnvFile(t *testing.T) {
	assert, require := assert.New(t), require.New(t)
	keys := []string{"AUTH0_DOMAIN", "AUTH0_CLIENT_ID", "AUTH0_CLIENT_SECRET", "AUTH0_CALLBACK_URL", "AUTH0_LOGOUT_URL"}
	t.Cleanup(func() {
		for _, k := range keys {
			_ = os.Unsetenv(k)
		}
	})
	path := writeFile(t, ".env", `AUTH0_DOMAIN=example.us.auth0.com
AUTH0_CLIENT_ID=dotenv-client
AUTH0_CLIENT_SECRET=dotenv-secret
AUTH0_CALLBACK_URL=https://app.example.com/callback
AUTH0_LOGOUT_URL=https://app.example.com/
`)
	c, err := Load(WithEnvFile(path))
	require.NoError(err)
	assert.Equal("dotenv-client", c.ClientID)
	assert.Equal(auth0.ClientSecret("dotenv-secret"), c.ClientSecret)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		opts      []Option
		wantIsErr error
	}{
		{
			name:      "missing-required",
			env:       map[string]string{"AUTH0_DOMAIN": "example.us.auth0.com"},
			wantIsErr: auth0.ErrInvalidParameter,
		},
		{
			name:      "bad-algorithm",
			env:       map[string]string{"AUTH0_ALGORITHMS": "HS256"},
			wantIsErr: jwt.ErrUnsupportedAlg,
		},
		{
			name:      "bad-locale",
			env:       map[string]string{"AUTH0_UI_LOCALES": "not_a_tag!"},
			wantIsErr: ErrInvalidParameter,
		},
		{
			name:      "short-signing-key",
			env:       map[string]string{"AUTH0_STATE_SIGNING_KEY": "short"},
			wantIsErr: auth0.ErrInvalidParameter,
		},
		{
			name:      "bad-ca",
			env:       map[string]string{"AUTH0_PROVIDER_CA": "not a pem"},
			wantIsErr: auth0.ErrInvalidCACert,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			if tt.name != "missing-required" {
				setRequiredEnv(t)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(tt.opts...)
			require.Error(err)
			assert.Truef(errors.Is(err, tt.wantIsErr), "wanted \"%s\" but got \"%s\"", tt.wantIsErr, err)
		})
	}

	t.Run("missing-files", func(t *testing.T) {
		_, err := Load(WithConfigFile(filepath.Join(t.TempDir(), "missing.yaml")))
		assert.Error(t, err)
		_, err = Load(WithEnvFile(filepath.Join(t.TempDir(), "missing.env")))
		assert.Error(t, err)
	})
}

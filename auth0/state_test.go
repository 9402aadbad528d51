// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth0

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONStateCodec(t *testing.T) {
	t.Parallel()
	c := jsonStateCodec{}

	t.Run("round-trip", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		raw, err := c.encode(AuthState{Destination: "/orders?id=1", SilentAuth: true})
		require.NoError(err)
		assert.JSONEq(`{"destination":"/orders?id=1","silentAuth":true}`, raw)

		got, err := c.decode(raw)
		require.NoError(err)
		assert.Equal(AuthState{Destination: "/orders?id=1", SilentAuth: true}, got)
	})

	tests := []struct {
		name    string
		raw     string
		want    AuthState
		wantErr bool
	}{
		{name: "silent-defaults-false", raw: `{"destination":"/"}`, want: AuthState{Destination: "/"}},
		{name: "not-json", raw: "abc", wantErr: true},
		{name: "array", raw: `["/"]`, wantErr: true},
		{name: "no-destination", raw: `{"silentAuth":true}`, wantErr: true},
		{name: "wrong-type", raw: `{"destination":"/","silentAuth":"yes"}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.decode(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSignedStateCodec(t *testing.T) {
	t.Parallel()
	key := []byte("0123456789abcdef0123456789abcdef")
	now := time.Now()
	c := signedStateCodec{key: key, now: func() time.Time { return now }}

	raw, err := c.encode(AuthState{Destination: "/profile", SilentAuth: true})
	require.NoError(t, err)

	t.Run("round-trip", func(t *testing.T) {
		got, err := c.decode(raw)
		require.NoError(t, err)
		assert.Equal(t, AuthState{Destination: "/profile", SilentAuth: true}, got)
	})
	t.Run("tampered", func(t *testing.T) {
		parts := strings.Split(raw, ".")
		require.Len(t, parts, 3)
		forged, err := jsonStateCodec{}.encode(AuthState{Destination: "/admin"})
		require.NoError(t, err)
		parts[1] = base64.RawURLEncoding.EncodeToString([]byte(forged))
		_, err = c.decode(strings.Join(parts, "."))
		require.Error(t, err)
	})
	t.Run("other-key", func(t *testing.T) {
		other := signedStateCodec{key: []byte("fedcba9876543210fedcba9876543210"), now: c.now}
		_, err := other.decode(raw)
		require.Error(t, err)
	})
	t.Run("expired", func(t *testing.T) {
		later := signedStateCodec{key: key, now: func() time.Time { return now.Add(signedStateLifetime + time.Second) }}
		_, err := later.decode(raw)
		require.Error(t, err)
	})
	t.Run("plain-json", func(t *testing.T) {
		_, err := c.decode(`{"destination":"/"}`)
		require.Error(t, err)
	})
}

func TestValidDestination(t *testing.T) {
	t.Parallel()
	tests := []struct {
		destination string
		wantErr     bool
	}{
		{destination: "/"},
		{destination: "/profile"},
		{destination: "/orders?id=1&sort=desc"},
		{destination: "/a/b#frag"},
		{destination: "", wantErr: true},
		{destination: "profile", wantErr: true},
		{destination: "https://evil.example.com/", wantErr: true},
		{destination: "//evil.example.com/", wantErr: true},
		{destination: `/\evil.example.com`, wantErr: true},
		{destination: "javascript:alert(1)", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.destination, func(t *testing.T) {
			err := validDestination(tt.destination)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

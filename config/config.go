// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/hashicorp/cap-auth0/auth0"
	"github.com/hashicorp/cap-auth0/jwt"
)

// DefaultEnvPrefix is the prefix of every environment variable read by Load.
const DefaultEnvPrefix = "AUTH0"

// Keys read by Load. The environment variable of a key is the prefix, an
// underscore and the upper cased key, such as AUTH0_CLIENT_ID.
const (
	KeyDomain               = "domain"
	KeyClientID             = "client_id"
	KeyClientSecret         = "client_secret"
	KeyCallbackURL          = "callback_url"
	KeyLogoutURL            = "logout_url"
	KeyAudience             = "audience"
	KeyScope                = "scope"
	KeyAlgorithms           = "algorithms"
	KeySilentAuth           = "enable_silent_authentication"
	KeyRequireVerifiedEmail = "require_verified_email"
	KeySessionTokenKey      = "session_token_key"
	KeySessionPayloadKey    = "session_jwt_payload_key"
	KeyProviderCA           = "provider_ca"
	KeyUILocales            = "ui_locales"
	KeyStateSigningKey      = "state_signing_key"
)

var ErrInvalidParameter = errors.New("invalid parameter")

// Load reads the configuration of an Auth0 application and returns it as a
// validated auth0.Config.
//
// Lists (scope, algorithms, ui_locales) are separated by spaces or commas in
// the environment and may also be lists in a config file.
//
// Supported options: WithConfigFile, WithEnvFile, WithEnvPrefix, WithLogger.
func Load(opt ...Option) (*auth0.Config, error) {
	const op = "config.Load"
	opts := getLoadOpts(opt...)

	if opts.withEnvFile != "" {
		if err := godotenv.Load(opts.withEnvFile); err != nil {
			return nil, fmt.Errorf("%s: unable to load env file %q: %w", op, opts.withEnvFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(opts.withEnvPrefix)
	v.AutomaticEnv()
	v.SetDefault(KeyScope, auth0.DefaultScopes)
	v.SetDefault(KeyAlgorithms, []string{string(jwt.RS256)})
	v.SetDefault(KeyRequireVerifiedEmail, true)
	v.SetDefault(KeySessionTokenKey, auth0.DefaultTokenSessionKey)
	v.SetDefault(KeySessionPayloadKey, auth0.DefaultPayloadSessionKey)

	if opts.withConfigFile != "" {
		v.SetConfigFile(opts.withConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%s: unable to read config file %q: %w", op, opts.withConfigFile, err)
		}
	}

	algs := make([]jwt.Alg, 0, 1)
	for _, a := range list(v, KeyAlgorithms) {
		algs = append(algs, jwt.Alg(a))
	}
	locales := make([]language.Tag, 0)
	for _, l := range list(v, KeyUILocales) {
		tag, err := language.Parse(l)
		if err != nil {
			return nil, fmt.Errorf("%s: %s %q is not a language tag: %w", op, KeyUILocales, l, ErrInvalidParameter)
		}
		locales = append(locales, tag)
	}

	configOpts := []auth0.Option{
		auth0.WithScopes(list(v, KeyScope)...),
		auth0.WithSigningAlgs(algs...),
		auth0.WithSilentAuthEnabled(v.GetBool(KeySilentAuth)),
		auth0.WithRequireVerifiedEmail(v.GetBool(KeyRequireVerifiedEmail)),
		auth0.WithSessionKeys(v.GetString(KeySessionTokenKey), v.GetString(KeySessionPayloadKey)),
		auth0.WithProviderCA(v.GetString(KeyProviderCA)),
		auth0.WithLogger(opts.withLogger),
	}
	if aud := v.GetString(KeyAudience); aud != "" {
		configOpts = append(configOpts, auth0.WithAudience(aud))
	}
	if len(locales) > 0 {
		configOpts = append(configOpts, auth0.WithUILocales(locales...))
	}
	if key := v.GetString(KeyStateSigningKey); key != "" {
		configOpts = append(configOpts, auth0.WithStateSigningKey([]byte(key)))
	}

	c, err := auth0.NewConfig(
		v.GetString(KeyDomain),
		v.GetString(KeyClientID),
		auth0.ClientSecret(v.GetString(KeyClientSecret)),
		v.GetString(KeyCallbackURL),
		v.GetString(KeyLogoutURL),
		configOpts...,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// list returns the values of a list key, splitting every element on commas
// and white space.
func list(v *viper.Viper, key string) []string {
	var out []string
	for _, s := range v.GetStringSlice(key) {
		out = append(out, strings.FieldsFunc(s, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		})...)
	}
	return out
}

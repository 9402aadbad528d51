// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
config is a package that builds an auth0.Config from AUTH0_* environment
variables, an optional .env file and an optional config file (YAML, TOML or
JSON, keyed by the variable names without the prefix, such as "client_id").

Environment variables take precedence over the config file. A .env file never
overrides variables that are already set.

	c, err := config.Load(config.WithEnvFile(".env"))
*/
package config

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package config

import "github.com/hashicorp/go-hclog"

// Option defines a common functional options type which can be used in a
// variadic parameter pattern.
type Option func(interface{})

// ApplyOpts takes a pointer to the options struct as a set of default options
// and applies the slice of opts as overrides.
func ApplyOpts(opts interface{}, opt ...Option) {
	for _, o := range opt {
		if o == nil { // ignore any nil Options
			continue
		}
		o(opts)
	}
}

// loadOptions is the set of available options for Load.
type loadOptions struct {
	withConfigFile string
	withEnvFile    string
	withEnvPrefix  string
	withLogger     hclog.Logger
}

func loadDefaults() loadOptions {
	return loadOptions{
		withEnvPrefix: DefaultEnvPrefix,
	}
}

func getLoadOpts(opt ...Option) loadOptions {
	opts := loadDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithConfigFile provides a config file to read. Its format is taken from
// the file extension.
func WithConfigFile(path string) Option {
	return func(o interface{}) {
		if o, ok := o.(*loadOptions); ok {
			o.withConfigFile = path
		}
	}
}

// WithEnvFile provides a .env file loaded into the environment before the
// variables are read.
func WithEnvFile(path string) Option {
	return func(o interface{}) {
		if o, ok := o.(*loadOptions); ok {
			o.withEnvFile = path
		}
	}
}

// WithEnvPrefix overrides the environment variable prefix, AUTH0 by default.
func WithEnvPrefix(prefix string) Option {
	return func(o interface{}) {
		if o, ok := o.(*loadOptions); ok && prefix != "" {
			o.withEnvPrefix = prefix
		}
	}
}

// WithLogger provides the logger set on the returned auth0.Config.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*loadOptions); ok {
			o.withLogger = l
		}
	}
}

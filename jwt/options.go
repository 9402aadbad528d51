// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt

import "time"

// Option defines a common functional options type which can be used in a
// variadic parameter pattern.
type Option func(interface{})

type validatorOptions struct {
	withNow    func() time.Time
	withLeeway time.Duration
}

func validatorDefaults() validatorOptions {
	return validatorOptions{
		withNow: time.Now,
	}
}

// getValidatorOpts gets the defaults and applies the opt overrides passed
// in.
func getValidatorOpts(opt ...Option) validatorOptions {
	opts := validatorDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

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

// WithNow provides a time source used when checking the time based claims.
func WithNow(now func() time.Time) Option {
	return func(o interface{}) {
		if v, ok := o.(*validatorOptions); ok && now != nil {
			v.withNow = now
		}
	}
}

// WithLeeway allows the exp and nbf claims to be off by at most d. The
// default is no leeway.
func WithLeeway(d time.Duration) Option {
	return func(o interface{}) {
		if v, ok := o.(*validatorOptions); ok && d >= 0 {
			v.withLeeway = d
		}
	}
}

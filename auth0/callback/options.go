// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package callback

import "github.com/hashicorp/cap-auth0/auth0"

// authCodeOptions is the set of available options for AuthCode.
type authCodeOptions struct {
	withSuccessResponseFunc SuccessResponseFunc
	withErrorResponseFunc   ErrorResponseFunc
}

func authCodeDefaults() authCodeOptions {
	return authCodeOptions{
		withSuccessResponseFunc: RedirectToDestination,
		withErrorResponseFunc:   WriteError,
	}
}

func getAuthCodeOpts(opt ...auth0.Option) authCodeOptions {
	opts := authCodeDefaults()
	auth0.ApplyOpts(&opts, opt...)
	return opts
}

// WithSuccessResponseFunc replaces the response written after a successful
// login.
func WithSuccessResponseFunc(fn SuccessResponseFunc) auth0.Option {
	return func(o interface{}) {
		if o, ok := o.(*authCodeOptions); ok && fn != nil {
			o.withSuccessResponseFunc = fn
		}
	}
}

// WithErrorResponseFunc replaces the response written when the callback
// fails.
func WithErrorResponseFunc(fn ErrorResponseFunc) auth0.Option {
	return func(o interface{}) {
		if o, ok := o.(*authCodeOptions); ok && fn != nil {
			o.withErrorResponseFunc = fn
		}
	}
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"net/http"

	"github.com/hashicorp/cap-auth0/auth0"
)

// SuccessResponseFunc is used by AuthCode to create a http response when the
// callback is successful.
//
// The state is the decoded state returned by the provider and the token is
// the result of a successful exchange, already stored in the session. The
// default redirects (302) to state.Destination.
type SuccessResponseFunc func(state auth0.AuthState, t *auth0.Token, w http.ResponseWriter, req *http.Request)

// ErrorResponseFunc is used by AuthCode to create a http response when the
// callback fails.
//
// The state is the zero AuthState when it could not be decoded. The error is
// an *auth0.Err for every failure of the login itself; anything else is an
// internal error. The default is auth0.WriteError.
type ErrorResponseFunc func(state auth0.AuthState, e error, w http.ResponseWriter, req *http.Request)

// RedirectToDestination is the default SuccessResponseFunc.
func RedirectToDestination(state auth0.AuthState, _ *auth0.Token, w http.ResponseWriter, req *http.Request) {
	http.Redirect(w, req, state.Destination, http.StatusFound)
}

// WriteError is the default ErrorResponseFunc.
func WriteError(_ auth0.AuthState, e error, w http.ResponseWriter, _ *http.Request) {
	auth0.WriteError(w, e)
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth0

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrNilParameter     = errors.New("nil parameter")
	ErrInvalidCACert    = errors.New("invalid CA certificate")
	ErrMissingIdToken   = errors.New("id_token is missing")
	ErrUserInfoFailed   = errors.New("user info failed")
)

// Error kinds surfaced to the host application. Each maps to a default
// status and machine readable code, see NewError.
var (
	ErrInvalidCallback     = errors.New("invalid callback request")
	ErrAuthorizationDenied = errors.New("authorization denied")
	ErrInvalidToken        = errors.New("invalid token")
	ErrEmailNotVerified    = errors.New("email not verified")
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)

type kindInfo struct {
	code   string
	status int
}

var kinds = map[error]kindInfo{
	ErrInvalidCallback:     {code: "invalid_callback", status: http.StatusUnauthorized},
	ErrAuthorizationDenied: {code: "access_denied", status: http.StatusUnauthorized},
	ErrInvalidToken:        {code: "invalid_token", status: http.StatusUnauthorized},
	ErrEmailNotVerified:    {code: "email_not_verified", status: http.StatusUnauthorized},
	ErrProviderUnavailable: {code: "provider_unavailable", status: http.StatusBadGateway},
}

// Err is the error returned by the login flow. Msg and Code are safe to show
// to the end user; Wrapped carries the underlying cause for logging.
type Err struct {
	// Kind is one of the package's error kinds, such as ErrInvalidToken.
	Kind error

	// Op is the operation that raised the error.
	Op string

	// Msg is a human readable description.
	Msg string

	// Code is a machine readable code, such as an OAuth error code returned
	// by the provider.
	Code string

	// Status is the HTTP status used when rendering the error.
	Status int

	// Wrapped is the underlying error, if any.
	Wrapped error
}

var _ error = (*Err)(nil)

// NewError creates a new Err of the given kind. Code and Status default to
// the values registered for the kind (401 for every kind except
// ErrProviderUnavailable, which is 502).
//
// Supported options: WithOp, WithMsg, WithCode, WithStatus, WithWrap.
func NewError(kind error, opt ...Option) *Err {
	opts := getErrOpts(opt...)
	info, ok := kinds[kind]
	if !ok {
		info = kindInfo{code: "internal_error", status: http.StatusInternalServerError}
	}
	e := &Err{
		Kind:    kind,
		Op:      opts.withOp,
		Msg:     opts.withMsg,
		Code:    info.code,
		Status:  info.status,
		Wrapped: opts.withErrWrapped,
	}
	if opts.withCode != "" {
		e.Code = opts.withCode
	}
	if opts.withStatus != 0 {
		e.Status = opts.withStatus
	}
	return e
}

// Error satisfies the error interface and returns a string representation of
// the error.
func (e *Err) Error() string {
	if e == nil {
		return ""
	}
	var parts []string
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	if e.Msg != "" {
		parts = append(parts, e.Msg)
	}
	if e.Kind != nil {
		parts = append(parts, e.Kind.Error())
	}
	if e.Wrapped != nil {
		parts = append(parts, e.Wrapped.Error())
	}
	return strings.Join(parts, ": ")
}

// Is reports whether target is the error's Kind, or is equal to the error
// in every non-empty field.
func (e *Err) Is(target error) bool {
	if e == nil {
		return false
	}
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	t, ok := target.(*Err)
	if !ok {
		return false
	}
	return (t.Kind == nil || t.Kind == e.Kind) &&
		(t.Op == "" || t.Op == e.Op) &&
		(t.Code == "" || t.Code == e.Code)
}

// Unwrap returns the wrapped error.
func (e *Err) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Wrapped
}

type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteError renders err as a JSON error response. An *Err renders with its
// Status, Code and Msg; any other error renders as a generic 500 so internal
// details never reach the client.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := errorResponse{
		Error:       "internal_error",
		Description: http.StatusText(http.StatusInternalServerError),
	}
	var e *Err
	if errors.As(err, &e) && e.Status != 0 {
		status = e.Status
		body = errorResponse{Error: e.Code, Description: e.Msg}
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// errOptions is the set of available options for NewError.
type errOptions struct {
	withOp         string
	withMsg        string
	withCode       string
	withStatus     int
	withErrWrapped error
}

func getErrOpts(opt ...Option) errOptions {
	var opts errOptions
	ApplyOpts(&opts, opt...)
	return opts
}

// WithOp provides an optional op (operation) for the error.
func WithOp(op string) Option {
	return func(o interface{}) {
		if o, ok := o.(*errOptions); ok {
			o.withOp = op
		}
	}
}

// WithMsg provides an optional message for the error.
func WithMsg(msg string) Option {
	return func(o interface{}) {
		if o, ok := o.(*errOptions); ok {
			o.withMsg = msg
		}
	}
}

// WithCode overrides the machine readable code of the error.
func WithCode(code string) Option {
	return func(o interface{}) {
		if o, ok := o.(*errOptions); ok {
			o.withCode = code
		}
	}
}

// WithStatus overrides the HTTP status of the error.
func WithStatus(status int) Option {
	return func(o interface{}) {
		if o, ok := o.(*errOptions); ok {
			o.withStatus = status
		}
	}
}

// WithWrap provides an optional wrapped error.
func WithWrap(e error) Option {
	return func(o interface{}) {
		if o, ok := o.(*errOptions); ok {
			o.withErrWrapped = e
		}
	}
}

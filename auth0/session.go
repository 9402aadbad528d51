// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth0

import (
	"fmt"

	"github.com/hashicorp/cap-auth0/session"
)

// StoreLogin records a successful login in s: the access token record under
// Config.TokenSessionKey and the verified claims under
// Config.PayloadSessionKey, replacing any previous login. The session id is
// renewed so that an id planted before login cannot be reused after it.
func (p *Provider) StoreLogin(s *session.Session, t *Token) error {
	const op = "Provider.StoreLogin"
	switch {
	case s == nil:
		return fmt.Errorf("%s: session is nil: %w", op, ErrNilParameter)
	case t == nil || t.claims == nil || t.record == nil:
		return fmt.Errorf("%s: token is incomplete: %w", op, ErrInvalidParameter)
	}
	if err := s.Renew(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.Set(p.config.TokenSessionKey, t.record); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.Set(p.config.PayloadSessionKey, t.claims); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Identity returns the verified claims stored in s, if any.
func (p *Provider) Identity(s *session.Session) (Claims, bool, error) {
	const op = "Provider.Identity"
	if s == nil {
		return nil, false, fmt.Errorf("%s: session is nil: %w", op, ErrNilParameter)
	}
	var c Claims
	ok, err := s.Get(p.config.PayloadSessionKey, &c)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	if !ok || c == nil {
		return nil, false, nil
	}
	return c, true, nil
}

// TokenRecord returns the access token record stored in s, if any.
func (p *Provider) TokenRecord(s *session.Session) (*TokenRecord, bool, error) {
	const op = "Provider.TokenRecord"
	if s == nil {
		return nil, false, fmt.Errorf("%s: session is nil: %w", op, ErrNilParameter)
	}
	var r TokenRecord
	ok, err := s.Get(p.config.TokenSessionKey, &r)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, false, nil
	}
	return &r, true, nil
}

// ClearLogin removes the access token record and the claims from s, leaving
// any other application keys in place.
func (p *Provider) ClearLogin(s *session.Session) {
	if s == nil {
		return
	}
	s.Delete(p.config.TokenSessionKey)
	s.Delete(p.config.PayloadSessionKey)
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexedwards/scs/v2"
)

// Session is the request scoped view of one browser session. Values are
// kept as JSON so that they survive any Store without type registration.
type Session struct {
	ctx context.Context
	sm  *scs.SessionManager
}

// Token returns the session token carried in the session cookie. It is empty
// for a new session until it is first committed.
func (s *Session) Token() string { return s.sm.Token(s.ctx) }

// Modified reports whether the session has changes that are not yet committed.
func (s *Session) Modified() bool { return s.sm.Status(s.ctx) != scs.Unmodified }

// Len returns the number of keys in the session.
func (s *Session) Len() int { return len(s.sm.Keys(s.ctx)) }

// Keys returns the session keys in sorted order.
func (s *Session) Keys() []string { return s.sm.Keys(s.ctx) }

// Has reports whether key is present.
func (s *Session) Has(key string) bool { return s.sm.Exists(s.ctx, key) }

// Get decodes the value stored under key into v. It returns false when the
// key is absent, in which case v is left untouched.
func (s *Session) Get(key string, v interface{}) (bool, error) {
	const op = "Session.Get"
	if !s.sm.Exists(s.ctx, key) {
		return false, nil
	}
	if v == nil {
		return false, fmt.Errorf("%s: target is nil: %w", op, ErrNilParameter)
	}
	if err := json.Unmarshal(s.sm.GetBytes(s.ctx, key), v); err != nil {
		return true, fmt.Errorf("%s: unable to decode %q: %w", op, key, err)
	}
	return true, nil
}

// Set encodes v as JSON and stores it under key, replacing any previous value.
func (s *Session) Set(key string, v interface{}) error {
	const op = "Session.Set"
	if key == "" {
		return fmt.Errorf("%s: key is empty: %w", op, ErrInvalidParameter)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%s: unable to encode %q: %w", op, key, err)
	}
	s.sm.Put(s.ctx, key, raw)
	return nil
}

// Delete removes key. Deleting an absent key is a no-op.
func (s *Session) Delete(key string) {
	s.sm.Remove(s.ctx, key)
}

// Clear removes every key but keeps the session and its token.
func (s *Session) Clear() error {
	const op = "Session.Clear"
	if err := s.sm.Clear(s.ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Destroy removes the session from the Store and expires the cookie.
func (s *Session) Destroy() error {
	const op = "Session.Destroy"
	if err := s.sm.Destroy(s.ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Renew moves the session to a new token while keeping its values; the old
// token is removed from the Store. Call it whenever the privilege level of
// the session changes, such as on login.
func (s *Session) Renew() error {
	const op = "Session.Renew"
	if err := s.sm.RenewToken(s.ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

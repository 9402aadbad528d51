// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package session

import (
	"context"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/hashicorp/go-hclog"
)

// Manager binds sessions kept in an scs.Store to requests through a cookie.
type Manager struct {
	sm     *scs.SessionManager
	logger hclog.Logger
}

// NewManager returns a Manager for store, such as memstore.New() or a
// RedisStore.
//
// Supported options: WithCookieName, WithCookiePath, WithSecureCookie,
// WithSameSite, WithTTL, WithIdleTimeout, WithLogger.
func NewManager(store scs.Store, opt ...Option) (*Manager, error) {
	const op = "session.NewManager"
	if store == nil {
		return nil, fmt.Errorf("%s: store is nil: %w", op, ErrNilParameter)
	}
	opts := getManagerOpts(opt...)

	sm := scs.New()
	sm.Store = store
	sm.Lifetime = opts.withTTL
	sm.IdleTimeout = opts.withIdleTimeout
	sm.Cookie.Name = opts.withCookieName
	sm.Cookie.Path = opts.withCookiePath
	sm.Cookie.Secure = opts.withSecure
	sm.Cookie.SameSite = opts.withSameSite
	sm.Cookie.HttpOnly = true
	// the cookie lasts as long as the browser session; the store expiry
	// bounds the server side lifetime
	sm.Cookie.Persist = false

	m := &Manager{sm: sm, logger: opts.withLogger}
	sm.ErrorFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
		m.logger.Error("session store failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
	return m, nil
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string { return m.sm.Cookie.Name }

// Middleware loads the session for each request and makes it available
// through FromRequest. Changes are committed just before the response header
// is written, or after next returns for handlers that never write one.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return m.sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := &Session{ctx: r.Context(), sm: m.sm}
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), s)))
	}))
}

// Load returns the session stored under token outside of a request, such as
// in a background job. An unknown or empty token gives a new empty session.
func (m *Manager) Load(ctx context.Context, token string) (*Session, error) {
	const op = "Manager.Load"
	sctx, err := m.sm.Load(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Session{ctx: sctx, sm: m.sm}, nil
}

// Commit saves s to the store and returns its token. Sessions served by
// Middleware are committed automatically.
func (m *Manager) Commit(s *Session) (string, error) {
	const op = "Manager.Commit"
	if s == nil {
		return "", fmt.Errorf("%s: session is nil: %w", op, ErrNilParameter)
	}
	token, _, err := m.sm.Commit(s.ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

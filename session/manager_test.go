// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *memstore.MemStore {
	t.Helper()
	store := memstore.New()
	t.Cleanup(store.StopCleanup)
	return store
}

func storeLen(t *testing.T, store *memstore.MemStore) int {
	t.Helper()
	all, err := store.All()
	require.NoError(t, err)
	return len(all)
}

func TestNewManager(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)

	_, err := NewManager(nil)
	require.Error(err)
	assert.ErrorIs(err, ErrNilParameter)

	m, err := NewManager(newTestStore(t))
	require.NoError(err)
	assert.Equal(DefaultCookieName, m.CookieName())
	assert.True(m.sm.Cookie.Secure)
	assert.True(m.sm.Cookie.HttpOnly)
	assert.False(m.sm.Cookie.Persist)
	assert.Equal(http.SameSiteLaxMode, m.sm.Cookie.SameSite)
	assert.Equal(DefaultTTL, m.sm.Lifetime)
	assert.Equal(time.Duration(0), m.sm.IdleTimeout)

	m, err = NewManager(newTestStore(t),
		WithCookieName("sid"),
		WithCookiePath("/app"),
		WithSecureCookie(false),
		WithSameSite(http.SameSiteStrictMode),
		WithTTL(time.Hour),
		WithIdleTimeout(time.Minute),
		nil,
	)
	require.NoError(err)
	assert.Equal("sid", m.CookieName())
	assert.Equal("/app", m.sm.Cookie.Path)
	assert.False(m.sm.Cookie.Secure)
	assert.Equal(http.SameSiteStrictMode, m.sm.Cookie.SameSite)
	assert.Equal(time.Hour, m.sm.Lifetime)
	assert.Equal(time.Minute, m.sm.IdleTimeout)
}

func findCookie(t *testing.T, resp *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestManager_Middleware(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	store := newTestStore(t)
	m, err := NewManager(store)
	require.NoError(err)

	mux := http.NewServeMux()
	mux.HandleFunc("/set", func(w http.ResponseWriter, r *http.Request) {
		s, err := FromRequest(r)
		require.NoError(err)
		require.NoError(s.Set("user", "alice"))
		http.Redirect(w, r, "/get", http.StatusFound)
	})
	mux.HandleFunc("/get", func(w http.ResponseWriter, r *http.Request) {
		s, err := FromRequest(r)
		require.NoError(err)
		var user string
		if ok, _ := s.Get("user", &user); !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(user))
	})
	mux.HandleFunc("/clear", func(w http.ResponseWriter, r *http.Request) {
		s, err := FromRequest(r)
		require.NoError(err)
		require.NoError(s.Clear())
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/destroy", func(w http.ResponseWriter, r *http.Request) {
		s, err := FromRequest(r)
		require.NoError(err)
		require.NoError(s.Destroy())
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/late", func(_ http.ResponseWriter, r *http.Request) {
		s, err := FromRequest(r)
		require.NoError(err)
		require.NoError(s.Set("late", true))
	})
	h := m.Middleware(mux)
	serve := func(path string, c *http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if c != nil {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	// an anonymous read does not create a session
	rec := serve("/get", nil)
	assert.Equal(http.StatusUnauthorized, rec.Code)
	assert.Nil(findCookie(t, rec.Result(), DefaultCookieName))
	assert.Equal(0, storeLen(t, store))

	rec = serve("/set", nil)
	assert.Equal(http.StatusFound, rec.Code)
	c := findCookie(t, rec.Result(), DefaultCookieName)
	require.NotNil(c)
	assert.True(c.HttpOnly)
	assert.True(c.Secure)
	assert.Equal(http.SameSiteLaxMode, c.SameSite)
	assert.Equal("/", c.Path)
	assert.Equal(0, c.MaxAge)
	assert.Equal(1, storeLen(t, store))

	rec = serve("/get", c)
	assert.Equal(http.StatusOK, rec.Code)
	assert.Equal("alice", rec.Body.String())
	assert.Nil(findCookie(t, rec.Result(), DefaultCookieName), "unchanged session must not reset the cookie")

	rec = serve("/destroy", c)
	expired := findCookie(t, rec.Result(), DefaultCookieName)
	require.NotNil(expired)
	assert.Equal(-1, expired.MaxAge)
	assert.Equal(0, storeLen(t, store))

	// a stale cookie starts a fresh session
	rec = serve("/get", c)
	assert.Equal(http.StatusUnauthorized, rec.Code)

	// handlers that never write still get their changes saved
	serve("/late", nil)
	assert.Equal(1, storeLen(t, store))

	// clearing keeps the session but drops its values
	c = findCookie(t, serve("/set", nil).Result(), DefaultCookieName)
	require.NotNil(c)
	serve("/clear", c)
	assert.Equal(http.StatusUnauthorized, serve("/get", c).Code)
	assert.Equal(2, storeLen(t, store))
}

func TestManager_LoadCommitRenew(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	ctx := context.Background()
	store := newTestStore(t)
	m, err := NewManager(store)
	require.NoError(err)

	s, err := m.Load(ctx, "")
	require.NoError(err)
	assert.Empty(s.Token())
	require.NoError(s.Set("k", "v"))
	token, err := m.Commit(s)
	require.NoError(err)
	assert.NotEmpty(token)
	assert.Equal(token, s.Token())

	require.NoError(s.Renew())
	assert.NotEqual(token, s.Token())
	_, found, err := store.Find(token)
	require.NoError(err)
	assert.False(found, "renewing must remove the old token")

	renewed, err := m.Commit(s)
	require.NoError(err)
	assert.Equal(s.Token(), renewed)

	loaded, err := m.Load(ctx, renewed)
	require.NoError(err)
	var v string
	ok, err := loaded.Get("k", &v)
	require.NoError(err)
	assert.True(ok)
	assert.Equal("v", v)

	// an unknown token gives a new empty session
	unknown, err := m.Load(ctx, token)
	require.NoError(err)
	assert.Equal(0, unknown.Len())

	_, err = m.Commit(nil)
	require.Error(err)
	assert.ErrorIs(err, ErrNilParameter)
}

type failingStore struct {
	*memstore.MemStore
	findErr   error
	commitErr error
}

func (f *failingStore) Find(token string) ([]byte, bool, error) {
	if f.findErr != nil {
		return nil, false, f.findErr
	}
	return f.MemStore.Find(token)
}

func (f *failingStore) Commit(token string, b []byte, expiry time.Time) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	return f.MemStore.Commit(token, b, expiry)
}

func TestManager_StoreErrors(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)

	store := &failingStore{MemStore: newTestStore(t), findErr: errors.New("store down")}
	m, err := NewManager(store)
	require.NoError(err)

	called := false
	h := m.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "abc"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(http.StatusInternalServerError, rec.Code)
	assert.False(called)

	_, err = m.Load(context.Background(), "abc")
	require.Error(err)

	store.findErr = nil
	store.commitErr = errors.New("disk full")
	s, err := m.Load(context.Background(), "")
	require.NoError(err)
	require.NoError(s.Set("k", "v"))
	_, err = m.Commit(s)
	require.Error(err)
	assert.Contains(err.Error(), "disk full")
	assert.True(s.Modified())
}

func TestFromRequest(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)

	_, err := FromRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Error(err)
	assert.ErrorIs(err, ErrNoSession)

	m, err := NewManager(newTestStore(t))
	require.NoError(err)
	s, err := m.Load(context.Background(), "")
	require.NoError(err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(NewContext(req.Context(), s))
	got, err := FromRequest(req)
	require.NoError(err)
	assert.Same(s, got)
}

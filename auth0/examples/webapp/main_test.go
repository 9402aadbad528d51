// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"testing"

	"github.com/alexedwards/scs/v2/memstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp/cap-auth0/session"
)

func TestNewStore_Memory(t *testing.T) {
	assert, require := assert.New(t), require.New(t)
	t.Setenv(redisAddr, "")

	store, closeStore, err := newStore(context.Background(), hclog.NewNullLogger())
	require.NoError(err)
	require.IsType(&memstore.MemStore{}, store)

	m, err := session.NewManager(store)
	require.NoError(err)
	s, err := m.Load(context.Background(), "")
	require.NoError(err)
	require.NoError(s.Set("theme", "dark"))
	token, err := m.Commit(s)
	require.NoError(err)
	assert.NotEmpty(token)

	// stops the cleanup goroutine
	closeStore()
}

func TestNewStore_Redis(t *testing.T) {
	assert, require := assert.New(t), require.New(t)
	ctx := context.Background()
	mr := miniredis.RunT(t)
	t.Setenv(redisAddr, mr.Addr())

	store, closeStore, err := newStore(ctx, hclog.NewNullLogger())
	require.NoError(err)
	require.IsType(&session.RedisStore{}, store)

	m, err := session.NewManager(store)
	require.NoError(err)
	s, err := m.Load(ctx, "")
	require.NoError(err)
	require.NoError(s.Set("theme", "dark"))
	token, err := m.Commit(s)
	require.NoError(err)
	assert.True(mr.Exists(session.DefaultRedisKeyPrefix + token))

	// the client is closed, so nothing more reaches redis
	closeStore()
	s, err = m.Load(ctx, "")
	require.NoError(err)
	require.NoError(s.Set("theme", "light"))
	_, err = m.Commit(s)
	assert.Error(err)
}

func TestNewStore_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	t.Setenv(redisAddr, addr)

	_, _, err := newStore(context.Background(), hclog.NewNullLogger())
	assert.Error(t, err)
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
Package session provides server side sessions for net/http handlers, built on
github.com/alexedwards/scs/v2.

A Session is a small bag of JSON values addressed by key. Its contents live in
an scs.Store (scs's memstore, or a RedisStore shared between instances); the
browser only carries an opaque token in a cookie. Manager.Middleware loads the
session for every request, makes it available through FromRequest, and
persists any changes before the response header is written.

	store := memstore.New()
	defer store.StopCleanup()
	mgr, err := session.NewManager(store, session.WithSecureCookie(true))
	if err != nil {
		// handle error
	}
	http.ListenAndServe(":8080", mgr.Middleware(mux))

A Session is not safe for concurrent use; the stores are.
*/
package session

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"

	"github.com/hashicorp/cap-auth0/auth0"
	"github.com/hashicorp/cap-auth0/auth0/guard"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(v)
}

func home(w http.ResponseWriter, r *http.Request) {
	claims, _ := guard.ClaimsFromContext(r.Context())
	name := claims.Name()
	if name == "" {
		name = claims.Email()
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<p>Hello %s.</p>
<ul>
<li><a href="/userinfo">userinfo</a></li>
<li><a href="/payload">payload</a></li>
<li><a href="/access_token">access token</a></li>
<li><a href="/logout">logout</a></li>
</ul>
`, html.EscapeString(name))
}

// payload shows the verified id_token claims kept in the session.
func payload(w http.ResponseWriter, r *http.Request) {
	claims, _ := guard.ClaimsFromContext(r.Context())
	writeJSON(w, claims)
}

func accessToken(w http.ResponseWriter, r *http.Request) {
	at, ok := guard.AccessToken(r)
	if !ok {
		http.Error(w, "no access token in session", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]string{"access_token": string(at)})
}

func userInfo(p *auth0.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := guard.TokenRecordFromContext(r.Context())
		if !ok {
			http.Error(w, "no access token in session", http.StatusNotFound)
			return
		}
		var info map[string]interface{}
		if err := p.UserInfo(r.Context(), rec, &info); err != nil {
			p.Logger().Error("userinfo failed", "error", err)
			http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
			return
		}
		writeJSON(w, info)
	}
}

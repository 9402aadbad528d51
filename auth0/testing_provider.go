// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth0

import (
	"bytes"
	"crypto/rsa"
	"encoding/json"
	"encoding/pem"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp/cap-auth0/jwt"
	"github.com/hashicorp/cap-auth0/sdk/id"
)

// TestProvider is a local TLS server that emulates the Auth0 endpoints used
// by a Provider: /authorize, /oauth/token, /.well-known/jwks.json, /userinfo
// and /v2/logout. It signs id_tokens with an RSA key using RS256.
type TestProvider struct {
	httpServer *httptest.Server
	caCert     string

	mu                  sync.Mutex
	signingKey          *rsa.PrivateKey
	keyID               string
	jwks                jose.JSONWebKeySet
	clientID            string
	clientSecret        string
	allowedRedirectURIs []string
	expectedAuthCode    string
	issuedAccessToken   string
	replySubject        string
	replyEmail          string
	replyEmailVerified  interface{}
	replyUserinfo       map[string]interface{}
	customClaims        map[string]interface{}
	customAudience      string
	customIssuer        string
	idTokenExpiry       time.Duration
	omitIdToken         bool
	authError           string
	authErrorDesc       string
	silentAuthError     string
	tokenErrorStatus    int
	tokenError          string
	tokenErrorDesc      string
	jwksFetches         int
	authorizeRequests   []url.Values

	t *testing.T
}

// Stop stops the running TestProvider.
func (p *TestProvider) Stop() {
	p.httpServer.Close()
}

// StartTestProvider creates a disposable TestProvider which is stopped when
// the test completes.
func StartTestProvider(t *testing.T) *TestProvider {
	t.Helper()
	require := require.New(t)

	p := &TestProvider{
		clientID:           "test-client-id",
		clientSecret:       "test-client-secret",
		expectedAuthCode:   "test-code",
		replySubject:       "auth0|alice",
		replyEmail:         "alice@example.com",
		replyEmailVerified: true,
		idTokenExpiry:      time.Hour,
		t:                  t,
	}
	_, priv := TestGenerateKeys(t)
	p.setSigningKeyLocked(priv.(*rsa.PrivateKey), "test-key")

	p.httpServer = httptest.NewUnstartedServer(p)
	p.httpServer.Config.ErrorLog = log.New(io.Discard, "", 0)
	p.httpServer.StartTLS()
	t.Cleanup(p.httpServer.Close)

	var buf bytes.Buffer
	err := pem.Encode(&buf, &pem.Block{Type: "CERTIFICATE", Bytes: p.httpServer.Certificate().Raw})
	require.NoError(err)
	p.caCert = buf.String()

	return p
}

// Addr returns the current base URL for the test provider's running webserver.
func (p *TestProvider) Addr() string { return p.httpServer.URL }

// Domain returns the host:port of the test provider, suitable for
// Config.Domain.
func (p *TestProvider) Domain() string { return strings.TrimPrefix(p.httpServer.URL, "https://") }

// CACert returns the pem-encoded CA certificate used by the test provider's
// HTTPS server.
func (p *TestProvider) CACert() string { return p.caCert }

// HTTPClient returns a client that trusts the test provider's certificate.
func (p *TestProvider) HTTPClient() *http.Client { return p.httpServer.Client() }

// ClientCreds returns the client id and secret the provider accepts.
func (p *TestProvider) ClientCreds() (clientID, clientSecret string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clientID, p.clientSecret
}

// NewConfig returns a Config for this provider with the given callback URL.
// The logout URL is https://app.example.com/.
func (p *TestProvider) NewConfig(callbackURL string, opt ...Option) *Config {
	p.t.Helper()
	clientID, clientSecret := p.ClientCreds()
	opts := append([]Option{WithProviderCA(p.CACert())}, opt...)
	c, err := NewConfig(p.Domain(), clientID, ClientSecret(clientSecret), callbackURL, "https://app.example.com/", opts...)
	require.NoError(p.t, err)
	return c
}

// SetClientCreds is for configuring the client information required for the
// authorization code flow.
func (p *TestProvider) SetClientCreds(clientID, clientSecret string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clientID = clientID
	p.clientSecret = clientSecret
}

// SetExpectedAuthCode configures the auth code to return from /authorize and
// the allowed auth code for /oauth/token.
func (p *TestProvider) SetExpectedAuthCode(code string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.expectedAuthCode = code
}

// SetAllowedRedirectURIs restricts the redirect_uri values accepted. By
// default any redirect_uri is accepted.
func (p *TestProvider) SetAllowedRedirectURIs(uris ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.allowedRedirectURIs = uris
}

// SetCustomClaims lets you set claims to return in the id_token. They
// override the standard claims.
func (p *TestProvider) SetCustomClaims(customClaims map[string]interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.customClaims = customClaims
}

// SetCustomAudience configures the "aud" claim of issued id_tokens.
func (p *TestProvider) SetCustomAudience(customAudience string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.customAudience = customAudience
}

// SetCustomIssuer configures the "iss" claim of issued id_tokens.
func (p *TestProvider) SetCustomIssuer(iss string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.customIssuer = iss
}

// SetIdTokenExpiry sets how long issued id_tokens are valid for. A negative
// value issues tokens that are already expired.
func (p *TestProvider) SetIdTokenExpiry(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idTokenExpiry = d
}

// SetEmailVerified sets the "email_verified" claim. A nil value omits it.
func (p *TestProvider) SetEmailVerified(v interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replyEmailVerified = v
}

// SetUserInfoReply configures the /userinfo response.
func (p *TestProvider) SetUserInfoReply(reply map[string]interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replyUserinfo = reply
}

// OmitIdToken forces an error state where the /oauth/token endpoint does not
// return an id_token.
func (p *TestProvider) OmitIdToken() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.omitIdToken = true
}

// SetAuthError makes /authorize redirect back with the given error for every
// request. An empty code clears it.
func (p *TestProvider) SetAuthError(code, description string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.authError = code
	p.authErrorDesc = description
}

// SetSilentAuthError makes /authorize redirect back with the given error for
// requests with prompt=none.
func (p *TestProvider) SetSilentAuthError(code string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.silentAuthError = code
}

// SetTokenError makes /oauth/token fail with the given status and OAuth
// error. A zero status clears it.
func (p *TestProvider) SetTokenError(status int, code, description string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokenErrorStatus = status
	p.tokenError = code
	p.tokenErrorDesc = description
}

// SetSigningKey replaces the key used to sign id_tokens and published in the
// JWKS, simulating a key rotation.
func (p *TestProvider) SetSigningKey(key *rsa.PrivateKey, keyID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setSigningKeyLocked(key, keyID)
}

func (p *TestProvider) setSigningKeyLocked(key *rsa.PrivateKey, keyID string) {
	p.signingKey = key
	p.keyID = keyID
	p.jwks = jose.JSONWebKeySet{
		Keys: []jose.JSONWebKey{
			{
				Key:       &key.PublicKey,
				KeyID:     keyID,
				Algorithm: string(jwt.RS256),
				Use:       "sig",
			},
		},
	}
}

// SignJWT signs claims with the provider's current key.
func (p *TestProvider) SignJWT(claims map[string]interface{}) string {
	p.t.Helper()
	p.mu.Lock()
	key, kid := p.signingKey, p.keyID
	p.mu.Unlock()
	return TestSignJWT(p.t, key, jwt.RS256, claims, kid)
}

// DefaultClaims returns the claims the provider puts in a fresh id_token.
func (p *TestProvider) DefaultClaims() map[string]interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idTokenClaimsLocked()
}

// JWKSFetches returns how many times the JWKS has been requested.
func (p *TestProvider) JWKSFetches() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.jwksFetches
}

// AuthorizeRequests returns the query of every /authorize request received.
func (p *TestProvider) AuthorizeRequests() []url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]url.Values(nil), p.authorizeRequests...)
}

// IssuedAccessToken returns the last access token issued by /oauth/token.
func (p *TestProvider) IssuedAccessToken() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.issuedAccessToken
}

func (p *TestProvider) idTokenClaimsLocked() map[string]interface{} {
	now := time.Now()
	claims := map[string]interface{}{
		"iss":   p.Addr() + "/",
		"sub":   p.replySubject,
		"aud":   p.clientID,
		"iat":   now.Unix(),
		"exp":   now.Add(p.idTokenExpiry).Unix(),
		"email": p.replyEmail,
	}
	if p.replyEmailVerified != nil {
		claims["email_verified"] = p.replyEmailVerified
	}
	if p.customAudience != "" {
		claims["aud"] = p.customAudience
	}
	if p.customIssuer != "" {
		claims["iss"] = p.customIssuer
	}
	for k, v := range p.customClaims {
		claims[k] = v
	}
	return claims
}

func (p *TestProvider) writeJSON(w http.ResponseWriter, status int, out interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(out)
}

func (p *TestProvider) redirectURIAllowed(uri string) bool {
	if len(p.allowedRedirectURIs) == 0 {
		return uri != ""
	}
	for _, u := range p.allowedRedirectURIs {
		if u == uri {
			return true
		}
	}
	return false
}

func (p *TestProvider) writeAuthResponse(w http.ResponseWriter, req *http.Request, redirectURI string, params url.Values) {
	http.Redirect(w, req, redirectURI+"?"+params.Encode(), http.StatusFound)
}

func (p *TestProvider) writeTokenErrorResponse(w http.ResponseWriter, statusCode int, errorCode, errorMessage string) {
	body := struct {
		Code string `json:"error"`
		Desc string `json:"error_description,omitempty"`
	}{
		Code: errorCode,
		Desc: errorMessage,
	}
	p.writeJSON(w, statusCode, &body)
}

// ServeHTTP implements the test provider's http.Handler.
func (p *TestProvider) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch req.URL.Path {
	case "/authorize":
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		qv := req.URL.Query()
		p.authorizeRequests = append(p.authorizeRequests, qv)

		redirectURI := qv.Get("redirect_uri")
		if !p.redirectURIAllowed(redirectURI) || qv.Get("client_id") != p.clientID {
			// never redirect to an unknown client, as Auth0 does
			p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_request", "unknown client or redirect_uri")
			return
		}
		resp := url.Values{"state": {qv.Get("state")}}
		switch {
		case qv.Get("response_type") != "code":
			resp.Set("error", "unsupported_response_type")
		case !strings.Contains(" "+qv.Get("scope")+" ", " openid "):
			resp.Set("error", "invalid_scope")
		case qv.Get("state") == "":
			resp.Set("error", "invalid_request")
			resp.Set("error_description", "missing state parameter")
		case p.authError != "":
			resp.Set("error", p.authError)
			if p.authErrorDesc != "" {
				resp.Set("error_description", p.authErrorDesc)
			}
		case qv.Get("prompt") == "none" && p.silentAuthError != "":
			resp.Set("error", p.silentAuthError)
			resp.Set("error_description", "silent authentication is not possible")
		default:
			resp.Set("code", p.expectedAuthCode)
		}
		p.writeAuthResponse(w, req, redirectURI, resp)

	case "/oauth/token":
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		switch {
		case req.FormValue("grant_type") != "authorization_code":
			p.writeTokenErrorResponse(w, http.StatusBadRequest, "unsupported_grant_type", "bad grant_type")
			return
		case req.FormValue("client_id") != p.clientID || req.FormValue("client_secret") != p.clientSecret:
			p.writeTokenErrorResponse(w, http.StatusUnauthorized, "access_denied", "Unauthorized")
			return
		case !p.redirectURIAllowed(req.FormValue("redirect_uri")):
			p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_request", "redirect_uri is not allowed")
			return
		case p.tokenErrorStatus != 0:
			p.writeTokenErrorResponse(w, p.tokenErrorStatus, p.tokenError, p.tokenErrorDesc)
			return
		case req.FormValue("code") != p.expectedAuthCode:
			p.writeTokenErrorResponse(w, http.StatusForbidden, "invalid_grant", "Invalid authorization code")
			return
		}

		accessToken, err := id.New("at")
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		p.issuedAccessToken = accessToken
		reply := struct {
			AccessToken string `json:"access_token"`
			IdToken     string `json:"id_token,omitempty"`
			TokenType   string `json:"token_type"`
			ExpiresIn   int    `json:"expires_in"`
			Scope       string `json:"scope,omitempty"`
		}{
			AccessToken: accessToken,
			TokenType:   "Bearer",
			ExpiresIn:   86400,
			Scope:       "openid profile email",
		}
		if !p.omitIdToken {
			reply.IdToken, err = signJWT(p.signingKey, jwt.RS256, p.idTokenClaimsLocked(), p.keyID)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
		}
		w.Header().Set("Cache-Control", "no-store")
		p.writeJSON(w, http.StatusOK, &reply)

	case "/.well-known/jwks.json":
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		p.jwksFetches++
		p.writeJSON(w, http.StatusOK, p.jwks)

	case "/userinfo":
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if p.issuedAccessToken == "" || req.Header.Get("Authorization") != "Bearer "+p.issuedAccessToken {
			w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
			p.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_token"})
			return
		}
		reply := p.replyUserinfo
		if reply == nil {
			reply = map[string]interface{}{
				"sub":            p.replySubject,
				"email":          p.replyEmail,
				"email_verified": p.replyEmailVerified,
			}
		}
		p.writeJSON(w, http.StatusOK, reply)

	case "/v2/logout":
		qv := req.URL.Query()
		if qv.Get("client_id") != p.clientID {
			p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_request", "unknown client")
			return
		}
		returnTo := qv.Get("returnTo")
		if returnTo == "" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Redirect(w, req, returnTo, http.StatusFound)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

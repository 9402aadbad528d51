// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth0

import (
	"encoding/json"
	"time"

	"golang.org/x/oauth2"
)

// IdToken is an oidc id_token
type IdToken string

// RedactedIdToken is the redacted string or json for an oidc id_token
const RedactedIdToken = "[REDACTED: id_token]"

// String will redact the token
func (t IdToken) String() string {
	return RedactedIdToken
}

// MarshalJSON will redact the token
func (t IdToken) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedIdToken)
}

// AccessToken is an oauth access_token
type AccessToken string

// RedactedAccessToken is the redacted string or json for an oauth access_token
const RedactedAccessToken = "[REDACTED: access_token]"

// String will redact the token
func (t AccessToken) String() string {
	return RedactedAccessToken
}

// MarshalJSON will redact the token
func (t AccessToken) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedAccessToken)
}

// RefreshToken is an oauth refresh_token
type RefreshToken string

// RedactedRefreshToken is the redacted string or json for an oauth refresh_token
const RedactedRefreshToken = "[REDACTED: refresh_token]"

// String will redact the token
func (t RefreshToken) String() string {
	return RedactedRefreshToken
}

// MarshalJSON will redact the token
func (t RefreshToken) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedRefreshToken)
}

// TokenRecord is the access token record kept in the session. It is only
// ever handed back to the provider's own APIs and is never parsed.
//
// Its JSON form carries the real token values because it is the session
// wire format; String redacts them.
type TokenRecord struct {
	accessToken  string
	refreshToken string
	tokenType    string
	expiry       time.Time
}

type tokenRecordJSON struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitzero"`
}

func newTokenRecord(t *oauth2.Token) *TokenRecord {
	return &TokenRecord{
		accessToken:  t.AccessToken,
		refreshToken: t.RefreshToken,
		tokenType:    t.TokenType,
		expiry:       t.Expiry,
	}
}

// AccessToken returns the access token.
func (r *TokenRecord) AccessToken() AccessToken { return AccessToken(r.accessToken) }

// RefreshToken returns the refresh token, which may be empty.
func (r *TokenRecord) RefreshToken() RefreshToken { return RefreshToken(r.refreshToken) }

// TokenType returns the token type, usually "Bearer".
func (r *TokenRecord) TokenType() string { return r.tokenType }

// Expiry returns the access token's expiry, or the zero time if unknown.
func (r *TokenRecord) Expiry() time.Time { return r.expiry }

// String will redact the tokens.
func (r *TokenRecord) String() string {
	return "TokenRecord{" + RedactedAccessToken + "}"
}

// MarshalJSON encodes the record for session storage.
func (r *TokenRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(tokenRecordJSON{
		AccessToken:  r.accessToken,
		RefreshToken: r.refreshToken,
		TokenType:    r.tokenType,
		Expiry:       r.expiry,
	})
}

// UnmarshalJSON decodes a record from session storage.
func (r *TokenRecord) UnmarshalJSON(b []byte) error {
	var w tokenRecordJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*r = TokenRecord{
		accessToken:  w.AccessToken,
		refreshToken: w.RefreshToken,
		tokenType:    w.TokenType,
		expiry:       w.Expiry,
	}
	return nil
}

// oauth2Token returns the record as a token for bearer requests.
func (r *TokenRecord) oauth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken: r.accessToken,
		TokenType:   r.tokenType,
		Expiry:      r.expiry,
	}
}

// Token is the result of a successful authorization code exchange.
type Token struct {
	record  *TokenRecord
	idToken IdToken
	claims  Claims
}

// Record returns the access token record.
func (t *Token) Record() *TokenRecord { return t.record }

// IdToken returns the raw, verified id_token.
func (t *Token) IdToken() IdToken { return t.idToken }

// Claims returns the verified id_token claims.
func (t *Token) Claims() Claims { return t.claims }

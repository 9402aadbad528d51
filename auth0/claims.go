// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth0

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Claims is a verified id_token claims set. It is stored in the session as
// is, so every value is whatever encoding/json produced for it.
type Claims map[string]interface{}

func (c Claims) str(name string) string {
	s, _ := c[name].(string)
	return s
}

// Subject returns the "sub" claim.
func (c Claims) Subject() string { return c.str("sub") }

// Issuer returns the "iss" claim.
func (c Claims) Issuer() string { return c.str("iss") }

// Email returns the "email" claim.
func (c Claims) Email() string { return c.str("email") }

// Name returns the "name" claim.
func (c Claims) Name() string { return c.str("name") }

// Audience returns the "aud" claim, which may be a single string or a list.
func (c Claims) Audience() []string {
	switch v := c["aud"].(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, a := range v {
			if s, ok := a.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// EmailVerified returns the "email_verified" claim. The second result is
// false when the claim is absent or not a boolean.
func (c Claims) EmailVerified() (verified bool, ok bool) {
	switch v := c["email_verified"].(type) {
	case bool:
		return v, true
	case string:
		// some upstream connections send the flag as a string
		b, err := strconv.ParseBool(v)
		return b, err == nil
	}
	return false, false
}

// Expiry returns the "exp" claim. The second result is false when the claim
// is absent or not numeric.
func (c Claims) Expiry() (time.Time, bool) {
	var secs float64
	switch v := c["exp"].(type) {
	case float64:
		secs = v
	case int64:
		secs = float64(v)
	case int:
		secs = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return time.Time{}, false
		}
		secs = f
	default:
		return time.Time{}, false
	}
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*1e9)), true
}

// Expired reports whether now is at or past the "exp" claim. Claims without
// a usable "exp" are always expired.
func (c Claims) Expired(now time.Time) bool {
	exp, ok := c.Expiry()
	if !ok {
		return true
	}
	return !now.Before(exp)
}

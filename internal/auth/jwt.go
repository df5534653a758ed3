package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Bearer JWTs are thin references: 'jti' points at an opaque token record in
// the database and 'sub' at the record's subject.  For an access JWT that is
// (access token id, user id); for a refresh JWT it is (refresh token id,
// access token id).  The database record's expiry is the real authority; the
// JWT 'exp' is deliberately longer-lived than the access record it points at.

var errInvalidToken = errors.New("invalid bearer token")

// RefClaims is the decoded reference payload of a bearer JWT.
type RefClaims struct {
	JTI uint64 // id of the referenced opaque token record
	Sub uint64 // subject record id
}

// signRef builds and signs an HS256 JWT referencing an opaque token record.
func signRef(secret string, jti, sub uint64, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"jti": jti,
		"sub": sub,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// parseRef verifies an HS256 JWT and extracts the reference claims.  Any
// failure (bad signature, wrong algorithm, elapsed exp, malformed claims)
// yields errInvalidToken; callers decide which HTTP error that becomes.
func parseRef(secret, raw string) (RefClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return RefClaims{}, errInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return RefClaims{}, errInvalidToken
	}
	jti, ok := claimUint64(claims, "jti")
	if !ok {
		return RefClaims{}, errInvalidToken
	}
	sub, ok := claimUint64(claims, "sub")
	if !ok {
		return RefClaims{}, errInvalidToken
	}
	return RefClaims{JTI: jti, Sub: sub}, nil
}

// claimUint64 reads a numeric claim.  JSON numbers decode as float64.
func claimUint64(claims jwt.MapClaims, key string) (uint64, bool) {
	switch v := claims[key].(type) {
	case float64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case uint64:
		return v, true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	}
	return 0, false
}

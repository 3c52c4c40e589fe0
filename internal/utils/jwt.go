package utils // package utils provides helpers for session token creation

import (
    "time" // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// SessionToken represents a signed JWT along with its expiry.  The token is
// sent in the Authorization header when calling protected endpoints.  Its
// claims carry the connected wallet address (sub) and the self-declared role;
// the role claim gates navigation only, never privileged actions.
type SessionToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewSessionToken builds and signs an HS256 JWT binding a wallet address to a
// self-declared role.  The JWT includes standard claims: subject (sub, the
// 0x-address), role, expiration (exp) and issued at (iat).
func NewSessionToken(secret, address, role string, ttlMin int) (SessionToken, error) {
    exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":  address,
        "role": role,
        "exp":  exp.Unix(),
        "iat":  time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return SessionToken{}, err
    }
    return SessionToken{Token: signed, Exp: exp}, nil
}

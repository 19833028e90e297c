package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

// ErrMissingUserID is returned when a token payload carries no user id.
var ErrMissingUserID = errors.New("session: token has no user id")

var tokenAlgorithms = []jose.SignatureAlgorithm{
	jose.HS256, jose.HS384, jose.HS512,
	jose.RS256, jose.RS384, jose.RS512,
	jose.ES256, jose.ES384, jose.ES512,
}

// Claims is the part of the token payload the console reads.
type Claims struct {
	Subject  string           `json:"sub"`
	Username string           `json:"username"`
	UserID   int64            `json:"idUser"`
	Expiry   *jwt.NumericDate `json:"exp,omitempty"`
}

// DecodeToken reads the payload of a compact JWT without verifying its
// signature. The backend verifies tokens; the console only needs the
// identity it was issued for.
func DecodeToken(token string) (Claims, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return Claims{}, errors.New("session: empty token")
	}
	parsed, err := jwt.ParseSigned(token, tokenAlgorithms)
	if err != nil {
		return Claims{}, fmt.Errorf("session: parse token: %w", err)
	}
	var claims Claims
	if err := parsed.UnsafeClaimsWithoutVerification(&claims); err != nil {
		return Claims{}, fmt.Errorf("session: decode claims: %w", err)
	}
	return claims, nil
}

// UserFromToken builds the stored user from a token. The username comes from
// "sub", falling back to "username". An already expired token yields
// ErrNotAuthenticated.
func UserFromToken(token string) (User, error) {
	claims, err := DecodeToken(token)
	if err != nil {
		return User{}, err
	}
	if claims.UserID <= 0 {
		return User{}, ErrMissingUserID
	}
	username := claims.Subject
	if username == "" {
		username = claims.Username
	}
	user := User{
		ID:          claims.UserID,
		Username:    username,
		AccessToken: strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer ")),
	}
	if claims.Expiry != nil {
		user.ExpiresAt = claims.Expiry.Time().Unix()
	}
	if user.Expired(time.Now()) {
		return User{}, fmt.Errorf("session: token expired at %s: %w", claims.Expiry.Time().Format(time.RFC3339), ErrNotAuthenticated)
	}
	return user, nil
}

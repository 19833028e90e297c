// Package session keeps the authenticated user of the console. The user is
// injected into every component that needs it through Provider instead of
// being read from storage at each call site.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotAuthenticated is returned whenever an operation needs a user and
// none is stored, or the stored token has expired.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// User is the persisted identity and bearer token.
type User struct {
	ID          int64  `json:"idUser"`
	Username    string `json:"username"`
	AccessToken string `json:"accessToken"`
	// ExpiresAt is the token "exp" claim in Unix seconds, zero when absent.
	ExpiresAt int64 `json:"expiresAt,omitempty"`
}

// Valid reports whether the user carries an identifier and a token that has
// not expired.
func (u User) Valid() bool {
	return u.ID > 0 && strings.TrimSpace(u.AccessToken) != "" && !u.Expired(time.Now())
}

// Expired reports whether the token expiry is at or before now.
func (u User) Expired(now time.Time) bool {
	return u.ExpiresAt > 0 && !now.Before(time.Unix(u.ExpiresAt, 0))
}

// Provider exposes the current user, if any.
type Provider interface {
	CurrentUser() (User, bool)
}

// Store is a Provider that can also persist and forget the user.
type Store interface {
	Provider
	Save(User) error
	Clear() error
}

// Require returns the current user or ErrNotAuthenticated.
func Require(p Provider) (User, error) {
	if p == nil {
		return User{}, ErrNotAuthenticated
	}
	user, ok := p.CurrentUser()
	if !ok || !user.Valid() {
		return User{}, ErrNotAuthenticated
	}
	return user, nil
}

// Authenticator exchanges credentials for a signed token.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (string, error)
}

// Login authenticates, decodes the token payload and stores the user.
func Login(ctx context.Context, auth Authenticator, store Store, username, password string) (User, error) {
	if auth == nil || store == nil {
		return User{}, errors.New("session: login requires an authenticator and a store")
	}
	token, err := auth.Authenticate(ctx, username, password)
	if err != nil {
		return User{}, err
	}
	user, err := UserFromToken(token)
	if err != nil {
		return User{}, err
	}
	if user.Username == "" {
		user.Username = strings.TrimSpace(username)
	}
	if err := store.Save(user); err != nil {
		return User{}, fmt.Errorf("session: save user: %w", err)
	}
	return user, nil
}

// Logout forgets the stored user.
func Logout(store Store) error {
	if store == nil {
		return nil
	}
	return store.Clear()
}

package client

import (
	"time"

	"github.com/spec-kit/account-service/internal/auth"
)

// Session is either Anonymous or Authenticated.
type Session interface {
	isSession()
}

// Anonymous means no usable token is stored.
type Anonymous struct{}

// Authenticated means a stored token has not yet expired.
type Authenticated struct {
	UserID    string
	ExpiresAt time.Time
}

func (Anonymous) isSession()     {}
func (Authenticated) isSession() {}

// DeriveSession decodes token and checks its expiry against now. An empty,
// malformed or expired token yields Anonymous.
func DeriveSession(token string, now time.Time) Session {
	if token == "" {
		return Anonymous{}
	}
	claims, err := auth.DecodeUnverified(token)
	if err != nil {
		return Anonymous{}
	}
	expiresAt := claims.ExpiresAt.Time
	if !now.Before(expiresAt) {
		return Anonymous{}
	}
	return Authenticated{UserID: claims.UserID, ExpiresAt: expiresAt}
}

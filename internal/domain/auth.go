package domain

import "time"

// TokenTTL is the fixed lifetime of an issued session token.
const TokenTTL = time.Hour

// Token represents issued session token metadata.
type Token struct {
	Value     string
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

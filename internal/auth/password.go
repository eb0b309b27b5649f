package auth

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost is the work factor existing account hashes use.
const DefaultBcryptCost = 10

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned for passwords bcrypt cannot hash.
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// HashPassword hashes a plaintext password with configured cost. A cost of
// zero or below selects DefaultBcryptCost.
func HashPassword(password string, cost int) (string, error) {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ErrPasswordMismatch reports a wrong password.
var ErrPasswordMismatch = bcrypt.ErrMismatchedHashAndPassword

// ComparePassword verifies a password against its hashed value. Any error
// other than ErrPasswordMismatch means the stored hash is unusable.
// Input longer than MaxPasswordBytes never matches: bcrypt would only look
// at its first MaxPasswordBytes bytes.
func ComparePassword(hashed, plain string) error {
	if len(plain) > MaxPasswordBytes {
		// Same work as a real comparison.
		_ = bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain[:MaxPasswordBytes]))
		return ErrPasswordMismatch
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

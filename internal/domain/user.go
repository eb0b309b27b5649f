package domain

import "time"

// User is the persisted account record. The password hash never leaves the
// process in serialized form.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	ContactNumber string    `json:"contactNumber"`
	PasswordHash  string    `json:"-"`
	TermsAccepted bool      `json:"termsAccepted"`
	CreatedAt     time.Time `json:"createdAt"`
}

// PublicUser is the non-sensitive projection returned to callers.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Public projects the user onto fields safe to return over the wire.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}

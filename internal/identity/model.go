package identity

import "time"

// User is the single account held by the store.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	KYCVerified   bool      `json:"kycVerified"`
	WalletAddress string    `json:"walletAddress,omitempty"`
	PasswordHash  []byte    `json:"passwordHash,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Session proves the user signed in until ExpiresAt.
type Session struct {
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Valid reports whether the session is still in force at now.
func (s Session) Valid(now time.Time) bool {
	return s.ExpiresAt.After(now)
}

// Credentials carries login input.
type Credentials struct {
	Email    string `validate:"required"`
	Password string `validate:"required,min=6"`
}

// Registration carries signup input.
type Registration struct {
	Email    string `validate:"required"`
	Password string `validate:"required,min=6"`
	Name     string `validate:"required"`
}

// Public returns the user without credential material.
func (u User) Public() User {
	u.PasswordHash = nil
	return u
}

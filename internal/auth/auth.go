// Package auth holds the single demo credential. There are no sessions,
// tokens or user records.
package auth

import (
	"crypto/subtle"
	"strings"
)

const (
	DefaultEmail    = "admin@crypto.com"
	DefaultPassword = "crypto123"
)

// Credentials is the fixed email/password pair accepted by the login surfaces.
type Credentials struct {
	Email    string
	Password string
}

// New returns the credential, substituting defaults for empty fields.
func New(email, password string) Credentials {
	if email == "" {
		email = DefaultEmail
	}
	if password == "" {
		password = DefaultPassword
	}
	return Credentials{Email: email, Password: password}
}

// Check reports whether the pair matches. Email is case-insensitive.
func (c Credentials) Check(email, password string) bool {
	emailOK := subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(strings.TrimSpace(email))),
		[]byte(strings.ToLower(c.Email)),
	)
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(c.Password))
	return emailOK&passOK == 1
}

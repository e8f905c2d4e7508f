package entity

import (
	"strings"
	"time"
)

// Role is assigned once at signup based on the email domain and never changes.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// User is the aggregate root for the account domain.
// Passwords are stored as bcrypt hashes in PasswordHash.
//
// OTPCode is the pending one-time code slot: non-nil only between issuing a
// challenge and consuming it. OTPExpiresAt and OTPAttempts bound the window
// in which the code is accepted.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	OTPCode      *string
	OTPExpiresAt *time.Time
	OTPAttempts  int
	IsVerified   bool
	AvatarURL    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail lower-cases and trims an email so it can act as the
// account's natural key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailDomain returns the part after the last '@', lower-cased, or "" when
// the address has no domain part.
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

// RoleForDomain maps an email domain to a role using the configured set of
// trusted teacher domains. Any unlisted domain yields a student account.
func RoleForDomain(domain string, teacherDomains map[string]bool) Role {
	if teacherDomains[strings.ToLower(domain)] {
		return RoleTeacher
	}
	return RoleStudent
}

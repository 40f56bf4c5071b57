// Package models defines the persistent and in-memory entities of the
// configuration editor backend.
package models

import (
	"strings"
	"time"
)

// Account is one row of the shared user store, keyed by normalized email.
// ConfigBlob, LastUploadAt and UploadCountToday are mutated only by the
// config service save path.
type Account struct {
	Email            string
	PasswordHash     []byte
	CreatedAt        time.Time
	LastUploadAt     *time.Time
	UploadCountToday int
	ConfigBlob       string
}

// NormalizeEmail trims surrounding whitespace and lowercases the address.
// All store lookups and inserts go through this form, which is what makes
// email uniqueness case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

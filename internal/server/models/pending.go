package models

import "time"

// PendingVerification is the in-flight registration attempt of one session.
// The password hash is held only in memory and is never persisted before the
// emailed code has been verified. A resend replaces Code and IssuedAt in
// place; the identity (email, hash) is unchanged.
type PendingVerification struct {
	Email        string
	PasswordHash []byte
	Code         string
	IssuedAt     time.Time
}

// CodeExpired reports whether the code window has passed at the given time.
// A code is accepted up to and including 60 seconds after it was issued.
func (p *PendingVerification) CodeExpired(now time.Time, ttl time.Duration) bool {
	return now.Sub(p.IssuedAt) > ttl
}

// ResendAvailable reports whether a new code may be requested: at most one
// outstanding code per cooldown window, measured on the wall clock.
func (p *PendingVerification) ResendAvailable(now time.Time, cooldown time.Duration) bool {
	return now.Sub(p.IssuedAt) > cooldown
}

// ResendWaitSeconds returns the whole seconds left until a resend is
// allowed, for UI countdowns. Zero means a resend is available now.
func (p *PendingVerification) ResendWaitSeconds(now time.Time, cooldown time.Duration) int {
	left := cooldown - now.Sub(p.IssuedAt)
	if left <= 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}

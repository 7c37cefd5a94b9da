package domain

import "time"

// DefaultSessionTTL is how long a login stays valid when no TTL is configured.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Session binds an opaque bearer token to an account until it expires.
type Session struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is no longer usable at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

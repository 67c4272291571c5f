// Package auth authenticates broker staff and real-estate agency users.
// Passwords are bcrypt hashes, sessions are HS256 JWTs, and the verified
// Session travels in the request context rather than in shared state.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role distinguishes broker staff from agency users.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleImobiliaria Role = "imobiliaria"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleImobiliaria
}

// Session is the verified identity of the caller.
type Session struct {
	UserID        uuid.UUID  `json:"user_id"`
	Email         string     `json:"email"`
	Role          Role       `json:"role"`
	ImobiliariaID *uuid.UUID `json:"imobiliaria_id,omitempty"`
	ExpiresAt     time.Time  `json:"expires_at"`
}

// IsAdmin reports whether the session belongs to broker staff.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// Owns reports whether the session may access a record belonging to agency.
// Admins own everything; agency users own only their agency's records.
func (s Session) Owns(agency *uuid.UUID) bool {
	if s.IsAdmin() {
		return true
	}
	return s.ImobiliariaID != nil && agency != nil && *s.ImobiliariaID == *agency
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

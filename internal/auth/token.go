package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type claims struct {
	Email         string `json:"email"`
	Role          Role   `json:"role"`
	ImobiliariaID string `json:"imobiliaria_id,omitempty"`
	jwt.RegisteredClaims
}

func (s *service) issueToken(u User) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)

	c := claims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	if u.ImobiliariaID != nil {
		c.ImobiliariaID = u.ImobiliariaID.String()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// VerifyToken validates a signed token and returns its session.
func (s *service) VerifyToken(token string) (Session, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return Session{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	if !c.Role.Valid() {
		return Session{}, fmt.Errorf("%w: bad role %q", ErrInvalidToken, c.Role)
	}

	session := Session{
		UserID:    userID,
		Email:     c.Email,
		Role:      c.Role,
		ExpiresAt: c.ExpiresAt.Time,
	}

	if c.ImobiliariaID != "" {
		agency, err := uuid.Parse(c.ImobiliariaID)
		if err != nil {
			return Session{}, fmt.Errorf("%w: bad imobiliaria_id", ErrInvalidToken)
		}
		session.ImobiliariaID = &agency
	}
	if session.Role == RoleImobiliaria && session.ImobiliariaID == nil {
		return Session{}, fmt.Errorf("%w: agency session without imobiliaria_id", ErrInvalidToken)
	}

	return session, nil
}

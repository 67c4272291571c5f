package auth

import (
	"errors"
	"net/http"
)

// Domain errors for authentication.
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrUnauthorized       = errors.New("auth: authentication required")
	ErrInvalidToken       = errors.New("auth: invalid or expired token")
	ErrForbidden          = errors.New("auth: forbidden")
	ErrNotFound           = errors.New("auth: user not found")
	ErrDuplicateEmail     = errors.New("auth: email already registered")
	ErrUnknownAgency      = errors.New("auth: unknown imobiliaria")
	ErrInvalidInvite      = errors.New("auth: invalid or expired invite")
	ErrWeakPassword       = errors.New("auth: password must be at least 8 characters")
	ErrValidation         = errors.New("auth: validation failed")
)

// MapHTTPStatus converts domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, ErrUnknownAgency),
		errors.Is(err, ErrInvalidInvite),
		errors.Is(err, ErrWeakPassword),
		errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

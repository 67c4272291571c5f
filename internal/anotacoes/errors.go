package anotacoes

import (
	"errors"
	"net/http"
)

var (
	ErrConflict   = errors.New("board changed since it was read")
	ErrTooLarge   = errors.New("board content too large")
	ErrValidation = errors.New("validation failed")
)

// MapHTTPStatus converts board errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

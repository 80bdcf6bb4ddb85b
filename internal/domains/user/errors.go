package user

import (
	"errors"
	"net/http"
)

// Repository-level errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("the email has already been taken")
)

// Service-level errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrNoFieldsToUpdate   = errors.New("no fields to update")
)

// ToErrorCode converts error to API error code
func ToErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return "USER_NOT_FOUND"
	case errors.Is(err, ErrEmailAlreadyExists):
		return "EMAIL_TAKEN"
	case errors.Is(err, ErrInvalidCredentials):
		return "INVALID_CREDENTIALS"
	case errors.Is(err, ErrTokenRevoked):
		return "TOKEN_REVOKED"
	case errors.Is(err, ErrNoFieldsToUpdate):
		return "NO_FIELDS_TO_UPDATE"
	default:
		return "INTERNAL_ERROR"
	}
}

// ToHTTPStatus converts error to HTTP status code
func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmailAlreadyExists), errors.Is(err, ErrNoFieldsToUpdate):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrTokenRevoked):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

package author

import (
	"errors"
	"net/http"
)

var (
	// Business Rule Errors
	ErrAuthorNotFound = errors.New("author not found")
	ErrAuthorHasBooks = errors.New("cannot delete author with associated books")
)

// ToErrorCode converts error to API error code
func ToErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrAuthorNotFound):
		return "AUTHOR_NOT_FOUND"
	case errors.Is(err, ErrAuthorHasBooks):
		return "AUTHOR_HAS_BOOKS"
	default:
		return "INTERNAL_ERROR"
	}
}

// ToHTTPStatus converts error to HTTP status code
func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrAuthorNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAuthorHasBooks):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

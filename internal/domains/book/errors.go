package book

import (
	"errors"
	"net/http"
)

var (
	ErrBookNotFound = errors.New("book not found")

	// ErrAuthorNotFound: author_id trong request không tồn tại
	ErrAuthorNotFound = errors.New("the selected author does not exist")

	ErrNoFieldsToUpdate = errors.New("no fields to update")
)

// ToErrorCode converts error to API error code
func ToErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrBookNotFound):
		return "BOOK_NOT_FOUND"
	case errors.Is(err, ErrAuthorNotFound):
		return "AUTHOR_NOT_FOUND"
	case errors.Is(err, ErrNoFieldsToUpdate):
		return "NO_FIELDS_TO_UPDATE"
	default:
		return "INTERNAL_ERROR"
	}
}

// ToHTTPStatus converts error to HTTP status code
func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrBookNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAuthorNotFound), errors.Is(err, ErrNoFieldsToUpdate):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

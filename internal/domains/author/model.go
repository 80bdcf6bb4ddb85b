package author

import (
	"time"

	"github.com/google/uuid"
)

// Author là entity tác giả.
// BooksCount là giá trị cache của số sách đang tham chiếu tới tác giả,
// chỉ được thay đổi bởi bookcount.Maintainer.
type Author struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	BooksCount int       `json:"books_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToResponse converts Author to AuthorResponse
func (a *Author) ToResponse() AuthorResponse {
	return AuthorResponse{
		ID:         a.ID,
		Name:       a.Name,
		BooksCount: a.BooksCount,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

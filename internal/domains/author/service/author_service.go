package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"library-api/internal/domains/author"
	"library-api/internal/domains/book"
)

// BookLister là phần của book repository mà author service cần
type BookLister interface {
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]book.Book, error)
}

type authorService struct {
	repo  author.Repository
	books BookLister
}

// NewAuthorService tạo service instance, inject repository qua constructor
func NewAuthorService(repo author.Repository, books BookLister) author.Service {
	return &authorService{
		repo:  repo,
		books: books,
	}
}

func (s *authorService) Create(ctx context.Context, req author.CreateAuthorRequest) (*author.Author, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, strings.TrimSpace(req.Name))
	if err != nil {
		return nil, fmt.Errorf("create author: %w", err)
	}
	return created, nil
}

func (s *authorService) GetByID(ctx context.Context, id uuid.UUID) (*author.Author, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *authorService) GetDetail(ctx context.Context, id uuid.UUID) (*author.AuthorDetail, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	books, err := s.books.ListByAuthor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list books of author: %w", err)
	}

	detail := &author.AuthorDetail{
		AuthorResponse: a.ToResponse(),
		Books:          make([]book.BookResponse, 0, len(books)),
	}
	for i := range books {
		detail.Books = append(detail.Books, books[i].ToResponse())
	}
	return detail, nil
}

func (s *authorService) List(ctx context.Context, filter author.AuthorFilter) ([]author.Author, int64, error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

func (s *authorService) Update(ctx context.Context, id uuid.UUID, req author.UpdateAuthorRequest) (*author.Author, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.repo.UpdateName(ctx, id, strings.TrimSpace(req.Name))
}

// Delete checks the live book count, not the cached books_count.
// The FK restriction still guards the race with a concurrent insert.
func (s *authorService) Delete(ctx context.Context, id uuid.UUID) error {
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return author.ErrAuthorNotFound
	}

	n, err := s.repo.CountBooks(ctx, id)
	if err != nil {
		return fmt.Errorf("count author books: %w", err)
	}
	if n > 0 {
		return author.ErrAuthorHasBooks
	}

	return s.repo.Delete(ctx, id)
}

package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"library-api/internal/domains/book"
)

type bookService struct {
	repo    book.Repository
	authors book.AuthorChecker
}

// NewBookService tạo service instance
func NewBookService(repo book.Repository, authors book.AuthorChecker) book.Service {
	return &bookService{
		repo:    repo,
		authors: authors,
	}
}

// ========================================
// CREATE
// ========================================

func (s *bookService) Create(ctx context.Context, req book.CreateBookRequest) (*book.BookDetail, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	b := req.ToBook()
	if err := s.ensureAuthor(ctx, b.AuthorID); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, b)
	if err != nil {
		return nil, err
	}

	// Đọc lại kèm author, books_count đã được maintainer cập nhật
	return s.repo.GetDetail(ctx, created.ID)
}

// ========================================
// READ
// ========================================

func (s *bookService) GetByID(ctx context.Context, id uuid.UUID) (*book.BookDetail, error) {
	return s.repo.GetDetail(ctx, id)
}

func (s *bookService) List(ctx context.Context, filter book.BookFilter) ([]book.BookDetail, int64, error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// ========================================
// UPDATE
// ========================================

func (s *bookService) Update(ctx context.Context, id uuid.UUID, req book.UpdateBookRequest) (*book.BookDetail, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	fields := req.ToFields()
	if fields.IsEmpty() {
		return nil, book.ErrNoFieldsToUpdate
	}

	if fields.AuthorID != nil {
		if err := s.ensureAuthor(ctx, *fields.AuthorID); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	return s.repo.GetDetail(ctx, updated.ID)
}

// ========================================
// DELETE
// ========================================

func (s *bookService) Delete(ctx context.Context, id uuid.UUID) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return book.ErrBookNotFound
	}
	return nil
}

func (s *bookService) ensureAuthor(ctx context.Context, authorID uuid.UUID) error {
	exists, err := s.authors.ExistsByID(ctx, authorID)
	if err != nil {
		return fmt.Errorf("check author exists: %w", err)
	}
	if !exists {
		return book.ErrAuthorNotFound
	}
	return nil
}

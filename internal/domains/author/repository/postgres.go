package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"library-api/internal/domains/author"
	"library-api/pkg/cache"
)

// postgresRepository implements author.Repository
// Uses pgxpool for PostgreSQL and Redis for caching single authors
type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

// NewPostgresRepository creates a new author repository instance
func NewPostgresRepository(pool *pgxpool.Pool, cache cache.Cache) author.Repository {
	return &postgresRepository{
		pool:  pool,
		cache: cache,
	}
}

const (
	authorCacheKeyPrefix = "author:"
	cacheTTL             = 15 * time.Minute

	authorColumns = "id, name, books_count, created_at, updated_at"
)

func cacheKey(id uuid.UUID) string {
	return authorCacheKeyPrefix + id.String()
}

func scanAuthor(row pgx.Row) (*author.Author, error) {
	var a author.Author
	if err := row.Scan(&a.ID, &a.Name, &a.BooksCount, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts new author, books_count starts at 0
func (r *postgresRepository) Create(ctx context.Context, name string) (*author.Author, error) {
	query := `
        INSERT INTO authors (name, books_count)
        VALUES ($1, 0)
        RETURNING ` + authorColumns

	created, err := scanAuthor(r.pool.QueryRow(ctx, query, name))
	if err != nil {
		return nil, fmt.Errorf("failed to create author: %w", err)
	}
	return created, nil
}

// GetByID retrieves author by UUID with caching
func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*author.Author, error) {
	var cached author.Author
	if hit, err := r.cache.Get(ctx, cacheKey(id), &cached); err == nil && hit {
		return &cached, nil
	}

	query := `SELECT ` + authorColumns + ` FROM authors WHERE id = $1`
	a, err := scanAuthor(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, author.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to get author by id: %w", err)
	}

	// Cache failure không critical
	if err := r.cache.Set(ctx, cacheKey(id), a, cacheTTL); err != nil {
		log.Warn().Err(err).Str("author_id", id.String()).Msg("cache author failed")
	}

	return a, nil
}

// List retrieves paginated list with search + sorting (query build bằng goqu)
func (r *postgresRepository) List(ctx context.Context, filter author.AuthorFilter) ([]author.Author, int64, error) {
	filter.Normalize()

	base := goqu.Dialect("postgres").From("authors")
	if filter.Search != "" {
		base = base.Where(goqu.C("name").ILike("%" + filter.Search + "%"))
	}

	order := goqu.I(filter.SortBy).Desc()
	if filter.Order == "asc" {
		order = goqu.I(filter.SortBy).Asc()
	}

	query, args, err := base.
		Select("id", "name", "books_count", "created_at", "updated_at").
		Order(order, goqu.I("id").Asc()).
		Limit(uint(filter.Limit)).
		Offset(uint(filter.Offset)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build author list query: %w", err)
	}

	authors, err := r.queryAuthors(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	countQuery, countArgs, err := base.Select(goqu.COUNT("*")).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build author count query: %w", err)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count authors: %w", err)
	}

	return authors, total, nil
}

func (r *postgresRepository) ListAll(ctx context.Context) ([]author.Author, error) {
	return r.queryAuthors(ctx, `SELECT `+authorColumns+` FROM authors ORDER BY name, id`)
}

func (r *postgresRepository) queryAuthors(ctx context.Context, query string, args ...interface{}) ([]author.Author, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query authors: %w", err)
	}
	defer rows.Close()

	authors := []author.Author{}
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		authors = append(authors, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating authors: %w", err)
	}
	return authors, nil
}

func (r *postgresRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) (*author.Author, error) {
	query := `
        UPDATE authors
        SET name = $1, updated_at = NOW()
        WHERE id = $2
        RETURNING ` + authorColumns

	updated, err := scanAuthor(r.pool.QueryRow(ctx, query, name, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, author.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to update author: %w", err)
	}

	r.invalidate(ctx, id)
	return updated, nil
}

// Delete removes author by ID. FK books.author_id is ON DELETE RESTRICT.
func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return author.ErrAuthorHasBooks
		}
		return fmt.Errorf("failed to delete author: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return author.ErrAuthorNotFound
	}

	r.invalidate(ctx, id)
	return nil
}

func (r *postgresRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM authors WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check author exists: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM authors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list author ids: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan author id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ========================================
// BOOKS_COUNT MAINTENANCE
// ========================================

func (r *postgresRepository) CountBooks(ctx context.Context, authorID uuid.UUID) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM books WHERE author_id = $1`, authorID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return n, nil
}

func (r *postgresRepository) GetBooksCount(ctx context.Context, authorID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT books_count FROM authors WHERE id = $1`, authorID).Scan(&n)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, author.ErrAuthorNotFound
		}
		return 0, fmt.Errorf("failed to read books_count: %w", err)
	}
	return n, nil
}

func (r *postgresRepository) IncrementBooksCount(ctx context.Context, authorID uuid.UUID) error {
	return r.execCounter(ctx, authorID, `UPDATE authors SET books_count = books_count + 1 WHERE id = $1`, authorID)
}

func (r *postgresRepository) DecrementBooksCount(ctx context.Context, authorID uuid.UUID) error {
	return r.execCounter(ctx, authorID, `UPDATE authors SET books_count = books_count - 1 WHERE id = $1`, authorID)
}

func (r *postgresRepository) SetBooksCount(ctx context.Context, authorID uuid.UUID, count int) error {
	return r.execCounter(ctx, authorID, `UPDATE authors SET books_count = $2 WHERE id = $1`, authorID, count)
}

func (r *postgresRepository) execCounter(ctx context.Context, authorID uuid.UUID, query string, args ...interface{}) error {
	cmdTag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update books_count: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return author.ErrAuthorNotFound
	}

	r.invalidate(ctx, authorID)
	return nil
}

func (r *postgresRepository) invalidate(ctx context.Context, id uuid.UUID) {
	if err := r.cache.Delete(ctx, cacheKey(id)); err != nil {
		log.Warn().Err(err).Str("author_id", id.String()).Msg("invalidate author cache failed")
	}
}

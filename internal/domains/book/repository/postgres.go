package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-api/internal/domains/book"
	"library-api/pkg/database"
)

// postgresRepository - Raw SQL + goqu with pgxpool.
// Mọi mutation đã commit đều được báo cho notifier.
type postgresRepository struct {
	pool     *pgxpool.Pool
	notifier book.Notifier
}

// NewPostgresRepository - Constructor. notifier nil = không ai nghe.
func NewPostgresRepository(pool *pgxpool.Pool, notifier book.Notifier) book.Repository {
	if notifier == nil {
		notifier = book.NopNotifier
	}
	return &postgresRepository{
		pool:     pool,
		notifier: notifier,
	}
}

const (
	bookColumns = "id, title, publication_year, author_id, created_at, updated_at"

	detailSelect = `
        SELECT b.id, b.title, b.publication_year, b.author_id, b.created_at, b.updated_at,
               a.id, a.name, a.books_count
        FROM books b
        JOIN authors a ON a.id = b.author_id`

	fkViolation = "23503"
)

func scanBook(row pgx.Row) (*book.Book, error) {
	var b book.Book
	if err := row.Scan(&b.ID, &b.Title, &b.PublicationYear, &b.AuthorID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func scanDetail(row pgx.Row) (*book.BookDetail, error) {
	var d book.BookDetail
	err := row.Scan(
		&d.ID, &d.Title, &d.PublicationYear, &d.AuthorID, &d.CreatedAt, &d.UpdatedAt,
		&d.Author.ID, &d.Author.Name, &d.Author.BooksCount,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == fkViolation
}

// ========================= CREATE =====================

func (r *postgresRepository) Create(ctx context.Context, b *book.Book) (*book.Book, error) {
	query := `
        INSERT INTO books (title, publication_year, author_id)
        VALUES ($1, $2, $3)
        RETURNING ` + bookColumns

	created, err := scanBook(r.pool.QueryRow(ctx, query, b.Title, b.PublicationYear, b.AuthorID))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, book.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	r.notifier.Notify(ctx, book.Created{Book: *created})
	return created, nil
}

// ========================= READ =====================

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*book.Book, error) {
	b, err := scanBook(r.pool.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, book.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book by id: %w", err)
	}
	return b, nil
}

func (r *postgresRepository) GetDetail(ctx context.Context, id uuid.UUID) (*book.BookDetail, error) {
	d, err := scanDetail(r.pool.QueryRow(ctx, detailSelect+` WHERE b.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, book.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book detail: %w", err)
	}
	return d, nil
}

// List - filter theo search (title) và author, sort + paginate bằng goqu
func (r *postgresRepository) List(ctx context.Context, filter book.BookFilter) ([]book.BookDetail, int64, error) {
	filter.Normalize()

	base := goqu.Dialect("postgres").
		From(goqu.T("books").As("b")).
		Join(goqu.T("authors").As("a"), goqu.On(goqu.I("a.id").Eq(goqu.I("b.author_id"))))

	if filter.Search != "" {
		base = base.Where(goqu.I("b.title").ILike("%" + filter.Search + "%"))
	}
	if filter.AuthorID != nil {
		base = base.Where(goqu.I("b.author_id").Eq(filter.AuthorID.String()))
	}

	sortCol := goqu.I("b." + filter.SortBy)
	order := sortCol.Desc()
	if filter.Order == "asc" {
		order = sortCol.Asc()
	}

	query, args, err := base.
		Select(
			"b.id", "b.title", "b.publication_year", "b.author_id", "b.created_at", "b.updated_at",
			"a.id", "a.name", "a.books_count",
		).
		Order(order, goqu.I("b.id").Asc()).
		Limit(uint(filter.Limit)).
		Offset(uint(filter.Offset)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build book list query: %w", err)
	}

	books, err := r.queryDetails(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	countQuery, countArgs, err := base.Select(goqu.COUNT("*")).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build book count query: %w", err)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	return books, total, nil
}

func (r *postgresRepository) ListAll(ctx context.Context) ([]book.BookDetail, error) {
	return r.queryDetails(ctx, detailSelect+` ORDER BY b.title, b.id`)
}

func (r *postgresRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]book.Book, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+bookColumns+` FROM books WHERE author_id = $1 ORDER BY publication_year, title`, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query books by author: %w", err)
	}
	defer rows.Close()

	books := []book.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating books: %w", err)
	}
	return books, nil
}

func (r *postgresRepository) queryDetails(ctx context.Context, query string, args ...interface{}) ([]book.BookDetail, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	books := []book.BookDetail{}
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating books: %w", err)
	}
	return books, nil
}

// ========================= UPDATE =====================

// Update khóa row cũ (FOR UPDATE) để biết author trước khi đổi,
// notification chỉ được gửi sau khi commit.
func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, fields book.UpdateFields) (*book.Book, error) {
	type change struct {
		before book.Book
		after  book.Book
	}

	res, err := database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (change, error) {
		before, err := scanBook(tx.QueryRow(ctx,
			`SELECT `+bookColumns+` FROM books WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return change{}, book.ErrBookNotFound
			}
			return change{}, fmt.Errorf("failed to lock book: %w", err)
		}

		if fields.IsEmpty() {
			return change{before: *before, after: *before}, nil
		}

		query, args, err := buildUpdateQuery(id, fields)
		if err != nil {
			return change{}, err
		}

		after, err := scanBook(tx.QueryRow(ctx, query, args...))
		if err != nil {
			if isForeignKeyViolation(err) {
				return change{}, book.ErrAuthorNotFound
			}
			return change{}, fmt.Errorf("failed to update book: %w", err)
		}
		return change{before: *before, after: *after}, nil
	})
	if err != nil {
		return nil, err
	}

	if n, ok := book.UpdateNotification(res.before, res.after); ok {
		r.notifier.Notify(ctx, n)
	}
	return &res.after, nil
}

func buildUpdateQuery(id uuid.UUID, fields book.UpdateFields) (string, []interface{}, error) {
	record := goqu.Record{"updated_at": goqu.L("NOW()")}
	if fields.Title != nil {
		record["title"] = *fields.Title
	}
	if fields.PublicationYear != nil {
		record["publication_year"] = *fields.PublicationYear
	}
	if fields.AuthorID != nil {
		record["author_id"] = fields.AuthorID.String()
	}

	query, args, err := goqu.Dialect("postgres").
		Update("books").
		Set(record).
		Where(goqu.C("id").Eq(id.String())).
		Returning("id", "title", "publication_year", "author_id", "created_at", "updated_at").
		Prepared(true).
		ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("build book update query: %w", err)
	}
	return query, args, nil
}

// ========================= DELETE =====================

// Delete - RETURNING để notification mang trạng thái trước khi xóa
func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted, err := scanBook(r.pool.QueryRow(ctx, `DELETE FROM books WHERE id = $1 RETURNING `+bookColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete book: %w", err)
	}

	r.notifier.Notify(ctx, book.Deleted{Book: *deleted})
	return true, nil
}

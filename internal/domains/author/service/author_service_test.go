package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-api/internal/domains/author"
	"library-api/internal/domains/author/service"
	"library-api/internal/domains/book"
	"library-api/internal/domains/bookcount"
	"library-api/internal/testutil"
)

func setup() (*testutil.MemoryLibrary, author.Service, book.Repository) {
	lib := testutil.NewMemoryLibrary()
	authors := lib.Authors()
	books := lib.Books(bookcount.NewMaintainer(authors))
	return lib, service.NewAuthorService(authors, books), books
}

func TestCreateAuthor(t *testing.T) {
	_, svc, _ := setup()

	created, err := svc.Create(context.Background(), author.CreateAuthorRequest{Name: "  J.R.R. Tolkien "})
	require.NoError(t, err)
	assert.Equal(t, "J.R.R. Tolkien", created.Name)
	assert.Zero(t, created.BooksCount)
}

func TestCreateAuthorRejectsBlankName(t *testing.T) {
	_, svc, _ := setup()

	_, err := svc.Create(context.Background(), author.CreateAuthorRequest{Name: "   "})
	require.Error(t, err)
}

func TestGetDetailIncludesBooks(t *testing.T) {
	ctx := context.Background()
	lib, svc, books := setup()
	tolkien := lib.SeedAuthor("Tolkien", 0)

	_, err := books.Create(ctx, &book.Book{Title: "The Hobbit", PublicationYear: 1937, AuthorID: tolkien.ID})
	require.NoError(t, err)

	detail, err := svc.GetDetail(ctx, tolkien.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.BooksCount)
	require.Len(t, detail.Books, 1)
	assert.Equal(t, "The Hobbit", detail.Books[0].Title)
}

func TestGetDetailUnknownAuthor(t *testing.T) {
	_, svc, _ := setup()

	_, err := svc.GetDetail(context.Background(), uuid.New())
	assert.ErrorIs(t, err, author.ErrAuthorNotFound)
}

func TestUpdateAuthorName(t *testing.T) {
	lib, svc, _ := setup()
	a := lib.SeedAuthor("Old", 0)

	updated, err := svc.Update(context.Background(), a.ID, author.UpdateAuthorRequest{Name: "New"})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
}

func TestDeleteAuthorWithBooksIsRejected(t *testing.T) {
	ctx := context.Background()
	lib, svc, books := setup()
	a := lib.SeedAuthor("Tolkien", 0)
	b, err := books.Create(ctx, &book.Book{Title: "The Hobbit", PublicationYear: 1937, AuthorID: a.ID})
	require.NoError(t, err)

	err = svc.Delete(ctx, a.ID)
	assert.ErrorIs(t, err, author.ErrAuthorHasBooks)
	assert.True(t, lib.HasAuthor(a.ID))
	assert.True(t, lib.HasBook(b.ID))
}

func TestDeleteAuthorIgnoresStaleCounter(t *testing.T) {
	lib, svc, _ := setup()
	a := lib.SeedAuthor("Drifted", 3)

	require.NoError(t, svc.Delete(context.Background(), a.ID))
	assert.False(t, lib.HasAuthor(a.ID))
}

func TestDeleteAuthorAfterLastBookRemoved(t *testing.T) {
	ctx := context.Background()
	lib, svc, books := setup()
	a := lib.SeedAuthor("Tolkien", 0)
	b, err := books.Create(ctx, &book.Book{Title: "The Hobbit", PublicationYear: 1937, AuthorID: a.ID})
	require.NoError(t, err)

	removed, err := books.Delete(ctx, b.ID)
	require.NoError(t, err)
	require.True(t, removed)
	assert.Equal(t, 0, lib.StoredCount(a.ID))

	require.NoError(t, svc.Delete(ctx, a.ID))
	assert.False(t, lib.HasAuthor(a.ID))
}

func TestDeleteUnknownAuthor(t *testing.T) {
	_, svc, _ := setup()

	err := svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, author.ErrAuthorNotFound)
}

func TestListAuthorsPaginates(t *testing.T) {
	lib, svc, _ := setup()
	for _, name := range []string{"Austen", "Borges", "Calvino"} {
		lib.SeedAuthor(name, 0)
	}

	got, total, err := svc.List(context.Background(), author.AuthorFilter{Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, got, 2)
}

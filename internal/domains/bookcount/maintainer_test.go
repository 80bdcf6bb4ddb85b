package bookcount_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-api/internal/domains/author"
	"library-api/internal/domains/book"
	"library-api/internal/domains/bookcount"
	"library-api/internal/testutil"
)

type fixture struct {
	lib        *testutil.MemoryLibrary
	maintainer *bookcount.Maintainer
	books      *testutil.MemoryBooks
	recorder   *testutil.NotificationRecorder
}

func newFixture() *fixture {
	lib := testutil.NewMemoryLibrary()
	m := bookcount.NewMaintainer(lib.Authors())
	rec := testutil.NewNotificationRecorder(m)
	return &fixture{
		lib:        lib,
		maintainer: m,
		books:      lib.Books(rec),
		recorder:   rec,
	}
}

func TestCreateIncrementsCount(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	tolkien := f.lib.SeedAuthor("Tolkien", 0)

	created, err := f.books.Create(ctx, &book.Book{Title: "The Hobbit", PublicationYear: 1937, AuthorID: tolkien.ID})
	require.NoError(t, err)

	assert.Equal(t, 1, f.lib.StoredCount(tolkien.ID))
	require.Len(t, f.recorder.All(), 1)
	assert.Equal(t, book.Created{Book: *created}, f.recorder.All()[0])
}

func TestReassignmentMovesCount(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.lib.SeedAuthor("A", 0)
	b := f.lib.SeedAuthor("B", 0)

	created, err := f.books.Create(ctx, &book.Book{Title: "Moved", PublicationYear: 2001, AuthorID: a.ID})
	require.NoError(t, err)
	require.Equal(t, 1, f.lib.StoredCount(a.ID))
	require.Equal(t, 0, f.lib.StoredCount(b.ID))

	_, err = f.books.Update(ctx, created.ID, book.UpdateFields{AuthorID: &b.ID})
	require.NoError(t, err)

	assert.Equal(t, 0, f.lib.StoredCount(a.ID))
	assert.Equal(t, 1, f.lib.StoredCount(b.ID))

	last := f.recorder.All()[len(f.recorder.All())-1]
	changed, ok := last.(book.AuthorChanged)
	require.True(t, ok)
	assert.Equal(t, a.ID, changed.OldAuthorID)
	assert.Equal(t, b.ID, changed.Book.AuthorID)
}

func TestUpdateWithoutAuthorChangeEmitsNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.lib.SeedAuthor("A", 0)
	created, err := f.books.Create(ctx, &book.Book{Title: "Draft", PublicationYear: 1999, AuthorID: a.ID})
	require.NoError(t, err)
	f.recorder.Reset()

	title := "Final"
	sameAuthor := a.ID
	_, err = f.books.Update(ctx, created.ID, book.UpdateFields{Title: &title, AuthorID: &sameAuthor})
	require.NoError(t, err)

	assert.Empty(t, f.recorder.All())
	assert.Equal(t, 1, f.lib.StoredCount(a.ID))
}

func TestDeleteDecrementsAndUnblocksAuthorDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	authors := f.lib.Authors()
	a := f.lib.SeedAuthor("A", 0)

	created, err := f.books.Create(ctx, &book.Book{Title: "Only", PublicationYear: 1980, AuthorID: a.ID})
	require.NoError(t, err)

	err = authors.Delete(ctx, a.ID)
	assert.ErrorIs(t, err, author.ErrAuthorHasBooks)
	assert.True(t, f.lib.HasAuthor(a.ID))
	assert.True(t, f.lib.HasBook(created.ID))

	deleted, err := f.books.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, 0, f.lib.StoredCount(a.ID))

	deletedNotification, ok := f.recorder.All()[len(f.recorder.All())-1].(book.Deleted)
	require.True(t, ok)
	assert.Equal(t, "Only", deletedNotification.Book.Title)

	require.NoError(t, authors.Delete(ctx, a.ID))
	assert.False(t, f.lib.HasAuthor(a.ID))
}

func TestDeleteMissingBookEmitsNothing(t *testing.T) {
	f := newFixture()

	deleted, err := f.books.Delete(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Empty(t, f.recorder.All())
}

func TestVerifyCorrectsDrift(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.lib.SeedAuthor("A", 5)
	f.lib.SeedBook("One", 2000, a.ID)
	f.lib.SeedBook("Two", 2001, a.ID)

	correction, err := f.maintainer.Verify(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, correction)
	assert.Equal(t, bookcount.Correction{AuthorID: a.ID, Stored: 5, Actual: 2}, *correction)
	assert.Equal(t, 2, f.lib.StoredCount(a.ID))

	again, err := f.maintainer.Verify(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestVerifyMissingAuthorIsNoop(t *testing.T) {
	f := newFixture()

	correction, err := f.maintainer.Verify(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, correction)
}

func TestRecalculateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.lib.SeedAuthor("A", 9)
	f.lib.SeedBook("One", 2000, a.ID)

	first, err := f.maintainer.Recalculate(ctx, a.ID)
	require.NoError(t, err)
	second, err := f.maintainer.Recalculate(ctx, a.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.lib.StoredCount(a.ID))
}

func TestDecrementIsNotClamped(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.lib.SeedAuthor("A", 0)

	require.NoError(t, f.maintainer.Decrement(ctx, a.ID))
	assert.Equal(t, -1, f.lib.StoredCount(a.ID))

	correction, err := f.maintainer.Verify(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, correction)
	assert.Equal(t, 0, f.lib.StoredCount(a.ID))
}

func TestApplyUnknownAction(t *testing.T) {
	f := newFixture()
	a := f.lib.SeedAuthor("A", 0)

	err := f.maintainer.Apply(context.Background(), a.ID, bookcount.Action("double"))
	assert.Error(t, err)
}

func TestVerifyAllCorrectsEveryAuthor(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.lib.SeedAuthor("A", 3)
	b := f.lib.SeedAuthor("B", 1)
	c := f.lib.SeedAuthor("C", 0)
	f.lib.SeedBook("A1", 2000, a.ID)
	f.lib.SeedBook("B1", 2000, b.ID)

	report, err := f.maintainer.VerifyAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Checked)
	assert.Len(t, report.Corrections, 1)
	assert.Empty(t, report.Failures)
	assert.Equal(t, 1, f.lib.StoredCount(a.ID))
	assert.Equal(t, 1, f.lib.StoredCount(b.ID))
	assert.Equal(t, 0, f.lib.StoredCount(c.ID))
}

func TestVerifyAllContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	broken := f.lib.SeedAuthor("Broken", 7)
	drifted := f.lib.SeedAuthor("Drifted", 4)
	f.lib.InjectFault("GetBooksCount", broken.ID, errors.New("connection reset"))

	report, err := f.maintainer.VerifyAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Checked)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, broken.ID, report.Failures[0].AuthorID)
	assert.Contains(t, report.Failures[0].Error, "connection reset")
	require.Len(t, report.Corrections, 1)
	assert.Equal(t, drifted.ID, report.Corrections[0].AuthorID)
	assert.Equal(t, 0, f.lib.StoredCount(drifted.ID))
	assert.Equal(t, 7, f.lib.StoredCount(broken.ID))
}

func TestVerifyAllListFailure(t *testing.T) {
	f := newFixture()
	f.lib.InjectFault("ListIDs", uuid.Nil, errors.New("db down"))

	report, err := f.maintainer.VerifyAll(context.Background())
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestVerifyAllStopsOnCancelledContext(t *testing.T) {
	f := newFixture()
	f.lib.SeedAuthor("A", 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.maintainer.VerifyAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Equal(t, 0, report.Checked)
}

func TestHandleVerifiesEvenWhenAdjustmentFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.lib.SeedAuthor("A", 0)
	seeded := f.lib.SeedBook("Seeded", 1990, a.ID)
	f.lib.InjectFault("IncrementBooksCount", a.ID, errors.New("lock timeout"))

	err := f.maintainer.Handle(ctx, book.Created{Book: *seeded})
	assert.ErrorContains(t, err, "lock timeout")
	assert.Equal(t, 1, f.lib.StoredCount(a.ID))
}

func TestNotifySwallowsMaintenanceFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.lib.SeedAuthor("A", 0)
	f.lib.InjectFault("IncrementBooksCount", uuid.Nil, errors.New("lock timeout"))
	f.lib.InjectFault("SetBooksCount", uuid.Nil, errors.New("lock timeout"))

	created, err := f.books.Create(ctx, &book.Book{Title: "Still saved", PublicationYear: 2010, AuthorID: a.ID})
	require.NoError(t, err)
	assert.True(t, f.lib.HasBook(created.ID))
	assert.Equal(t, 0, f.lib.StoredCount(a.ID))

	f.lib.ClearFaults()
	report, err := f.maintainer.VerifyAll(ctx)
	require.NoError(t, err)
	assert.Len(t, report.Corrections, 1)
	assert.Equal(t, 1, f.lib.StoredCount(a.ID))
}

func TestAuthorChangedToNilSkipsIncrement(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	old := f.lib.SeedAuthor("Old", 1)

	err := f.maintainer.Handle(ctx, book.AuthorChanged{Book: book.Book{ID: uuid.New()}, OldAuthorID: old.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, f.lib.StoredCount(old.ID))
}

func TestCountsMatchAcrossMixedOperations(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	authors := []*author.Author{
		f.lib.SeedAuthor("A", 0),
		f.lib.SeedAuthor("B", 0),
		f.lib.SeedAuthor("C", 0),
	}

	var ids []uuid.UUID
	for i := 0; i < 9; i++ {
		b, err := f.books.Create(ctx, &book.Book{Title: "T", PublicationYear: 2000, AuthorID: authors[i%3].ID})
		require.NoError(t, err)
		ids = append(ids, b.ID)
	}
	for i, id := range ids[:4] {
		target := authors[(i+1)%3].ID
		_, err := f.books.Update(ctx, id, book.UpdateFields{AuthorID: &target})
		require.NoError(t, err)
	}
	for _, id := range ids[6:] {
		_, err := f.books.Delete(ctx, id)
		require.NoError(t, err)
	}

	for _, a := range authors {
		assert.Equal(t, f.lib.ActualCount(a.ID), f.lib.StoredCount(a.ID), a.Name)
	}
}

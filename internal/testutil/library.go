package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"library-api/internal/domains/author"
	"library-api/internal/domains/book"
)

// MemoryLibrary is an in-memory authors+books store for unit tests.
// Authors() satisfies author.Repository (and so bookcount.Store);
// Books() satisfies book.Repository and emits notifications like the
// postgres implementation does.
type MemoryLibrary struct {
	mu      sync.Mutex
	authors map[uuid.UUID]*author.Author
	books   map[uuid.UUID]*book.Book
	faults  map[string]error
	now     func() time.Time
}

func NewMemoryLibrary() *MemoryLibrary {
	return &MemoryLibrary{
		authors: make(map[uuid.UUID]*author.Author),
		books:   make(map[uuid.UUID]*book.Book),
		faults:  make(map[string]error),
		now:     time.Now,
	}
}

// InjectFault makes method fail with err for the given author.
// uuid.Nil matches every author.
func (l *MemoryLibrary) InjectFault(method string, authorID uuid.UUID, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.faults[method+":"+authorID.String()] = err
}

func (l *MemoryLibrary) ClearFaults() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.faults = make(map[string]error)
}

func (l *MemoryLibrary) fault(method string, authorID uuid.UUID) error {
	if err, ok := l.faults[method+":"+authorID.String()]; ok {
		return err
	}
	return l.faults[method+":"+uuid.Nil.String()]
}

// SeedAuthor inserts an author with the given stored counter
func (l *MemoryLibrary) SeedAuthor(name string, booksCount int) *author.Author {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	a := &author.Author{ID: uuid.New(), Name: name, BooksCount: booksCount, CreatedAt: now, UpdatedAt: now}
	l.authors[a.ID] = a
	cp := *a
	return &cp
}

// SeedBook inserts a book row without emitting a notification
func (l *MemoryLibrary) SeedBook(title string, year int, authorID uuid.UUID) *book.Book {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	b := &book.Book{ID: uuid.New(), Title: title, PublicationYear: year, AuthorID: authorID, CreatedAt: now, UpdatedAt: now}
	l.books[b.ID] = b
	cp := *b
	return &cp
}

// SetStoredCount overwrites an author's counter, simulating drift
func (l *MemoryLibrary) SetStoredCount(authorID uuid.UUID, n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if a, ok := l.authors[authorID]; ok {
		a.BooksCount = n
	}
}

// StoredCount returns the author's counter, or -1 when the author is missing
func (l *MemoryLibrary) StoredCount(authorID uuid.UUID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if a, ok := l.authors[authorID]; ok {
		return a.BooksCount
	}
	return -1
}

// ActualCount counts book rows referencing the author
func (l *MemoryLibrary) ActualCount(authorID uuid.UUID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.countLocked(authorID)
}

func (l *MemoryLibrary) countLocked(authorID uuid.UUID) int {
	n := 0
	for _, b := range l.books {
		if b.AuthorID == authorID {
			n++
		}
	}
	return n
}

// HasBook reports whether the book row exists
func (l *MemoryLibrary) HasBook(id uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.books[id]
	return ok
}

// HasAuthor reports whether the author row exists
func (l *MemoryLibrary) HasAuthor(id uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.authors[id]
	return ok
}

func (l *MemoryLibrary) Authors() *MemoryAuthors { return &MemoryAuthors{lib: l} }

func (l *MemoryLibrary) Books(notifier book.Notifier) *MemoryBooks {
	if notifier == nil {
		notifier = book.NopNotifier
	}
	return &MemoryBooks{lib: l, notifier: notifier}
}

// ========================================
// AUTHORS
// ========================================

type MemoryAuthors struct {
	lib *MemoryLibrary
}

var _ author.Repository = (*MemoryAuthors)(nil)

func (r *MemoryAuthors) Create(_ context.Context, name string) (*author.Author, error) {
	return r.lib.SeedAuthor(name, 0), nil
}

func (r *MemoryAuthors) GetByID(_ context.Context, id uuid.UUID) (*author.Author, error) {
	r.lib.mu.Lock()
	defer r.lib.mu.Unlock()
	if err := r.lib.fault("GetByID", id); err != nil {
		return nil, err
	}
	a, ok := r.lib.authors[id]
	if !ok {
		return nil, author.ErrAuthorNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *MemoryAuthors) List(ctx context.Context, filter author.AuthorFilter) ([]author.Author, int64, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	var matched []author.Author
	for _, a := range all {
		if filter.Search == "" || strings.Contains(strings.ToLower(a.Name), strings.ToLower(filter.Search)) {
			matched = append(matched, a)
		}
	}
	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return []author.Author{}, total, nil
	}
	end := len(matched)
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}
	return matched[filter.Offset:end], total, nil
}

func (r *MemoryAuthors) ListAll(_ context.Context) ([]author.Author, error) {
	r.lib.mu.Lock()
	defer r.lib.mu.Unlock()
	out := make([]author.Author, 0, len(r.lib.authors))
	for _, a := range r.lib.authors {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryAuthors) UpdateName(_ context.Context, id uuid.UUID, name string) (*author.Author, error) {
	r.lib.mu.Lock()
	defer r.lib.mu.Unlock()
	a, ok := r.lib.authors[id]
	if !ok {
		return nil, author.ErrAuthorNotFound
	}
	a.Name = name
	a.UpdatedAt = r.lib.now()
	cp := *a
	return &cp, nil
}

func (r *MemoryAuthors) Delete(_ context.Context, id uuid.UUID) error {
	r.lib.mu.Lock()
	defer r.lib.mu.Unlock()
	if _, ok := r.lib.authors[id]; !ok {
		return author.ErrAuthorNotFound
	}
	// mirrors ON DELETE RESTRICT
	if r.lib.countLocked(id) > 0 {
		return author.ErrAuthorHasBooks
	}
	delete(r.lib.authors, id)
	return nil
}

func (r *MemoryAuthors) ExistsByID(_ context.Context, id uuid.UUID) (bool, error) {
	r.lib.mu.Lock()
	defer r.lib.mu.Unlock()
	if err := r.lib.fault("ExistsByID", id); err != nil {
		return false, err
	}
	_, ok := r.lib.authors[id]
	return ok, nil
}

func (r *MemoryAuthors) ListIDs(_ context.Context) ([]uuid.UUID, error) {
	r.lib.mu.Lock()
	defer r.lib.mu.Unlock()
	if err := r.lib.fault("ListIDs", uuid.Nil); err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(r.lib.authors))
	for id := range r.lib.authors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

func (r *MemoryAuthors) CountBooks(_ context.Context, authorID uuid.UUID) (int, error) {
	r.lib.mu.Lock()
	defer r.lib.mu.Unlock()
	if err := r.lib.fault("CountBooks", authorID); err != nil {
		return 0, err
	}
	return r.lib.countLocked(authorID), nil
}

func (r *MemoryAuthors) GetBooksCount(_ context.Context, authorID uuid.UUID) (int, error) {
	r.lib.mu.Lock()
	defer r.lib.mu.Unlock()
	if err := r.lib.fault("GetBooksCount", authorID); err != nil {
		return 0, err
	}
	a, ok := r.lib.authors[authorID]
	if !ok {
		return 0, author.ErrAuthorNotFound
	}
	return a.BooksCount, nil
}

func (r *MemoryAuthors) IncrementBooksCount(_ context.Context, authorID uuid.UUID) error {
	return r.adjust("IncrementBooksCount", authorID, func(a *author.Author) { a.BooksCount++ })
}

func (r *MemoryAuthors) DecrementBooksCount(_ context.Context, authorID uuid.UUID) error {
	return r.adjust("DecrementBooksCount", authorID, func(a *author.Author) { a.BooksCount-- })
}

func (r *MemoryAuthors) SetBooksCount(_ context.Context, authorID uuid.UUID, count int) error {
	return r.adjust("SetBooksCount", authorID, func(a *author.Author) { a.BooksCount = count })
}

func (r *MemoryAuthors) adjust(method string, authorID uuid.UUID, fn func(*author.Author)) error {
	r.lib.mu.Lock()
	defer r.lib.mu.Unlock()
	if err := r.lib.fault(method, authorID); err != nil {
		return err
	}
	a, ok := r.lib.authors[authorID]
	if !ok {
		return author.ErrAuthorNotFound
	}
	fn(a)
	return nil
}

// ========================================
// BOOKS
// ========================================

type MemoryBooks struct {
	lib      *MemoryLibrary
	notifier book.Notifier
}

var _ book.Repository = (*MemoryBooks)(nil)

func (r *MemoryBooks) Create(ctx context.Context, b *book.Book) (*book.Book, error) {
	r.lib.mu.Lock()
	if _, ok := r.lib.authors[b.AuthorID]; !ok {
		r.lib.mu.Unlock()
		return nil, book.ErrAuthorNotFound
	}
	now := r.lib.now()
	created := *b
	created.ID = uuid.New()
	created.CreatedAt = now
	created.UpdatedAt = now
	r.lib.books[created.ID] = &created
	out := created
	r.lib.mu.Unlock()

	r.notifier.Notify(ctx, book.Created{Book: out})
	return &out, nil
}

func (r *MemoryBooks) GetByID(_ context.Context, id uuid.UUID) (*book.Book, error) {
	r.lib.mu.Lock()
	defer r.lib.mu.Unlock()
	b, ok := r.lib.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *MemoryBooks) GetDetail(ctx context.Context, id uuid.UUID) (*book.BookDetail, error) {
	b, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d := r.detail(*b)
	return &d, nil
}

func (r *MemoryBooks) detail(b book.Book) book.BookDetail {
	r.lib.mu.Lock()
	defer r.lib.mu.Unlock()
	d := book.BookDetail{Book: b}
	if a, ok := r.lib.authors[b.AuthorID]; ok {
		d.Author = book.AuthorSummary{ID: a.ID, Name: a.Name, BooksCount: a.BooksCount}
	}
	return d
}

func (r *MemoryBooks) List(ctx context.Context, filter book.BookFilter) ([]book.BookDetail, int64, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	var matched []book.BookDetail
	for _, d := range all {
		if filter.AuthorID != nil && d.AuthorID != *filter.AuthorID {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(d.Title), strings.ToLower(filter.Search)) {
			continue
		}
		matched = append(matched, d)
	}
	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return []book.BookDetail{}, total, nil
	}
	end := len(matched)
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}
	return matched[filter.Offset:end], total, nil
}

func (r *MemoryBooks) ListAll(_ context.Context) ([]book.BookDetail, error) {
	r.lib.mu.Lock()
	books := make([]book.Book, 0, len(r.lib.books))
	for _, b := range r.lib.books {
		books = append(books, *b)
	}
	r.lib.mu.Unlock()

	sort.Slice(books, func(i, j int) bool { return books[i].Title < books[j].Title })
	out := make([]book.BookDetail, 0, len(books))
	for _, b := range books {
		out = append(out, r.detail(b))
	}
	return out, nil
}

func (r *MemoryBooks) ListByAuthor(_ context.Context, authorID uuid.UUID) ([]book.Book, error) {
	r.lib.mu.Lock()
	defer r.lib.mu.Unlock()
	out := []book.Book{}
	for _, b := range r.lib.books {
		if b.AuthorID == authorID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *MemoryBooks) Update(ctx context.Context, id uuid.UUID, fields book.UpdateFields) (*book.Book, error) {
	r.lib.mu.Lock()
	current, ok := r.lib.books[id]
	if !ok {
		r.lib.mu.Unlock()
		return nil, book.ErrBookNotFound
	}
	if fields.AuthorID != nil {
		if _, ok := r.lib.authors[*fields.AuthorID]; !ok {
			r.lib.mu.Unlock()
			return nil, book.ErrAuthorNotFound
		}
	}
	before := *current
	if fields.Title != nil {
		current.Title = *fields.Title
	}
	if fields.PublicationYear != nil {
		current.PublicationYear = *fields.PublicationYear
	}
	if fields.AuthorID != nil {
		current.AuthorID = *fields.AuthorID
	}
	current.UpdatedAt = r.lib.now()
	after := *current
	r.lib.mu.Unlock()

	if n, ok := book.UpdateNotification(before, after); ok {
		r.notifier.Notify(ctx, n)
	}
	return &after, nil
}

func (r *MemoryBooks) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	r.lib.mu.Lock()
	b, ok := r.lib.books[id]
	if !ok {
		r.lib.mu.Unlock()
		return false, nil
	}
	deleted := *b
	delete(r.lib.books, id)
	r.lib.mu.Unlock()

	r.notifier.Notify(ctx, book.Deleted{Book: deleted})
	return true, nil
}

package export_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"library-api/internal/domains/book"
	"library-api/internal/domains/export"
	"library-api/internal/testutil"
)

func newService(t *testing.T) (*export.Service, *testutil.MemoryLibrary) {
	t.Helper()
	lib := testutil.NewMemoryLibrary()
	return export.NewService(lib.Authors(), lib.Books(book.NopNotifier)), lib
}

func TestGenerateWorkbook(t *testing.T) {
	svc, lib := newService(t)
	tolkien := lib.SeedAuthor("Tolkien", 2)
	lib.SeedAuthor("Le Guin", 0)
	lib.SeedBook("The Hobbit", 1937, tolkien.ID)
	lib.SeedBook("The Silmarillion", 1977, tolkien.ID)

	wb, err := svc.Generate(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(wb.FileName, "library_export_"))
	assert.True(t, strings.HasSuffix(wb.FileName, ".xlsx"))

	f, err := excelize.OpenReader(bytes.NewReader(wb.Content))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{export.SheetAuthors, export.SheetBooks}, f.GetSheetList())

	authorRows, err := f.GetRows(export.SheetAuthors)
	require.NoError(t, err)
	require.Len(t, authorRows, 3)
	assert.Equal(t, []string{"ID", "Name", "Books Count", "Created At", "Updated At"}, authorRows[0])
	assert.Equal(t, "Le Guin", authorRows[1][1])
	assert.Equal(t, "Tolkien", authorRows[2][1])
	assert.Equal(t, "2", authorRows[2][2])

	bookRows, err := f.GetRows(export.SheetBooks)
	require.NoError(t, err)
	require.Len(t, bookRows, 3)
	assert.Equal(t, []string{"ID", "Title", "Publication Year", "Author ID", "Author Name", "Created At", "Updated At"}, bookRows[0])
	assert.Equal(t, "The Hobbit", bookRows[1][1])
	assert.Equal(t, "1937", bookRows[1][2])
	assert.Equal(t, tolkien.ID.String(), bookRows[1][3])
	assert.Equal(t, "Tolkien", bookRows[1][4])
}

func TestGenerateEmptyCatalog(t *testing.T) {
	svc, _ := newService(t)

	wb, err := svc.Generate(context.Background())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(wb.Content))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.SheetBooks)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestFileName(t *testing.T) {
	ts := time.Date(2024, 3, 5, 7, 8, 9, 0, time.UTC)
	assert.Equal(t, "library_export_2024-03-05T07-08-09Z.xlsx", export.FileName(ts))
}

type memoryStore struct {
	objects map[string][]byte
	failPut error
}

func (s *memoryStore) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	if s.failPut != nil {
		return "", s.failPut
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.objects[key] = data
	return key, nil
}

func (s *memoryStore) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *memoryStore) Remove(_ context.Context, keys []string) error {
	for _, k := range keys {
		delete(s.objects, k)
	}
	return nil
}

func TestArchiveUploadsAndPrunes(t *testing.T) {
	svc, lib := newService(t)
	lib.SeedAuthor("Tolkien", 0)

	store := &memoryStore{objects: map[string][]byte{}}
	for i := 1; i <= 3; i++ {
		store.objects[fmt.Sprintf("%slibrary_export_2000-01-0%dT00-00-00Z.xlsx", export.ArchivePrefix, i)] = []byte("old")
	}

	key, err := export.NewArchiver(svc, store, 2).Archive(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, export.ArchivePrefix+"library_export_"))

	keys, _ := store.List(context.Background(), export.ArchivePrefix)
	require.Len(t, keys, 2)
	assert.Contains(t, keys, key)
	assert.Contains(t, keys, export.ArchivePrefix+"library_export_2000-01-03T00-00-00Z.xlsx")
}

func TestArchiveUploadFailure(t *testing.T) {
	svc, _ := newService(t)
	store := &memoryStore{objects: map[string][]byte{}, failPut: errors.New("minio down")}

	_, err := export.NewArchiver(svc, store, 0).Archive(context.Background())
	assert.Error(t, err)
}

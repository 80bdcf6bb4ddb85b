package export

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"library-api/internal/domains/author"
	"library-api/internal/domains/book"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	SheetAuthors = "Authors"
	SheetBooks   = "Books"

	timeLayout = time.RFC3339
)

var (
	authorHeaders = []interface{}{"ID", "Name", "Books Count", "Created At", "Updated At"}
	bookHeaders   = []interface{}{"ID", "Title", "Publication Year", "Author ID", "Author Name", "Created At", "Updated At"}
)

// AuthorLister / BookLister là phần repository mà export cần
type AuthorLister interface {
	ListAll(ctx context.Context) ([]author.Author, error)
}

type BookLister interface {
	ListAll(ctx context.Context) ([]book.BookDetail, error)
}

// Workbook là file xlsx đã render
type Workbook struct {
	FileName    string
	Content     []byte
	GeneratedAt time.Time
}

// Service render toàn bộ catalog ra xlsx
type Service struct {
	authors AuthorLister
	books   BookLister
	now     func() time.Time
}

func NewService(authors AuthorLister, books BookLister) *Service {
	return &Service{
		authors: authors,
		books:   books,
		now:     time.Now,
	}
}

// FileName: library_export_2024-01-02T03-04-05Z.xlsx
func FileName(t time.Time) string {
	return "library_export_" + t.UTC().Format("2006-01-02T15-04-05Z") + ".xlsx"
}

func (s *Service) Generate(ctx context.Context) (*Workbook, error) {
	authors, err := s.authors.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	books, err := s.books.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetAuthors); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetBooks); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	authorRows := make([][]interface{}, 0, len(authors))
	for _, a := range authors {
		authorRows = append(authorRows, []interface{}{
			a.ID.String(), a.Name, a.BooksCount,
			a.CreatedAt.UTC().Format(timeLayout), a.UpdatedAt.UTC().Format(timeLayout),
		})
	}
	if err := writeSheet(f, SheetAuthors, headerStyle, authorHeaders, authorRows); err != nil {
		return nil, err
	}

	bookRows := make([][]interface{}, 0, len(books))
	for _, b := range books {
		authorName := b.Author.Name
		if authorName == "" {
			authorName = "N/A"
		}
		bookRows = append(bookRows, []interface{}{
			b.ID.String(), b.Title, b.PublicationYear, b.AuthorID.String(), authorName,
			b.CreatedAt.UTC().Format(timeLayout), b.UpdatedAt.UTC().Format(timeLayout),
		})
	}
	if err := writeSheet(f, SheetBooks, headerStyle, bookHeaders, bookRows); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	now := s.now()
	return &Workbook{
		FileName:    FileName(now),
		Content:     buf.Bytes(),
		GeneratedAt: now,
	}, nil
}

func writeSheet(f *excelize.File, sheet string, headerStyle int, headers []interface{}, rows [][]interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 24); err != nil {
		return err
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

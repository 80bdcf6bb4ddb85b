package export

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
)

const (
	ArchivePrefix = "exports/"

	// số bản archive giữ lại, cũ hơn thì xóa
	DefaultArchiveRetention = 30
)

// ObjectStore là phần của MinIO storage mà archiver dùng.
// List trả key theo thứ tự tăng dần.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Remove(ctx context.Context, keys []string) error
}

// Archiver render workbook và đẩy lên object storage
type Archiver struct {
	service   *Service
	store     ObjectStore
	retention int
}

func NewArchiver(service *Service, store ObjectStore, retention int) *Archiver {
	if retention <= 0 {
		retention = DefaultArchiveRetention
	}
	return &Archiver{
		service:   service,
		store:     store,
		retention: retention,
	}
}

// Archive trả về key của object vừa upload
func (a *Archiver) Archive(ctx context.Context) (string, error) {
	wb, err := a.service.Generate(ctx)
	if err != nil {
		return "", err
	}

	key, err := a.store.Upload(ctx, ArchivePrefix+wb.FileName, bytes.NewReader(wb.Content), int64(len(wb.Content)), ContentType)
	if err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}

	// Prune fail không làm fail archive
	if err := a.prune(ctx); err != nil {
		log.Warn().Err(err).Msg("prune export archives failed")
	}

	return key, nil
}

// prune - tên file chứa timestamp nên sort theo key = sort theo thời gian
func (a *Archiver) prune(ctx context.Context) error {
	keys, err := a.store.List(ctx, ArchivePrefix)
	if err != nil {
		return err
	}
	if len(keys) <= a.retention {
		return nil
	}
	return a.store.Remove(ctx, keys[:len(keys)-a.retention])
}

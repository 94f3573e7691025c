package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/St1cky1/command-center/internal/entity"
	"github.com/St1cky1/command-center/internal/repository"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	maxAttachmentSize  = 10 * 1024 * 1024
	uploadConcurrency  = 3
	defaultStreamChunk = 32 * 1024
)

// FileStore - хранилище содержимого файлов
type FileStore interface {
	Save(ctx context.Context, ownerID int, name string, data []byte) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Remove(ctx context.Context, path string) error
}

type AttachmentService struct {
	attachmentRepo repository.IAttachmentRepository
	store          FileStore
	logger         *log.Logger
}

func NewAttachmentService(attachmentRepo repository.IAttachmentRepository, store FileStore, logger *log.Logger) *AttachmentService {
	return &AttachmentService{
		attachmentRepo: attachmentRepo,
		store:          store,
		logger:         logger,
	}
}

// Upload сохраняет файл на доске пользователя
func (s *AttachmentService) Upload(ctx context.Context, user *entity.User, req *entity.UploadAttachmentRequest) (*entity.Attachment, error) {
	owner, err := boardOwner(user)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, &entity.ValidationError{Fields: []string{"name"}}
	}
	if len(req.Data) == 0 {
		return nil, &entity.ValidationError{Fields: []string{"file"}}
	}
	// Проверяем размер файла (максимум 10MB)
	if len(req.Data) > maxAttachmentSize {
		return nil, entity.ErrFileTooLarge
	}

	path, err := s.store.Save(ctx, owner, req.Name, req.Data)
	if err != nil {
		return nil, err
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	saved, err := s.attachmentRepo.Save(ctx, &entity.Attachment{
		ID:          uuid.NewString(),
		OwnerID:     owner,
		Name:        req.Name,
		FilePath:    path,
		FileSize:    len(req.Data),
		ContentType: contentType,
	})
	if err != nil {
		// файл без строки в базе никому не нужен
		if rmErr := s.store.Remove(ctx, path); rmErr != nil {
			s.logger.WithField("path", path).WithError(rmErr).Warn("failed to remove orphan file")
		}
		return nil, fmt.Errorf("failed to save attachment: %w", err)
	}
	return saved, nil
}

// UploadMany загружает несколько файлов, не больше uploadConcurrency одновременно.
// Результаты идут в порядке запросов, для неудачных загрузок - nil.
func (s *AttachmentService) UploadMany(ctx context.Context, user *entity.User, reqs []*entity.UploadAttachmentRequest) ([]*entity.Attachment, error) {
	results := make([]*entity.Attachment, len(reqs))
	errs := make([]error, len(reqs))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, uploadConcurrency)

	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req *entity.UploadAttachmentRequest) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return
			}
			defer func() { <-semaphore }()

			att, err := s.Upload(ctx, user, req)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", req.Name, err)
				return
			}
			results[i] = att
		}(i, req)
	}
	wg.Wait()

	return results, errors.Join(errs...)
}

// Get - метаданные файла, доступны только участникам доски
func (s *AttachmentService) Get(ctx context.Context, user *entity.User, id string) (*entity.Attachment, error) {
	owner, err := boardOwner(user)
	if err != nil {
		return nil, err
	}

	att, err := s.attachmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if att == nil {
		return nil, entity.ErrAttachmentNotFound
	}
	// Проверяем права доступа
	if att.OwnerID != owner {
		return nil, entity.ErrForbidden
	}
	return att, nil
}

// DownloadStream отдает файл чанками. Канал ошибок получает не больше одной ошибки
func (s *AttachmentService) DownloadStream(ctx context.Context, user *entity.User, id string, chunkSize int) (<-chan []byte, <-chan error) {
	dataChan := make(chan []byte)
	errChan := make(chan error, 1)
	if chunkSize <= 0 {
		chunkSize = defaultStreamChunk
	}

	go func() {
		defer close(dataChan)
		defer close(errChan)

		att, err := s.Get(ctx, user, id)
		if err != nil {
			errChan <- err
			return
		}

		file, err := s.store.Open(ctx, att.FilePath)
		if err != nil {
			errChan <- err
			return
		}
		defer file.Close()

		// Читаем и отправляем чанками
		for {
			chunk := make([]byte, chunkSize)
			n, err := file.Read(chunk)
			if n > 0 {
				select {
				case dataChan <- chunk[:n]:
				case <-ctx.Done():
					errChan <- ctx.Err()
					return
				}
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				errChan <- err
				return
			}
		}
	}()

	return dataChan, errChan
}

func (s *AttachmentService) Delete(ctx context.Context, user *entity.User, id string) error {
	att, err := s.Get(ctx, user, id)
	if err != nil {
		return err
	}

	if err := s.attachmentRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.store.Remove(ctx, att.FilePath); err != nil {
		s.logger.WithField("attachment_id", id).WithError(err).Warn("failed to remove attachment file")
	}
	return nil
}

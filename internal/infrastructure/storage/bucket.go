package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/azureblob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	"gocloud.dev/gcerrors"
)

var ErrInvalidKey = errors.New("invalid storage key")

// BucketStore хранит файлы вложений в blob бакете, по префиксу на владельца доски.
// Бакет выбирается URL: file:// на диске, gs:// или azblob:// в облаке.
type BucketStore struct {
	bucket *blob.Bucket
}

func OpenBucketStore(ctx context.Context, url string) (*BucketStore, error) {
	bucket, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage bucket: %w", err)
	}
	return NewBucketStore(bucket), nil
}

// NewFileStore - бакет в каталоге на диске, каталог создается при необходимости
func NewFileStore(dir string) (*BucketStore, error) {
	bucket, err := fileblob.OpenBucket(dir, &fileblob.Options{CreateDir: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage dir: %w", err)
	}
	return NewBucketStore(bucket), nil
}

func NewBucketStore(bucket *blob.Bucket) *BucketStore {
	return &BucketStore{bucket: bucket}
}

// Save сохраняет файл и возвращает его ключ в бакете
func (s *BucketStore) Save(ctx context.Context, ownerID int, name string, data []byte) (string, error) {
	// Имя файла генерируем, исходное сохраняем только как расширение
	key := fmt.Sprintf("%d/%s%s", ownerID, uuid.NewString(), strings.ToLower(path.Ext(path.Base(name))))

	if err := s.bucket.WriteAll(ctx, key, data, nil); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return key, nil
}

func (s *BucketStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	return s.bucket.NewReader(ctx, key, nil)
}

// Remove не считает ошибкой отсутствие файла
func (s *BucketStore) Remove(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := s.bucket.Delete(ctx, key); err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

func (s *BucketStore) Close() error {
	return s.bucket.Close()
}

// checkKey пропускает только ключи, которые выдает Save
func checkKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}

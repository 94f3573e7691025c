package repository

import (
	"context"
	"errors"

	"github.com/St1cky1/command-center/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AttachmentRepository struct {
	db *pgxpool.Pool
}

func NewAttachmentRepository(db *pgxpool.Pool) *AttachmentRepository {
	return &AttachmentRepository{
		db: db,
	}
}

// Save - сохраняем метаданные файла, сам файл уже лежит в хранилище
func (r *AttachmentRepository) Save(ctx context.Context, a *entity.Attachment) (*entity.Attachment, error) {
	query := `
	INSERT INTO attachments (id, owner_id, name, file_path, file_size, content_type)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, owner_id, name, file_path, file_size, content_type, created_at
	`

	var saved entity.Attachment
	err := r.db.QueryRow(ctx, query, a.ID, a.OwnerID, a.Name, a.FilePath, a.FileSize, a.ContentType).Scan(
		&saved.ID,
		&saved.OwnerID,
		&saved.Name,
		&saved.FilePath,
		&saved.FileSize,
		&saved.ContentType,
		&saved.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *AttachmentRepository) GetByID(ctx context.Context, id string) (*entity.Attachment, error) {
	query := `
	SELECT id, owner_id, name, file_path, file_size, content_type, created_at
	FROM attachments
	WHERE id = $1
	`

	var a entity.Attachment
	err := r.db.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.OwnerID,
		&a.Name,
		&a.FilePath,
		&a.FileSize,
		&a.ContentType,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AttachmentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM attachments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrAttachmentNotFound
	}
	return nil
}

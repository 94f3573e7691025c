package repository

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/St1cky1/command-center/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const referenceColumns = `id, owner_id, title, url, category, notes, attachment_id, created_at, updated_at`

type ReferenceRepository struct {
	db *pgxpool.Pool
}

func NewReferenceRepository(db *pgxpool.Pool) *ReferenceRepository {
	return &ReferenceRepository{
		db: db,
	}
}

func (r *ReferenceRepository) Create(ctx context.Context, ref *entity.Reference) (*entity.Reference, error) {
	query := `
	INSERT INTO reference_items (owner_id, title, url, category, notes, attachment_id)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING ` + referenceColumns

	return scanReference(r.db.QueryRow(ctx, query,
		ref.OwnerID, ref.Title, ref.URL, ref.Category, ref.Notes, ref.AttachmentID))
}

func (r *ReferenceRepository) GetByID(ctx context.Context, id int) (*entity.Reference, error) {
	ref, err := scanReference(r.db.QueryRow(ctx, `SELECT `+referenceColumns+` FROM reference_items WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return ref, err
}

func (r *ReferenceRepository) Update(ctx context.Context, id int, updates map[string]interface{}) (*entity.Reference, error) {
	if len(updates) == 0 {
		return nil, entity.ErrNoFieldsToUpdate
	}

	query, args, err := psql.Update("reference_items").
		SetMap(updates).
		Set("updated_at", sq.Expr("CURRENT_TIMESTAMP")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + referenceColumns).
		ToSql()
	if err != nil {
		return nil, err
	}

	ref, err := scanReference(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrReferenceNotFound
	}
	return ref, err
}

func (r *ReferenceRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reference_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrReferenceNotFound
	}
	return nil
}

// List - библиотека владельца, опционально по категории
func (r *ReferenceRepository) List(ctx context.Context, ownerID int, category string) ([]entity.Reference, error) {
	b := psql.Select(referenceColumns).
		From("reference_items").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("category", "title")
	if category != "" {
		b = b.Where(sq.Eq{"category": category})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refs := make([]entity.Reference, 0)
	for rows.Next() {
		ref, err := scanReference(rows)
		if err != nil {
			return nil, err
		}
		refs = append(refs, *ref)
	}
	return refs, rows.Err()
}

func scanReference(row pgx.Row) (*entity.Reference, error) {
	var ref entity.Reference
	err := row.Scan(
		&ref.ID,
		&ref.OwnerID,
		&ref.Title,
		&ref.URL,
		&ref.Category,
		&ref.Notes,
		&ref.AttachmentID,
		&ref.CreatedAt,
		&ref.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

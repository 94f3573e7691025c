package repository

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/St1cky1/command-center/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const taskColumns = `id, owner_id, title, status, sort_order, due_date, purpose, end_result,
	description, comments, attachments, created_at, updated_at`

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{
		db: db,
	}
}

func (r *TaskRepository) Create(ctx context.Context, task *entity.CreateTaskRequest) (*entity.Task, error) {
	query := `
	INSERT INTO tasks (owner_id, title, status, sort_order, due_date, purpose, end_result, description)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING ` + taskColumns

	return scanTask(r.db.QueryRow(ctx, query,
		task.OwnerID,
		task.Title,
		task.Status,
		task.Order,
		DateArg(task.DueDate),
		task.Purpose,
		task.EndResult,
		task.Description,
	))
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*entity.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}

// Update - обновление полей задачи, updated_at выставляется автоматически
func (r *TaskRepository) Update(ctx context.Context, id string, ownerID int, updates map[string]interface{}) (*entity.Task, error) {
	if len(updates) == 0 {
		return nil, entity.ErrNoFieldsToUpdate
	}

	query, args, err := psql.Update("tasks").
		SetMap(updates).
		Set("updated_at", sq.Expr("CURRENT_TIMESTAMP")).
		Where(sq.Eq{"id": id, "owner_id": ownerID}).
		Suffix("RETURNING " + taskColumns).
		ToSql()
	if err != nil {
		return nil, err
	}

	task, err := scanTask(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// UpdateOrders - одна транзакция на весь пересчет порядка: либо применяются все назначения, либо ни одно
func (r *TaskRepository) UpdateOrders(ctx context.Context, ownerID int, assignments []entity.OrderAssignment) error {
	if len(assignments) == 0 {
		return nil
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, a := range assignments {
			batch.Queue(`
			UPDATE tasks
			SET status = $1, sort_order = $2, updated_at = CURRENT_TIMESTAMP
			WHERE id = $3 AND owner_id = $4
			`, a.Status, a.Order, a.TaskID, ownerID)
		}

		br := tx.SendBatch(ctx, batch)
		for range assignments {
			tag, err := br.Exec()
			if err != nil {
				br.Close()
				return err
			}
			if tag.RowsAffected() == 0 {
				br.Close()
				return entity.ErrTaskNotFound
			}
		}
		return br.Close()
	})
}

// Delete - удаление задачи владельца
func (r *TaskRepository) Delete(ctx context.Context, id string, ownerID int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrTaskNotFound
	}
	return nil
}

// List - задачи владельца в порядке колонок, с фильтрацией по статусу
func (r *TaskRepository) List(ctx context.Context, ownerID int, status string) ([]entity.Task, error) {
	b := psql.Select(taskColumns).
		From("tasks").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("status", "sort_order", "created_at")
	if status != "" {
		b = b.Where(sq.Eq{"status": status})
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

	tasks := make([]entity.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	return tasks, rows.Err()
}

func scanTask(row pgx.Row) (*entity.Task, error) {
	var task entity.Task
	var due *time.Time

	err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&task.Status,
		&task.Order,
		&due,
		&task.Purpose,
		&task.EndResult,
		&task.Description,
		&task.Comments,
		&task.Attachments,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.DueDate = DateFromTime(due)
	if task.Comments == nil {
		task.Comments = []entity.Comment{}
	}
	if task.Attachments == nil {
		task.Attachments = []entity.Attachment{}
	}
	return &task, nil
}

// DateArg переводит календарную дату в параметр запроса
func DateArg(d *entity.Date) *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

func DateFromTime(t *time.Time) *entity.Date {
	if t == nil {
		return nil
	}
	d := entity.DateOf(*t)
	return &d
}

package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/St1cky1/command-center/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reportColumns = `id, author_id, owner_id, report_date, summary, completed, blockers, tomorrow, emailed_at, created_at`

type ReportRepository struct {
	db *pgxpool.Pool
}

func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{
		db: db,
	}
}

// Upsert - один отчет на автора за дату, повторная отправка перезаписывает текст
func (r *ReportRepository) Upsert(ctx context.Context, report *entity.Report) (*entity.Report, error) {
	query := `
	INSERT INTO reports (author_id, owner_id, report_date, summary, completed, blockers, tomorrow)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (author_id, report_date) DO UPDATE SET
	    summary = EXCLUDED.summary,
	    completed = EXCLUDED.completed,
	    blockers = EXCLUDED.blockers,
	    tomorrow = EXCLUDED.tomorrow,
	    emailed_at = NULL
	RETURNING ` + reportColumns

	return scanReport(r.db.QueryRow(ctx, query,
		report.AuthorID,
		report.OwnerID,
		report.ReportDate.Time,
		report.Summary,
		report.Completed,
		report.Blockers,
		report.Tomorrow,
	))
}

func (r *ReportRepository) ListByAuthor(ctx context.Context, authorID int, limit int) ([]entity.Report, error) {
	b := psql.Select(reportColumns).
		From("reports").
		Where(sq.Eq{"author_id": authorID}).
		OrderBy("report_date DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	return r.list(ctx, b)
}

// ListByOwner - отчеты всех ассистентов руководителя, опционально за одну дату
func (r *ReportRepository) ListByOwner(ctx context.Context, ownerID int, date *entity.Date) ([]entity.Report, error) {
	b := psql.Select(reportColumns).
		From("reports").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("report_date DESC", "created_at DESC")
	if date != nil {
		b = b.Where(sq.Eq{"report_date": date.Time})
	}
	return r.list(ctx, b)
}

func (r *ReportRepository) MarkEmailed(ctx context.Context, id int, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE reports SET emailed_at = $1 WHERE id = $2`, at, id)
	return err
}

func (r *ReportRepository) list(ctx context.Context, b sq.SelectBuilder) ([]entity.Report, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]entity.Report, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	return reports, rows.Err()
}

func scanReport(row pgx.Row) (*entity.Report, error) {
	var report entity.Report
	var date time.Time
	err := row.Scan(
		&report.ID,
		&report.AuthorID,
		&report.OwnerID,
		&date,
		&report.Summary,
		&report.Completed,
		&report.Blockers,
		&report.Tomorrow,
		&report.EmailedAt,
		&report.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	report.ReportDate = entity.DateOf(date)
	return &report, nil
}
